package session

import (
	"context"
	"fmt"
	"time"

	"github.com/audionote/api/internal/domain"
	"github.com/audionote/api/internal/pkg/id"
	"github.com/audionote/api/internal/pkg/token"
)

// UserStore is the persistence the service needs for accounts.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetBySessionToken(ctx context.Context, token string) (*domain.User, error)
	Put(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	ClearSession(ctx context.Context, userID string) error
}

// LoginResult is what a successful verification hands back to the client.
type LoginResult struct {
	Email            string  `json:"email"`
	UserID           string  `json:"userId"`
	RemainingMinutes float64 `json:"remainingMinutes"`
	SessionToken     string  `json:"sessionToken"`
	IsNewUser        bool    `json:"isNewUser"`
}

type Service interface {
	// LoginOrCreate is called after a code verifies. It creates the account
	// on first login (with the free trial balance) and rotates the session
	// token, invalidating any previous session.
	LoginOrCreate(ctx context.Context, email string) (*LoginResult, error)
	// Resolve returns the user holding a live session token.
	Resolve(ctx context.Context, sessionToken string) (*domain.User, error)
	// Logout clears the active session token.
	Logout(ctx context.Context, sessionToken string) error
}

type service struct {
	users            UserStore
	freeTrialMinutes float64
	sessionTTL       time.Duration
}

func NewService(users UserStore, freeTrialMinutes float64, sessionTTL time.Duration) Service {
	return &service{users: users, freeTrialMinutes: freeTrialMinutes, sessionTTL: sessionTTL}
}

func (s *service) LoginOrCreate(ctx context.Context, email string) (*LoginResult, error) {
	now := time.Now().UTC()

	sessionToken, err := token.NewSessionToken()
	if err != nil {
		return nil, err
	}
	expiresAt := now.Add(s.sessionTTL).Unix()

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		u = &domain.User{
			UserID:           id.New(),
			Email:            email,
			RemainingMinutes: s.freeTrialMinutes,
			TotalMinutesUsed: 0,
			SessionToken:     sessionToken,
			SessionExpiresAt: expiresAt,
			LastLogin:        &now,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.users.Put(ctx, u); err != nil {
			return nil, err
		}
		return s.result(u, true), nil
	}

	// Existing account: rotating the token is what invalidates the old
	// session — only one token is ever live per user.
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{
		"session_token":      sessionToken,
		"session_expires_at": expiresAt,
		"last_login":         now.Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}
	u.SessionToken = sessionToken
	u.SessionExpiresAt = expiresAt
	u.LastLogin = &now
	return s.result(u, false), nil
}

func (s *service) Resolve(ctx context.Context, sessionToken string) (*domain.User, error) {
	if sessionToken == "" {
		return nil, fmt.Errorf("no session token provided: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.GetBySessionToken(ctx, sessionToken)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired session: %w", domain.ErrUnauthorized)
	}
	if !u.SessionValid(time.Now()) {
		return nil, fmt.Errorf("invalid or expired session: %w", domain.ErrUnauthorized)
	}
	return u, nil
}

func (s *service) Logout(ctx context.Context, sessionToken string) error {
	u, err := s.Resolve(ctx, sessionToken)
	if err != nil {
		return err
	}
	// The token attribute keys a GSI, so it cannot be blanked with a SET;
	// the store removes it instead.
	return s.users.ClearSession(ctx, u.UserID)
}

func (s *service) result(u *domain.User, isNew bool) *LoginResult {
	return &LoginResult{
		Email:            u.Email,
		UserID:           u.UserID,
		RemainingMinutes: u.RemainingMinutes,
		SessionToken:     u.SessionToken,
		IsNewUser:        isNew,
	}
}
