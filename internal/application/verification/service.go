package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/audionote/api/internal/domain"
	"github.com/audionote/api/internal/infrastructure/smtp"
)

// VerificationStore is the persistence the service needs for pending codes.
type VerificationStore interface {
	Put(ctx context.Context, v *domain.EmailVerification) error
	Get(ctx context.Context, email string) (*domain.EmailVerification, error)
	IncrementAttempts(ctx context.Context, email string, attempts int) error
	Delete(ctx context.Context, email string) error
}

type Service interface {
	// IssueCode creates a pending code for email and mails it. The plaintext
	// code is returned so the handler can expose it in demo mode; it is
	// stored only as a bcrypt hash.
	IssueCode(ctx context.Context, email string) (code string, err error)
	// VerifyCode consumes the pending code for email. On success the record
	// is deleted and the caller proceeds to login.
	VerifyCode(ctx context.Context, email, code string) error
}

type service struct {
	store   VerificationStore
	mailer  smtp.Mailer
	codeTTL time.Duration
}

func NewService(store VerificationStore, mailer smtp.Mailer, codeTTL time.Duration) Service {
	return &service{store: store, mailer: mailer, codeTTL: codeTTL}
}

func (s *service) IssueCode(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	v := &domain.EmailVerification{
		Email:     email,
		CodeHash:  string(hash),
		ExpiresAt: time.Now().Add(s.codeTTL).Unix(),
		Attempts:  0,
	}
	if err := s.store.Put(ctx, v); err != nil {
		return "", err
	}

	// Fail-open: a mail outage must not block the login flow.
	if err := s.mailer.SendEmail(email, "AudioNote Verification Code",
		fmt.Sprintf("Your verification code is: %s\n\nThis code will expire in %d minutes.", code, int(s.codeTTL.Minutes()))); err != nil {
		slog.Warn("failed to send verification email", "email", email, "err", err)
	}

	return code, nil
}

func (s *service) VerifyCode(ctx context.Context, email, code string) error {
	v, err := s.store.Get(ctx, email)
	if err != nil {
		return fmt.Errorf("no verification code found for this email: %w", domain.ErrNotFound)
	}

	if v.ExpiresAt < time.Now().Unix() {
		s.discard(ctx, email)
		return fmt.Errorf("verification code has expired: %w", domain.ErrUnauthorized)
	}

	if v.Attempts >= domain.MaxVerifyAttempts {
		s.discard(ctx, email)
		return fmt.Errorf("too many failed attempts: %w", domain.ErrUnauthorized)
	}

	if bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)) != nil {
		if err := s.store.IncrementAttempts(ctx, email, v.Attempts+1); err != nil {
			slog.Warn("failed to record verification attempt", "email", email, "err", err)
		}
		return fmt.Errorf("invalid verification code: %w", domain.ErrUnauthorized)
	}

	s.discard(ctx, email)
	return nil
}

func (s *service) discard(ctx context.Context, email string) {
	if err := s.store.Delete(ctx, email); err != nil {
		slog.Warn("failed to delete verification record", "email", email, "err", err)
	}
}
