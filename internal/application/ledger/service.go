package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/audionote/api/internal/domain"
	"github.com/audionote/api/internal/pkg/id"
)

// UserStore is the balance side of the ledger.
type UserStore interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	AddMinutes(ctx context.Context, userID string, delta float64) error
}

// EventStore is the history side of the ledger.
type EventStore interface {
	Append(ctx context.Context, e *domain.Event) error
	AppendUnique(ctx context.Context, e *domain.Event) error
	Delete(ctx context.Context, eventID string) error
	ListByUser(ctx context.Context, userID, kind string, limit int32) ([]domain.Event, error)
}

// CreditResult reports the balance after a credit attempt. Duplicate is set
// when the payment id had already been recorded; the balance is unchanged then.
type CreditResult struct {
	RemainingMinutes float64
	Duplicate        bool
}

type Service interface {
	// Credit adds minutes purchased under paymentID. Replaying the same
	// paymentID is a no-op: the ledger deduplicates by transaction id.
	Credit(ctx context.Context, userID string, minutes float64, paymentID string) (*CreditResult, error)
	// Debit consumes minutes, clamping the balance at zero. It never fails on
	// insufficiency — callers must pre-check before committing to costly work.
	Debit(ctx context.Context, userID string, minutes float64, reason string) (remaining float64, err error)
	// History returns recent usage and payment events, newest first.
	History(ctx context.Context, userID string, limit int32) (usage, payments []domain.Event, err error)
}

type service struct {
	users  UserStore
	events EventStore
}

func NewService(users UserStore, events EventStore) Service {
	return &service{users: users, events: events}
}

func (s *service) Credit(ctx context.Context, userID string, minutes float64, paymentID string) (*CreditResult, error) {
	if minutes <= 0 {
		return nil, fmt.Errorf("credit amount must be positive: %w", domain.ErrBadRequest)
	}
	if paymentID == "" {
		return nil, fmt.Errorf("payment id is required: %w", domain.ErrBadRequest)
	}

	// Record the payment first, keyed by the external payment id. A replayed
	// payment hits the key condition and never reaches the balance update.
	err := s.events.AppendUnique(ctx, &domain.Event{
		EventID:   paymentID,
		UserID:    userID,
		Kind:      domain.EventKindPayment,
		Minutes:   minutes,
		PaymentID: paymentID,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, domain.ErrConflict) {
		u, getErr := s.users.Get(ctx, userID)
		if getErr != nil {
			return nil, getErr
		}
		return &CreditResult{RemainingMinutes: u.RemainingMinutes, Duplicate: true}, nil
	}
	if err != nil {
		return nil, err
	}

	if err := s.users.AddMinutes(ctx, userID, minutes); err != nil {
		// Back out the payment record: leaving it would make the client's
		// retry of this payment id read as a replay and the purchase would
		// never be credited.
		if delErr := s.events.Delete(ctx, paymentID); delErr != nil {
			slog.Warn("failed to back out payment event", "payment_id", paymentID, "err", delErr)
		}
		return nil, err
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &CreditResult{RemainingMinutes: u.RemainingMinutes}, nil
}

func (s *service) Debit(ctx context.Context, userID string, minutes float64, reason string) (float64, error) {
	if minutes <= 0 {
		return 0, fmt.Errorf("debit amount must be positive: %w", domain.ErrBadRequest)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	remaining := u.RemainingMinutes - minutes
	if remaining < 0 {
		remaining = 0
	}
	if err := s.users.Update(ctx, userID, map[string]interface{}{
		"remaining_minutes":  remaining,
		"total_minutes_used": u.TotalMinutesUsed + minutes,
	}); err != nil {
		return 0, err
	}

	if err := s.events.Append(ctx, &domain.Event{
		EventID:   id.New(),
		UserID:    userID,
		Kind:      domain.EventKindUsage,
		Minutes:   minutes,
		Reason:    reason,
		CreatedAt: time.Now().UTC(),
	}); err != nil {
		return 0, err
	}
	return remaining, nil
}

func (s *service) History(ctx context.Context, userID string, limit int32) ([]domain.Event, []domain.Event, error) {
	usage, err := s.events.ListByUser(ctx, userID, domain.EventKindUsage, limit)
	if err != nil {
		return nil, nil, err
	}
	payments, err := s.events.ListByUser(ctx, userID, domain.EventKindPayment, limit)
	if err != nil {
		return nil, nil, err
	}
	return usage, payments, nil
}
