package profile

import (
	"context"
	"time"

	"github.com/audionote/api/internal/application/ledger"
	"github.com/audionote/api/internal/domain"
)

const historyLimit = 20

// UserStore is the account lookup the profile view needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// TranscriptStore lists a user's recent transcripts.
type TranscriptStore interface {
	ListByUser(ctx context.Context, userID string, limit int32) ([]domain.Transcript, error)
}

// BillingItem is one row of the billing history view.
type BillingItem struct {
	Date    time.Time `json:"date"`
	Minutes float64   `json:"minutes"`
	Kind    string    `json:"kind"`
	Reason  string    `json:"reason,omitempty"`
}

// View is the assembled profile response.
type View struct {
	User              *domain.User        `json:"user"`
	BillingHistory    []BillingItem       `json:"billingHistory"`
	RecentTranscripts []domain.Transcript `json:"recentTranscripts"`
}

type Service interface {
	Get(ctx context.Context, email string) (*View, error)
}

type service struct {
	users       UserStore
	ledger      ledger.Service
	transcripts TranscriptStore
}

func NewService(users UserStore, ledgerSvc ledger.Service, transcripts TranscriptStore) Service {
	return &service{users: users, ledger: ledgerSvc, transcripts: transcripts}
}

func (s *service) Get(ctx context.Context, email string) (*View, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		// Unknown addresses get a stub profile so the client can render a
		// first-visit page without a signup round trip.
		return &View{
			User: &domain.User{
				Email:            email,
				RemainingMinutes: 1.0,
				CreatedAt:        time.Now().UTC(),
			},
			BillingHistory:    []BillingItem{},
			RecentTranscripts: []domain.Transcript{},
		}, nil
	}

	usage, payments, err := s.ledger.History(ctx, u.UserID, historyLimit)
	if err != nil {
		return nil, err
	}
	billing := make([]BillingItem, 0, len(usage)+len(payments))
	for _, e := range payments {
		billing = append(billing, BillingItem{Date: e.CreatedAt, Minutes: e.Minutes, Kind: e.Kind})
	}
	for _, e := range usage {
		billing = append(billing, BillingItem{Date: e.CreatedAt, Minutes: e.Minutes, Kind: e.Kind, Reason: e.Reason})
	}

	transcripts, err := s.transcripts.ListByUser(ctx, u.UserID, historyLimit)
	if err != nil {
		return nil, err
	}
	if transcripts == nil {
		transcripts = []domain.Transcript{}
	}

	return &View{User: u, BillingHistory: billing, RecentTranscripts: transcripts}, nil
}
