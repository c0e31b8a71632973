package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/audionote/api/internal/application/ledger"
	"github.com/audionote/api/internal/application/session"
	"github.com/audionote/api/internal/domain"
)

// UserGetter is the account lookup the credits endpoints need.
type UserGetter interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

// CreditsHandler handles balance reads and post-payment credits.
type CreditsHandler struct {
	ledger   ledger.Service
	sessions session.Service
	users    UserGetter
}

func NewCreditsHandler(ledgerSvc ledger.Service, sessions session.Service, users UserGetter) *CreditsHandler {
	return &CreditsHandler{ledger: ledgerSvc, sessions: sessions, users: users}
}

type addCreditsRequest struct {
	SessionToken string  `json:"sessionToken"`
	UserID       string  `json:"userId"`
	Minutes      float64 `json:"minutes"`
	PaymentID    string  `json:"paymentId"`
}

type balanceEnvelope struct {
	RemainingMinutes float64        `json:"remainingMinutes"`
	Usage            []domain.Event `json:"usage"`
}

// Get returns the caller's balance and recent usage.
func (h *CreditsHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	u, err := h.users.Get(r.Context(), userID)
	if err != nil {
		httpError(w, err)
		return
	}
	usage, _, err := h.ledger.History(r.Context(), u.UserID, 20)
	if err != nil {
		httpError(w, err)
		return
	}
	if usage == nil {
		usage = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, balanceEnvelope{RemainingMinutes: u.RemainingMinutes, Usage: usage})
}

// Add credits purchased minutes to an account after payment.
func (h *CreditsHandler) Add(w http.ResponseWriter, r *http.Request) {
	var req addCreditsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Minutes <= 0 || req.PaymentID == "" {
		writeError(w, http.StatusBadRequest, "minutes and paymentId are required")
		return
	}

	userID := req.UserID
	u, err := resolveSession(r, h.sessions, req.SessionToken)
	if err != nil {
		httpError(w, err)
		return
	}
	if u != nil {
		userID = u.UserID
	}
	if userID == "" {
		writeError(w, http.StatusBadRequest, "sessionToken or userId is required")
		return
	}

	result, err := h.ledger.Credit(r.Context(), userID, req.Minutes, req.PaymentID)
	if err != nil {
		httpError(w, err)
		return
	}
	resp := CreditsEnvelope{Success: true, RemainingMinutes: result.RemainingMinutes, Duplicate: result.Duplicate}
	if !result.Duplicate {
		resp.Added = req.Minutes
	}
	writeJSON(w, http.StatusOK, resp)
}
