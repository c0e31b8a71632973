package handler

import (
	"encoding/json"
	"net/http"

	"github.com/audionote/api/internal/application/session"
	"github.com/audionote/api/internal/infrastructure/stripe"
)

// CheckoutHandler creates hosted checkout sessions for minute purchases.
type CheckoutHandler struct {
	sessions session.Service
	checkout stripe.CheckoutCreator
}

func NewCheckoutHandler(sessions session.Service, checkout stripe.CheckoutCreator) *CheckoutHandler {
	return &CheckoutHandler{sessions: sessions, checkout: checkout}
}

type checkoutRequest struct {
	SessionToken string  `json:"sessionToken"`
	Minutes      float64 `json:"minutes"`
	Amount       int64   `json:"amount"` // USD
}

func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Minutes <= 0 || req.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "minutes and amount are required")
		return
	}

	u, err := resolveSession(r, h.sessions, req.SessionToken)
	if err != nil {
		httpError(w, err)
		return
	}
	if u == nil {
		writeError(w, http.StatusUnauthorized, "invalid or expired session")
		return
	}

	sess, err := h.checkout.Create(r.Context(), u.Email, u.UserID, req.Minutes, req.Amount)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}
