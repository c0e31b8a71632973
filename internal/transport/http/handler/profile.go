package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/audionote/api/internal/application/profile"
	"github.com/audionote/api/internal/pkg/validate"
)

// ProfileHandler serves the profile + history view.
type ProfileHandler struct {
	svc profile.Service
}

func NewProfileHandler(svc profile.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

type profileRequest struct {
	Email string `json:"email" validate:"required,email"`
}

func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	view, err := h.svc.Get(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
