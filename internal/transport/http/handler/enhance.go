package handler

import (
	"encoding/json"
	"net/http"

	"github.com/audionote/api/internal/application/enhance"
	"github.com/audionote/api/internal/application/session"
)

// EnhanceHandler handles AI text enhancement requests.
type EnhanceHandler struct {
	svc      enhance.Service
	sessions session.Service
}

func NewEnhanceHandler(svc enhance.Service, sessions session.Service) *EnhanceHandler {
	return &EnhanceHandler{svc: svc, sessions: sessions}
}

type enhanceRequest struct {
	Text         string `json:"text"`
	Mode         string `json:"mode"`
	SessionToken string `json:"sessionToken"`
}

func (h *EnhanceHandler) Enhance(w http.ResponseWriter, r *http.Request) {
	var req enhanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := resolveSession(r, h.sessions, req.SessionToken)
	if err != nil {
		httpError(w, err)
		return
	}
	result, err := h.svc.Enhance(r.Context(), req.Text, req.Mode, user)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
