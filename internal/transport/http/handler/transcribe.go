package handler

import (
	"encoding/json"
	"net/http"

	"github.com/audionote/api/internal/application/session"
	"github.com/audionote/api/internal/application/transcribe"
)

// TranscribeHandler handles voice-note transcription requests.
type TranscribeHandler struct {
	svc      transcribe.Service
	sessions session.Service
}

func NewTranscribeHandler(svc transcribe.Service, sessions session.Service) *TranscribeHandler {
	return &TranscribeHandler{svc: svc, sessions: sessions}
}

type transcribeRequest struct {
	AudioData    string `json:"audioData"`
	SessionToken string `json:"sessionToken"`
}

func (h *TranscribeHandler) Transcribe(w http.ResponseWriter, r *http.Request) {
	var req transcribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// An unresolvable token downgrades to the basic tier rather than failing:
	// recording should keep working after a session expires mid-use.
	user, _ := resolveSession(r, h.sessions, req.SessionToken)

	result, err := h.svc.Transcribe(r.Context(), req.AudioData, user)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
