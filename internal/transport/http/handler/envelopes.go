package handler

import (
	"encoding/json"
	"net/http"

	"github.com/audionote/api/internal/application/session"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Success bool   `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AuthEnvelope wraps auth flow responses. DemoCode is only populated in demo
// mode; production responses never carry the verification code.
type AuthEnvelope struct {
	Success  bool                 `json:"success"`
	Message  string               `json:"message,omitempty"`
	User     *session.LoginResult `json:"user,omitempty"`
	DemoCode string               `json:"demoCode,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// CreditsEnvelope wraps balance mutation responses.
type CreditsEnvelope struct {
	Success          bool    `json:"success"`
	RemainingMinutes float64 `json:"remainingMinutes"`
	Added            float64 `json:"added,omitempty"`
	Duplicate        bool    `json:"duplicate,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}
