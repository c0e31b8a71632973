package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/audionote/api/internal/application/session"
	"github.com/audionote/api/internal/application/verification"
	"github.com/audionote/api/internal/pkg/validate"
)

// AuthHandler handles the email-code login flow endpoints.
type AuthHandler struct {
	verifications verification.Service
	sessions      session.Service
	demoMode      bool
}

func NewAuthHandler(verifications verification.Service, sessions session.Service, demoMode bool) *AuthHandler {
	return &AuthHandler{verifications: verifications, sessions: sessions, demoMode: demoMode}
}

type sendCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6"`
}

type checkSessionRequest struct {
	SessionToken string `json:"sessionToken"`
}

func (h *AuthHandler) Action(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "action") {
	case "send-code":
		h.sendCode(w, r)
	case "verify-code":
		h.verifyCode(w, r)
	case "check-session":
		h.checkSession(w, r)
	case "logout":
		h.logout(w, r)
	default:
		writeError(w, http.StatusBadRequest, "invalid action")
	}
}

func (h *AuthHandler) sendCode(w http.ResponseWriter, r *http.Request) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "valid email is required")
		return
	}

	code, err := h.verifications.IssueCode(r.Context(), strings.ToLower(req.Email))
	if err != nil {
		httpError(w, err)
		return
	}

	resp := AuthEnvelope{Success: true, Message: "Verification code sent"}
	if h.demoMode {
		resp.DemoCode = code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) verifyCode(w http.ResponseWriter, r *http.Request) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, "email and code are required")
		return
	}

	email := strings.ToLower(req.Email)
	if err := h.verifications.VerifyCode(r.Context(), email, strings.TrimSpace(req.Code)); err != nil {
		httpError(w, err)
		return
	}

	result, err := h.sessions.LoginOrCreate(r.Context(), email)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Success: true, User: result})
}

func (h *AuthHandler) checkSession(w http.ResponseWriter, r *http.Request) {
	var req checkSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.sessions.Resolve(r.Context(), sessionTokenFrom(r, req.SessionToken))
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Success: true, User: &session.LoginResult{
		Email:            u.Email,
		UserID:           u.UserID,
		RemainingMinutes: u.RemainingMinutes,
	}})
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	var req checkSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.sessions.Logout(r.Context(), sessionTokenFrom(r, req.SessionToken)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Success: true, Message: "Logged out"})
}

// sessionTokenFrom prefers the Authorization header, falling back to the
// token carried in the JSON body for compatibility with the original clients.
func sessionTokenFrom(r *http.Request, bodyToken string) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return bodyToken
}
