package handler

import (
	"net/http"

	"github.com/audionote/api/internal/application/session"
	"github.com/audionote/api/internal/domain"
	"github.com/audionote/api/internal/transport/http/middleware"
)

// resolveSession returns the authenticated user for a request, preferring the
// user the session middleware already resolved from the Authorization header.
// With no header and no body token it returns (nil, nil): the caller is
// anonymous, and each handler decides whether that is acceptable.
func resolveSession(r *http.Request, sessions session.Service, bodyToken string) (*domain.User, error) {
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		return u, nil
	}
	if bodyToken == "" {
		return nil, nil
	}
	return sessions.Resolve(r.Context(), bodyToken)
}
