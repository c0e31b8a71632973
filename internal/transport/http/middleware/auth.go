package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/audionote/api/internal/application/session"
	"github.com/audionote/api/internal/domain"
)

type contextKey string

const userKey contextKey = "user"

// Session returns middleware that resolves a Bearer session token into the
// request context. A request with no Authorization header passes through
// untouched — the handlers decide whether anonymous access is allowed — but a
// presented token that fails to resolve is rejected outright.
func Session(sessions session.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}
			u, err := sessions.Resolve(r.Context(), strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired session")
				return
			}
			ctx := context.WithValue(r.Context(), userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext extracts the session user from the request context.
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userKey).(*domain.User)
	return u, ok
}
