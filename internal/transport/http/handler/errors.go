package handler

import (
	"errors"
	"net/http"

	"github.com/audionote/api/internal/domain"
)

// httpError maps a domain sentinel error to its HTTP status. Everything
// unmatched is a 500 — no error propagates past the handler boundary.
func httpError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrPaymentRequired):
		status = http.StatusPaymentRequired
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUpstream):
		status = http.StatusBadGateway
	}
	writeError(w, status, err.Error())
}
