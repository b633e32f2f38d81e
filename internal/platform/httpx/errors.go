// Package httpx provides HTTP response utilities.
package httpx

import (
	"errors"
	"net/http"

	"github.com/coursedesk/coursedesk/internal/shared"
)

// RespondError maps domain errors to HTTP problem responses. Storage faults
// and unknown errors collapse to a bare 500 so internal text never leaks.
func RespondError(w http.ResponseWriter, err error) {
	if ve, ok := shared.AsValidation(err); ok {
		ValidationProblem(w, ve.Error(), ve.Fields)
		return
	}
	switch {
	case errors.Is(err, shared.ErrUnauthorized):
		Problem(w, http.StatusUnauthorized, "Unauthorized", err.Error())
	case errors.Is(err, shared.ErrInvalidCredentials):
		Problem(w, http.StatusUnauthorized, "Unauthorized", shared.ErrInvalidCredentials.Error())
	case errors.Is(err, shared.ErrForbidden):
		Problem(w, http.StatusForbidden, "Forbidden", err.Error())
	case errors.Is(err, shared.ErrNotFound):
		Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, shared.ErrMethodNotSupported):
		Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", err.Error())
	case errors.Is(err, shared.ErrStorage):
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
