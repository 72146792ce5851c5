package errors

import (
	"errors"
	"net/http"
)

// StatusCode maps a sentinel error to the HTTP status the dispatcher
// should emit, following spec.md §6/§7's status table. Unrecognized
// errors map to 500, matching "handler returned false" / unexpected
// fault handling.
func StatusCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
