package audit

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidEntry = errors.New("invalid audit entry")
	ErrImmutable    = errors.New("audit entries are immutable")
)

// MapHTTPStatus maps audit errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidEntry):
		return http.StatusBadRequest
	case errors.Is(err, ErrImmutable):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
