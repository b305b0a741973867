package routingrules

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound    = errors.New("routing rule not found")
	ErrDuplicate   = errors.New("routing rule name already exists")
	ErrInvalidRule = errors.New("invalid routing rule")
)

// MapHTTPStatus maps routing rule errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRule):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
