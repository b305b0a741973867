package documents

import (
	"errors"
	"net/http"
)

// Domain errors for document operations.
var (
	ErrNotFound          = errors.New("document not found")
	ErrDuplicate         = errors.New("document already exists")
	ErrDeleted           = errors.New("document is deleted")
	ErrNotDeleted        = errors.New("document is not deleted")
	ErrTextTooLarge      = errors.New("text exceeds maximum size")
	ErrInvalidCommand    = errors.New("invalid command")
	ErrInvalidTransition = errors.New("invalid routing transition")
	ErrStaleState        = errors.New("document changed concurrently")
	ErrForbidden         = errors.New("action not permitted")
)

// MapHTTPStatus maps document domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDeleted):
		return http.StatusGone
	case errors.Is(err, ErrDuplicate),
		errors.Is(err, ErrNotDeleted),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrStaleState):
		return http.StatusConflict
	case errors.Is(err, ErrTextTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidCommand):
		return http.StatusBadRequest
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
