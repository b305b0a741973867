package classifications

import (
	"errors"
	"net/http"

	"github.com/savetree-1/docflow/internal/documents"
)

// Domain errors for classification operations.
var (
	ErrNotFound     = errors.New("classification not found")
	ErrDuplicate    = errors.New("classification already exists")
	ErrInvalidBatch = errors.New("invalid batch request")
)

// MapHTTPStatus maps classification and document errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidBatch):
		return http.StatusBadRequest
	default:
		return documents.MapHTTPStatus(err)
	}
}
