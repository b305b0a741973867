package audit

import (
	"context"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/pagination"
)

// System exposes read access to the action history. Writes go through Append.
type System interface {
	Handler() *Handler

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Entry], error)
	// ForDocument returns every entry for a document, oldest first.
	ForDocument(ctx context.Context, documentID uuid.UUID) ([]Entry, error)
}
