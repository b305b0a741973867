package documents

import (
	"context"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/audit"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/pagination"
)

// System defines the public contract for document domain operations.
// Every state change is written together with its action history entry.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Document], error)

	Find(ctx context.Context, id uuid.UUID) (*Document, error)
	// Text returns the extracted text retained at intake.
	Text(ctx context.Context, doc *Document) (string, error)
	Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Document, error)

	Confirm(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ConfirmCommand) (*Document, error)
	Reopen(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ReopenCommand) (*Document, error)
	Comment(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd CommentCommand) error
	// Decide records an approve, reject, or forward decision on a confirmed document.
	Decide(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd DecisionCommand) (*audit.Entry, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error
	Restore(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Document, error)

	History(ctx context.Context, id uuid.UUID) ([]audit.Entry, error)
}
