package classifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/workflow"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/pagination"
)

// System defines the public contract for classification operations.
type System interface {
	Handler() *Handler

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Classification], error)

	Find(ctx context.Context, id uuid.UUID) (*Classification, error)
	// Current returns the latest run for a document.
	Current(ctx context.Context, documentID uuid.UUID) (*Classification, error)
	// History returns every run for a document, newest first.
	History(ctx context.Context, documentID uuid.UUID) ([]Classification, error)

	Classify(ctx context.Context, documentID uuid.UUID, actor auth.Actor) (*Classification, error)
	ClassifyBatch(ctx context.Context, documentIDs []uuid.UUID, actor auth.Actor) []BatchResult
}

// Classifier produces a classification result for a request.
type Classifier interface {
	Classify(ctx context.Context, req workflow.Request) workflow.Result
}

// Resolver proposes an assignee from the administrator routing rules.
type Resolver interface {
	Resolve(a routingrules.Attributes) (*routingrules.Decision, bool)
}
