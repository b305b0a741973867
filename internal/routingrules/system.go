package routingrules

import (
	"context"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/lifecycle"
	"github.com/savetree-1/docflow/pkg/pagination"
)

// System defines the public contract for routing rule administration and resolution.
type System interface {
	Handler() *Handler

	// Start loads the initial snapshot and follows change notices from other replicas.
	Start(lc *lifecycle.Coordinator) error

	List(ctx context.Context, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Rule], error)
	Find(ctx context.Context, id uuid.UUID) (*Rule, error)
	Create(ctx context.Context, actor auth.Actor, cmd Command) (*Rule, error)
	Update(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd Command) (*Rule, error)
	Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error

	// Resolve matches a against the current snapshot of active rules.
	Resolve(a Attributes) (*Decision, bool)
	Snapshot() *Snapshot
	Reload(ctx context.Context) error
}
