package api

import (
	"context"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/audit"
	"github.com/savetree-1/docflow/internal/classifications"
	"github.com/savetree-1/docflow/internal/documents"
	"github.com/savetree-1/docflow/internal/prompts"
	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/workflow"
	"github.com/savetree-1/docflow/pkg/auth"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Audit           audit.System
	Classifications classifications.System
	Documents       documents.System
	Prompts         prompts.System
	RoutingRules    routingrules.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	auditSystem := audit.New(db, runtime.Logger, runtime.Pagination)

	docsSystem := documents.New(
		db,
		runtime.Storage,
		auditSystem,
		runtime.Logger,
		runtime.Pagination,
		runtime.MaxTextSize,
	)

	promptsSystem := prompts.New(db, runtime.Logger, runtime.Pagination)

	rulesSystem := routingrules.New(
		db,
		runtime.Notify,
		runtime.Logger,
		runtime.Pagination,
	)

	orchestrator := workflow.New(
		runtime.Classification,
		runtime.Primary,
		runtime.Secondary,
		runtime.HardRules,
		promptsSystem,
		runtime.Logger,
	)

	classificationsSystem := classifications.New(
		db,
		docsSystem,
		orchestrator,
		rulesSystem,
		runtime.Logger,
		runtime.Pagination,
		runtime.Classification.BatchConcurrency,
	)

	classifyOnIntake := func(ctx context.Context, id uuid.UUID, actor auth.Actor) error {
		_, err := classificationsSystem.Classify(ctx, id, actor)
		return err
	}

	return &Domain{
		Audit:           auditSystem,
		Classifications: classificationsSystem,
		Documents: documents.WithIntake(
			docsSystem,
			classifyOnIntake,
			runtime.Classification.ClassifyOnIntake(),
			runtime.Logger,
		),
		Prompts:         promptsSystem,
		RoutingRules:    rulesSystem,
	}
}

// Start starts domain systems that hold background state.
func (d *Domain) Start(runtime *Runtime) error {
	return d.RoutingRules.Start(runtime.Lifecycle)
}
