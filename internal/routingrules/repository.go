package routingrules

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/audit"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/lifecycle"
	"github.com/savetree-1/docflow/pkg/notify"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/query"
	"github.com/savetree-1/docflow/pkg/repository"
)

// Topic is the notify topic carrying rule-set change notices.
const Topic = "routing-rules"

const returning = `RETURNING id, name, department, category, urgency, keywords, assign_to, priority, active, seq, created_at, updated_at`

type repo struct {
	db         *sql.DB
	engine     *Engine
	notifier   notify.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a routing rule repository implementing the System interface.
func New(
	db *sql.DB,
	notifier notify.System,
	logger *slog.Logger,
	pagination pagination.Config,
) System {
	r := &repo{
		db:         db,
		notifier:   notifier,
		logger:     logger.With("system", "routing-rules"),
		pagination: pagination,
	}
	r.engine = NewEngine(r.all, logger)
	return r
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) Start(lc *lifecycle.Coordinator) error {
	if err := r.engine.Reload(lc.Context()); err != nil {
		return err
	}

	return r.notifier.Subscribe(lc.Context(), Topic, func(payload string) {
		if err := r.engine.Reload(lc.Context()); err != nil {
			r.logger.Error("reload after change notice failed", "notice", payload, "error", err)
		}
	})
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Rule], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort...).
		WhereSearch(page.Search, "Name", "AssignTo")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count routing rules: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	rules, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanRule)
	if err != nil {
		return nil, fmt.Errorf("query routing rules: %w", err)
	}

	result := pagination.NewPageResult(rules, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Rule, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	rule, err := repository.QueryOne(ctx, r.db, q, args, scanRule)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &rule, nil
}

func (r *repo) Create(ctx context.Context, actor auth.Actor, cmd Command) (*Rule, error) {
	cmd, err := cmd.Normalize()
	if err != nil {
		return nil, err
	}

	q := `INSERT INTO routing_rules(id, name, department, category, urgency, keywords, assign_to, priority, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9) ` + returning

	rule, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Rule, error) {
		rule, err := repository.QueryOne(ctx, tx, q, []any{
			uuid.New(),
			cmd.Name,
			cmd.Department,
			cmd.Category,
			cmd.Urgency,
			encodeKeywords(cmd.Keywords),
			cmd.AssignTo,
			cmd.Priority,
			*cmd.Active,
		}, scanRule)
		if err != nil {
			return rule, err
		}
		return rule, r.record(ctx, tx, actor, audit.ActionRuleCreate, rule, nil)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("routing rule created", "id", rule.ID, "name", rule.Name, "priority", rule.Priority, "actor", actor.Name)
	r.changed(ctx, "create", rule.ID)
	return &rule, nil
}

// Update replaces a rule's conditions. Seq is kept, so a rule keeps its
// creation-order position among rules of equal priority.
func (r *repo) Update(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd Command) (*Rule, error) {
	cmd, err := cmd.Normalize()
	if err != nil {
		return nil, err
	}

	q := `UPDATE routing_rules
		SET name = $1, department = $2, category = $3, urgency = $4, keywords = $5,
		    assign_to = $6, priority = $7, active = $8, updated_at = NOW()
		WHERE id = $9 ` + returning

	rule, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Rule, error) {
		before, err := repository.QueryOne(ctx, tx, lockRule, []any{id}, scanRule)
		if err != nil {
			return before, err
		}

		rule, err := repository.QueryOne(ctx, tx, q, []any{
			cmd.Name,
			cmd.Department,
			cmd.Category,
			cmd.Urgency,
			encodeKeywords(cmd.Keywords),
			cmd.AssignTo,
			cmd.Priority,
			*cmd.Active,
			id,
		}, scanRule)
		if err != nil {
			return rule, err
		}
		return rule, r.record(ctx, tx, actor, audit.ActionRuleUpdate, rule, &before)
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("routing rule updated", "id", rule.ID, "name", rule.Name, "actor", actor.Name)
	r.changed(ctx, "update", rule.ID)
	return &rule, nil
}

func (r *repo) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		before, err := repository.QueryOne(ctx, tx, lockRule, []any{id}, scanRule)
		if err != nil {
			return struct{}{}, err
		}

		if err := repository.ExecExpectOne(ctx, tx, "DELETE FROM routing_rules WHERE id = $1", id); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, r.record(ctx, tx, actor, audit.ActionRuleDelete, before, nil)
	})
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("routing rule deleted", "id", id, "actor", actor.Name)
	r.changed(ctx, "delete", id)
	return nil
}

func (r *repo) Resolve(a Attributes) (*Decision, bool) {
	return r.engine.Resolve(a)
}

func (r *repo) Snapshot() *Snapshot {
	return r.engine.Snapshot()
}

func (r *repo) Reload(ctx context.Context) error {
	return r.engine.Reload(ctx)
}

const lockRule = `SELECT id, name, department, category, urgency, keywords, assign_to, priority, active, seq, created_at, updated_at
	FROM routing_rules WHERE id = $1 FOR UPDATE`

func (r *repo) all(ctx context.Context) ([]Rule, error) {
	q, args := query.NewBuilder(projection, defaultSort...).Build()
	return repository.QueryMany(ctx, r.db, q, args, scanRule)
}

func (r *repo) record(ctx context.Context, tx *sql.Tx, actor auth.Actor, action audit.Action, rule Rule, before *Rule) error {
	details := map[string]any{"rule": rule}
	if before != nil {
		details["before"] = before
	}

	return audit.Append(ctx, tx, audit.Entry{
		RuleID:  &rule.ID,
		Actor:   actor.Name,
		Action:  action,
		Note:    fmt.Sprintf("%s %q (priority %d, assign to %s)", action, rule.Name, rule.Priority, rule.AssignTo),
		Details: audit.Details(details),
	})
}

// changed refreshes the local snapshot and tells other replicas to do the same.
// The write has already committed, so failures here are logged, not returned.
func (r *repo) changed(ctx context.Context, op string, id uuid.UUID) {
	if err := r.engine.Reload(ctx); err != nil {
		r.logger.Error("snapshot reload failed", "error", err)
	}
	if err := r.notifier.Publish(ctx, Topic, op+":"+id.String()); err != nil {
		r.logger.Warn("change notice not published", "error", err)
	}
}
