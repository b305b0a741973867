package classifications

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/savetree-1/docflow/internal/audit"
	"github.com/savetree-1/docflow/internal/documents"
	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/workflow"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/query"
	"github.com/savetree-1/docflow/pkg/repository"
)

type repo struct {
	db          *sql.DB
	docs        documents.System
	classifier  Classifier
	rules       Resolver
	logger      *slog.Logger
	pagination  pagination.Config
	concurrency int
}

// New creates a classification repository implementing the System interface.
// Batch runs classify at most concurrency documents at a time.
func New(
	db *sql.DB,
	docs documents.System,
	classifier Classifier,
	rules Resolver,
	logger *slog.Logger,
	pagination pagination.Config,
	concurrency int,
) System {
	return &repo{
		db:          db,
		docs:        docs,
		classifier:  classifier,
		rules:       rules,
		logger:      logger.With("system", "classifications"),
		pagination:  pagination,
		concurrency: max(1, concurrency),
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Classification], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Category", "PrimaryDepartment", "RequestedBy")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count classifications: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classifications: %w", err)
	}

	result := pagination.NewPageResult(items, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Classification, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) Current(ctx context.Context, documentID uuid.UUID) (*Classification, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("DocumentID", documentID).
		WhereNull("SupersededAt", true).
		BuildSingleOrNull()

	c, err := repository.QueryOne(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &c, nil
}

func (r *repo) History(ctx context.Context, documentID uuid.UUID) ([]Classification, error) {
	if _, err := r.docs.Find(ctx, documentID); err != nil {
		return nil, err
	}

	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("DocumentID", documentID).
		Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanClassification)
	if err != nil {
		return nil, fmt.Errorf("query classification history: %w", err)
	}
	return items, nil
}

// Classify runs the orchestrator for a document, resolves a routing rule, and
// moves the document into Suggested. The new run, the superseded run, the
// routing and the classify entry are written in one transaction, and nothing
// is written once ctx is done.
func (r *repo) Classify(ctx context.Context, documentID uuid.UUID, actor auth.Actor) (*Classification, error) {
	if !actor.IsSystem() && !actor.Can(auth.ActionClassify) {
		return nil, fmt.Errorf("%w: role %q cannot %s", documents.ErrForbidden, actor.Role, auth.ActionClassify)
	}

	doc, err := r.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Deleted() {
		return nil, documents.ErrDeleted
	}
	if doc.Routing.State == documents.StateConfirmed {
		return nil, fmt.Errorf("%w: reopen the document before re-analysis", documents.ErrInvalidTransition)
	}

	text, err := r.docs.Text(ctx, doc)
	if err != nil {
		return nil, err
	}

	var previous *workflow.Result
	current, err := r.Current(ctx, documentID)
	switch {
	case err == nil:
		previous = &current.Result
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	res := r.classifier.Classify(ctx, NewRequest(doc, text, previous))
	decision, _ := r.rules.Resolve(Attributes(res, text))

	routing, err := doc.Routing.Suggest(Suggestion(res, decision))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classify %s: %w", documentID, err)
	}

	requestedBy := actor.Name
	if requestedBy == "" {
		requestedBy = auth.SystemName
	}

	c, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Classification, error) {
		c, err := r.insert(ctx, tx, documentID, res, decision, requestedBy)
		if err != nil {
			return c, err
		}

		if _, err := documents.SaveRouting(ctx, tx, doc.ID, doc.Version, routing); err != nil {
			return c, err
		}

		return c, audit.Append(ctx, tx, audit.Entry{
			DocumentID: &doc.ID,
			Actor:      requestedBy,
			Action:     audit.ActionClassify,
			Note:       classifyNote(res),
			Details: audit.Details(map[string]any{
				"classification_id": c.ID,
				"provider_used":     res.Provenance.ProviderUsed,
				"confidence":        res.Classification.Confidence,
				"department":        res.Routing.PrimaryDepartment,
				"hard_rule_applied": res.Provenance.HardRuleApplied,
				"reanalysis":        previous != nil,
				"routing_decision":  decision,
			}),
		})
	})
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, documents.ErrStaleState)
	}

	r.logger.Info("document classified",
		"document_id", documentID,
		"classification_id", c.ID,
		"provider_used", c.ProviderUsed,
		"category", c.Category,
		"department", c.PrimaryDepartment,
		"confidence", c.Confidence,
		"rule", c.Decision != nil,
		"actor", requestedBy,
	)
	return &c, nil
}

// ClassifyBatch classifies documents concurrently. Each document succeeds or
// fails on its own; results follow the order of documentIDs.
func (r *repo) ClassifyBatch(ctx context.Context, documentIDs []uuid.UUID, actor auth.Actor) []BatchResult {
	results := make([]BatchResult, len(documentIDs))

	var g errgroup.Group
	g.SetLimit(r.concurrency)

	for i, id := range documentIDs {
		g.Go(func() error {
			results[i].DocumentID = id
			c, err := r.Classify(ctx, id, actor)
			if err != nil {
				r.logger.Warn("batch classification failed", "document_id", id, "error", err)
				results[i].Error = err.Error()
				return nil
			}
			results[i].Classification = c
			return nil
		})
	}

	g.Wait()
	return results
}

func (r *repo) insert(
	ctx context.Context,
	tx *sql.Tx,
	documentID uuid.UUID,
	res workflow.Result,
	decision *routingrules.Decision,
	requestedBy string,
) (Classification, error) {
	if _, err := tx.ExecContext(ctx,
		`UPDATE classifications SET superseded_at = NOW()
		WHERE document_id = $1 AND superseded_at IS NULL`,
		documentID,
	); err != nil {
		return Classification{}, fmt.Errorf("supersede classification: %w", err)
	}

	resultJSON, err := json.Marshal(res)
	if err != nil {
		return Classification{}, fmt.Errorf("marshal result: %w", err)
	}

	var decisionJSON []byte
	if decision != nil {
		if decisionJSON, err = json.Marshal(decision); err != nil {
			return Classification{}, fmt.Errorf("marshal decision: %w", err)
		}
	}

	q := `INSERT INTO classifications(
			id, document_id, category, urgency, confidence, primary_department,
			provider_used, hard_rule_applied, result, decision, requested_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) ` + returning

	return repository.QueryOne(ctx, tx, q, []any{
		uuid.New(),
		documentID,
		string(res.Classification.Category),
		string(res.KeyDetails.Urgency),
		res.Classification.Confidence,
		res.Routing.PrimaryDepartment,
		string(res.Provenance.ProviderUsed),
		res.Provenance.HardRuleApplied,
		resultJSON,
		decisionJSON,
		requestedBy,
	}, scanClassification)
}

func classifyNote(res workflow.Result) string {
	note := fmt.Sprintf("suggested %s (%s, %.2f) via %s",
		res.Routing.PrimaryDepartment,
		res.Classification.Category,
		res.Classification.Confidence,
		res.Provenance.ProviderUsed,
	)
	if res.Provenance.HardRuleApplied {
		note += "; hard rule applied"
	}
	return note
}
