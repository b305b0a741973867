package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/audit"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/query"
	"github.com/savetree-1/docflow/pkg/repository"
	"github.com/savetree-1/docflow/pkg/storage"
)

const textContentType = "text/plain; charset=utf-8"

type repo struct {
	db          *sql.DB
	storage     storage.System
	history     audit.System
	logger      *slog.Logger
	pagination  pagination.Config
	maxTextSize int64
}

// New creates a document repository implementing the System interface.
func New(
	db *sql.DB,
	store storage.System,
	history audit.System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxTextSize int64,
) System {
	return &repo{
		db:          db,
		storage:     store,
		history:     history,
		logger:      logger.With("system", "documents"),
		pagination:  pagination,
		maxTextSize: maxTextSize,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination, r.maxTextSize)
}

func (r *repo) List(
	ctx context.Context,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Document], error) {
	page.Normalize(r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereSearch(page.Search, "Title", "UploadingDepartment", "SuggestedDepartment")

	filters.Apply(qb)

	if len(page.Sort) > 0 {
		qb.OrderByFields(page.Sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	docs, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanDocument)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}

	result := pagination.NewPageResult(docs, total, page.Page, page.PageSize)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Document, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	d, err := repository.QueryOne(ctx, r.db, q, args, scanDocument)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &d, nil
}

func (r *repo) Text(ctx context.Context, doc *Document) (string, error) {
	data, err := storage.ReadAll(ctx, r.storage, doc.StorageKey, r.maxTextSize)
	if err != nil {
		return "", fmt.Errorf("read document text: %w", err)
	}
	return string(data), nil
}

// Create stores the text blob, then inserts the document in Unclassified
// together with its intake entry. The blob is removed if the insert fails.
func (r *repo) Create(ctx context.Context, actor auth.Actor, cmd CreateCommand) (*Document, error) {
	cmd.Title = strings.TrimSpace(cmd.Title)
	cmd.UploadingDepartment = strings.TrimSpace(cmd.UploadingDepartment)

	if cmd.Title == "" || cmd.UploadingDepartment == "" {
		return nil, fmt.Errorf("%w: title and uploading_department required", ErrInvalidCommand)
	}
	if !utf8.ValidString(cmd.Text) {
		return nil, fmt.Errorf("%w: text must be valid UTF-8", ErrInvalidCommand)
	}
	if r.maxTextSize > 0 && int64(len(cmd.Text)) > r.maxTextSize {
		return nil, ErrTextTooLarge
	}

	id := uuid.New()
	key := TextKey(id)

	if err := r.storage.Upload(ctx, key, strings.NewReader(cmd.Text), textContentType); err != nil {
		return nil, fmt.Errorf("upload document text: %w", err)
	}

	q := `INSERT INTO documents(id, title, uploading_department, storage_key, text_length, state)
		VALUES ($1, $2, $3, $4, $5, $6) ` + returning

	d, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		d, err := repository.QueryOne(ctx, tx, q, []any{
			id,
			cmd.Title,
			cmd.UploadingDepartment,
			key,
			utf8.RuneCountInString(cmd.Text),
			string(StateUnclassified),
		}, scanDocument)
		if err != nil {
			return d, err
		}

		return d, audit.Append(ctx, tx, audit.Entry{
			DocumentID: &d.ID,
			Actor:      actorName(actor),
			Action:     audit.ActionIntake,
			Note:       fmt.Sprintf("received from %s", d.UploadingDepartment),
		})
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating blob delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("document created", "id", d.ID, "title", d.Title, "department", d.UploadingDepartment)
	return &d, nil
}

// Confirm applies a human decision. Confirming the suggestion records a
// confirm entry; choosing another department records modify-routing with
// both the suggested and the final department.
func (r *repo) Confirm(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ConfirmCommand) (*Document, error) {
	if err := authorize(actor, auth.ActionConfirm); err != nil {
		return nil, err
	}

	var department string
	if cmd.ModifiedDepartment != nil {
		department = strings.TrimSpace(*cmd.ModifiedDepartment)
	}
	if !cmd.Confirmed && department == "" {
		return nil, fmt.Errorf("%w: a rejected suggestion needs a modified_department", ErrInvalidCommand)
	}

	return r.transition(ctx, id, cmd.Version, func(doc Document) (Routing, audit.Entry, error) {
		routing, overridden, err := doc.Routing.Confirm(department, actor.Name, time.Now().UTC())
		if err != nil {
			return routing, audit.Entry{}, err
		}

		entry := audit.Entry{
			Actor:  actor.Name,
			Action: audit.ActionConfirm,
			Note:   fmt.Sprintf("confirmed routing to %s", doc.Routing.SuggestedDepartment),
			Details: audit.Details(map[string]any{
				"suggested_department": doc.Routing.SuggestedDepartment,
				"final_department":     *routing.ConfirmedDepartment,
				"version":              doc.Version,
			}),
		}
		if overridden {
			entry.Action = audit.ActionModifyRouting
			entry.Note = fmt.Sprintf("routing changed from %s to %s", doc.Routing.SuggestedDepartment, *routing.ConfirmedDepartment)
		}
		if note := strings.TrimSpace(cmd.Note); note != "" {
			entry.Note += ": " + note
		}
		return routing, entry, nil
	})
}

func (r *repo) Reopen(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd ReopenCommand) (*Document, error) {
	if err := authorize(actor, auth.ActionReopen); err != nil {
		return nil, err
	}

	reason := strings.TrimSpace(cmd.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: reason required", ErrInvalidCommand)
	}

	return r.transition(ctx, id, cmd.Version, func(doc Document) (Routing, audit.Entry, error) {
		routing, err := doc.Routing.Reopen()
		if err != nil {
			return routing, audit.Entry{}, err
		}

		var confirmed string
		if doc.Routing.ConfirmedDepartment != nil {
			confirmed = *doc.Routing.ConfirmedDepartment
		}
		return routing, audit.Entry{
			Actor:  actor.Name,
			Action: audit.ActionReopen,
			Note:   "reopened: " + reason,
			Details: audit.Details(map[string]any{
				"previous_department": confirmed,
				"previous_confirmer":  doc.Routing.ConfirmedBy,
				"version":             doc.Version,
			}),
		}, nil
	})
}

func (r *repo) Comment(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd CommentCommand) error {
	if err := authorize(actor, auth.ActionComment); err != nil {
		return err
	}

	text := strings.TrimSpace(cmd.Text)
	if text == "" {
		return fmt.Errorf("%w: comment text required", ErrInvalidCommand)
	}

	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if doc.Deleted() {
		return ErrDeleted
	}

	if err := audit.Append(ctx, r.db, audit.Entry{
		DocumentID: &id,
		Actor:      actor.Name,
		Action:     audit.ActionComment,
		Note:       text,
	}); err != nil {
		return err
	}

	r.logger.Info("document comment added", "id", id, "actor", actor.Name)
	return nil
}

func (r *repo) Decide(ctx context.Context, actor auth.Actor, id uuid.UUID, cmd DecisionCommand) (*audit.Entry, error) {
	if err := authorize(actor, auth.ActionConfirm); err != nil {
		return nil, err
	}

	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	entry, err := cmd.Entry(doc, actor.Name)
	if err != nil {
		return nil, err
	}
	entry.ID = uuid.New()

	if err := audit.Append(ctx, r.db, entry); err != nil {
		return nil, err
	}

	r.logger.Info("document decision recorded", "id", id, "action", entry.Action, "actor", actor.Name)
	return &entry, nil
}

// Delete soft-deletes a document. The text blob and history are kept so the
// document can be restored.
func (r *repo) Delete(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if err := authorize(actor, auth.ActionDelete); err != nil {
		return err
	}

	_, err := r.lifecycle(ctx, actor, id, audit.ActionDelete,
		`UPDATE documents SET deleted_at = NOW(), version = version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL `+returning)
	return err
}

func (r *repo) Restore(ctx context.Context, actor auth.Actor, id uuid.UUID) (*Document, error) {
	if err := authorize(actor, auth.ActionDelete); err != nil {
		return nil, err
	}

	return r.lifecycle(ctx, actor, id, audit.ActionRestore,
		`UPDATE documents SET deleted_at = NULL, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NOT NULL `+returning)
}

func (r *repo) History(ctx context.Context, id uuid.UUID) ([]audit.Entry, error) {
	if _, err := r.Find(ctx, id); err != nil {
		return nil, err
	}
	return r.history.ForDocument(ctx, id)
}

// transition loads the document, applies fn, and writes the result with its
// history entry under an optimistic version check.
func (r *repo) transition(
	ctx context.Context,
	id uuid.UUID,
	expected *int,
	fn func(Document) (Routing, audit.Entry, error),
) (*Document, error) {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.Deleted() {
		return nil, ErrDeleted
	}
	if err := CheckVersion(expected, doc.Version); err != nil {
		return nil, err
	}

	routing, entry, err := fn(*doc)
	if err != nil {
		return nil, err
	}
	entry.DocumentID = &doc.ID

	updated, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		d, err := SaveRouting(ctx, tx, doc.ID, doc.Version, routing)
		if err != nil {
			return d, err
		}
		return d, audit.Append(ctx, tx, entry)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("document routing changed",
		"id", updated.ID,
		"action", entry.Action,
		"state", updated.Routing.State,
		"actor", entry.Actor,
		"version", updated.Version,
	)
	return &updated, nil
}

func (r *repo) lifecycle(ctx context.Context, actor auth.Actor, id uuid.UUID, action audit.Action, q string) (*Document, error) {
	doc, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Document, error) {
		d, err := repository.QueryOne(ctx, tx, q, []any{id}, scanDocument)
		if err != nil {
			return d, err
		}
		return d, audit.Append(ctx, tx, audit.Entry{
			DocumentID: &id,
			Actor:      actor.Name,
			Action:     action,
			Note:       fmt.Sprintf("document %s", action),
		})
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.lifecycleConflict(ctx, id, action)
		}
		return nil, err
	}

	r.logger.Info("document lifecycle changed", "id", id, "action", action, "actor", actor.Name)
	return &doc, nil
}

// lifecycleConflict explains why a delete or restore matched no row.
func (r *repo) lifecycleConflict(ctx context.Context, id uuid.UUID, action audit.Action) error {
	doc, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	if action == audit.ActionDelete && doc.Deleted() {
		return ErrDeleted
	}
	if action == audit.ActionRestore && !doc.Deleted() {
		return ErrNotDeleted
	}
	return ErrStaleState
}

func authorize(actor auth.Actor, action auth.Action) error {
	if actor.IsSystem() || strings.TrimSpace(actor.Name) == "" {
		return fmt.Errorf("%w: %s requires a human actor", ErrForbidden, action)
	}
	if !actor.Can(action) {
		return fmt.Errorf("%w: role %q cannot %s", ErrForbidden, actor.Role, action)
	}
	return nil
}

func actorName(actor auth.Actor) string {
	if strings.TrimSpace(actor.Name) == "" {
		return auth.SystemName
	}
	return actor.Name
}
