package audit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/repository"
)

const insertEntry = `
	INSERT INTO action_history(id, document_id, rule_id, actor, action, note, details)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`

// Append writes entry through e, which is normally the caller's transaction,
// so the entry commits or rolls back together with the change it records.
func Append(ctx context.Context, e repository.Executor, entry Entry) error {
	entry.Actor = strings.TrimSpace(entry.Actor)
	if entry.Actor == "" {
		return fmt.Errorf("%w: actor required", ErrInvalidEntry)
	}
	if entry.Action == "" {
		return fmt.Errorf("%w: action required", ErrInvalidEntry)
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}

	var details any
	if len(entry.Details) > 0 {
		details = []byte(entry.Details)
	}

	if _, err := e.ExecContext(ctx, insertEntry,
		entry.ID,
		entry.DocumentID,
		entry.RuleID,
		entry.Actor,
		string(entry.Action),
		entry.Note,
		details,
	); err != nil {
		if repository.IsRaisedException(err) {
			return ErrImmutable
		}
		return fmt.Errorf("append %s entry: %w", entry.Action, err)
	}
	return nil
}
