package documents

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/repository"
)

// TextKey returns the blob key holding a document's extracted text.
func TextKey(id uuid.UUID) string {
	return fmt.Sprintf("documents/%s/text.txt", id)
}

const saveRouting = `UPDATE documents
	SET state = $3, category = $4, urgency = $5, suggested_department = $6,
	    cc_departments = $7, routing_confidence = $8, routing_reason = $9,
	    suggested_assignee = $10, matched_rule = $11, confirmed = $12,
	    confirmed_department = $13, confirmed_by = $14, confirmed_at = $15,
	    version = version + 1, updated_at = NOW()
	WHERE id = $1 AND version = $2 AND deleted_at IS NULL
	` + returning

// SaveRouting writes routing through q if the stored document is still at
// version and not deleted. Otherwise it returns ErrStaleState and writes nothing.
// It is exported so a classification run can move a document into Suggested
// inside its own transaction.
func SaveRouting(ctx context.Context, q repository.Querier, id uuid.UUID, version int, routing Routing) (Document, error) {
	d, err := repository.QueryOne(ctx, q, saveRouting, []any{
		id,
		version,
		string(routing.State),
		routing.Category,
		routing.Urgency,
		routing.SuggestedDepartment,
		encodeList(routing.CCDepartments),
		routing.RoutingConfidence,
		routing.RoutingReason,
		routing.SuggestedAssignee,
		routing.MatchedRule,
		routing.Confirmed,
		routing.ConfirmedDepartment,
		routing.ConfirmedBy,
		routing.ConfirmedAt,
	}, scanDocument)
	if errors.Is(err, sql.ErrNoRows) {
		return d, ErrStaleState
	}
	return d, err
}

// CheckVersion returns ErrStaleState when the caller observed a version other
// than the current one. A nil expected version skips the check.
func CheckVersion(expected *int, current int) error {
	if expected != nil && *expected != current {
		return fmt.Errorf("%w: observed version %d, current %d", ErrStaleState, *expected, current)
	}
	return nil
}
