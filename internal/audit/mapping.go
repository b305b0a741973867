package audit

import (
	"database/sql"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/query"
	"github.com/savetree-1/docflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "action_history", "h").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("rule_id", "RuleID").
	Project("actor", "Actor").
	Project("action", "Action").
	Project("note", "Note").
	Project("details", "Details").
	Project("created_at", "CreatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for history queries.
type Filters struct {
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	RuleID     *uuid.UUID `json:"rule_id,omitempty"`
	Actions    []string   `json:"actions,omitempty"`
	Actor      *string    `json:"actor,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("RuleID", f.RuleID).
		WhereIn("Action", actionArgs(f.Actions)).
		WhereContains("Actor", f.Actor)
}

// FiltersFromQuery extracts filter values from URL query parameters.
// Malformed ids are ignored.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("document_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.DocumentID = &id
		}
	}

	if v := values.Get("rule_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.RuleID = &id
		}
	}

	for _, v := range strings.Split(values.Get("action"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.Actions = append(f.Actions, v)
		}
	}

	if v := values.Get("actor"); v != "" {
		f.Actor = &v
	}

	return f
}

func actionArgs(actions []string) []any {
	args := make([]any, len(actions))
	for i, a := range actions {
		args[i] = a
	}
	return args
}

func scanEntry(s repository.Scanner) (Entry, error) {
	var (
		e       Entry
		action  string
		details []byte
		docID   uuid.NullUUID
		ruleID  uuid.NullUUID
		note    sql.NullString
	)
	err := s.Scan(
		&e.ID,
		&docID,
		&ruleID,
		&e.Actor,
		&action,
		&note,
		&details,
		&e.CreatedAt,
	)
	if docID.Valid {
		e.DocumentID = &docID.UUID
	}
	if ruleID.Valid {
		e.RuleID = &ruleID.UUID
	}
	e.Action = Action(action)
	e.Note = note.String
	if len(details) > 0 {
		e.Details = details
	}
	return e, err
}
