// Package audit records the append-only action history of documents and
// routing rules. Entries are never updated or removed.
package audit

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Action names a recorded event.
type Action string

const (
	ActionClassify      Action = "classify"
	ActionConfirm       Action = "confirm"
	ActionModifyRouting Action = "modify-routing"
	ActionReopen        Action = "reopen"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionForward       Action = "forward"
	ActionComment       Action = "comment"
	ActionDelete        Action = "delete"
	ActionRestore       Action = "restore"
	ActionIntake        Action = "intake"
	ActionRuleCreate    Action = "rule-create"
	ActionRuleUpdate    Action = "rule-update"
	ActionRuleDelete    Action = "rule-delete"
)

// Entry is one immutable history record. DocumentID is nil for rule changes.
type Entry struct {
	ID         uuid.UUID       `json:"id"`
	DocumentID *uuid.UUID      `json:"document_id"`
	RuleID     *uuid.UUID      `json:"rule_id,omitempty"`
	Actor      string          `json:"actor"`
	Action     Action          `json:"action"`
	Note       string          `json:"note"`
	Details    json.RawMessage `json:"details,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Details marshals v for use as Entry.Details. A marshal failure yields nil
// so that recording never fails on an unrepresentable payload.
func Details(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}
