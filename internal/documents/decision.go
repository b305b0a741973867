package documents

import (
	"fmt"
	"strings"

	"github.com/savetree-1/docflow/internal/audit"
)

// DecisionCommand records what the receiving department did with a
// confirmed document. Forward names the department it was passed on to.
type DecisionCommand struct {
	Action     string `json:"action"`
	Note       string `json:"note"`
	Department string `json:"department,omitempty"`
}

// Entry validates cmd against doc and returns the history entry it produces.
// Decisions never change routing state.
func (cmd DecisionCommand) Entry(doc *Document, actor string) (audit.Entry, error) {
	if doc.Deleted() {
		return audit.Entry{}, ErrDeleted
	}
	if doc.Routing.State != StateConfirmed {
		return audit.Entry{}, fmt.Errorf("%w: decisions apply to confirmed routings, document is %s",
			ErrInvalidTransition, doc.Routing.State)
	}

	action := audit.Action(strings.ToLower(strings.TrimSpace(cmd.Action)))
	note := strings.TrimSpace(cmd.Note)
	details := map[string]any{
		"department": *doc.Routing.ConfirmedDepartment,
		"version":    doc.Version,
	}

	switch action {
	case audit.ActionApprove:
	case audit.ActionReject:
		if note == "" {
			return audit.Entry{}, fmt.Errorf("%w: rejection requires a note", ErrInvalidCommand)
		}
	case audit.ActionForward:
		target := strings.TrimSpace(cmd.Department)
		if target == "" {
			return audit.Entry{}, fmt.Errorf("%w: forward requires a department", ErrInvalidCommand)
		}
		if strings.EqualFold(target, *doc.Routing.ConfirmedDepartment) {
			return audit.Entry{}, fmt.Errorf("%w: document is already with %s", ErrInvalidCommand, target)
		}
		details["forwarded_to"] = target
		if note == "" {
			note = "forwarded to " + target
		}
	default:
		return audit.Entry{}, fmt.Errorf("%w: unknown decision %q", ErrInvalidCommand, cmd.Action)
	}

	id := doc.ID
	return audit.Entry{
		DocumentID: &id,
		Actor:      actor,
		Action:     action,
		Note:       note,
		Details:    audit.Details(details),
	}, nil
}
