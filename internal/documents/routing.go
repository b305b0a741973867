package documents

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// State is a document's position in the routing state machine.
type State string

const (
	StateUnclassified State = "unclassified"
	StateSuggested    State = "suggested"
	StateConfirmed    State = "confirmed"
)

// Routing is the routing portion of a document. Suggestion fields populate on
// entering Suggested; confirmation fields populate on entering Confirmed.
type Routing struct {
	State               State      `json:"state"`
	Category            string     `json:"category,omitempty"`
	Urgency             string     `json:"urgency,omitempty"`
	SuggestedDepartment string     `json:"suggested_department,omitempty"`
	CCDepartments       []string   `json:"cc_departments"`
	RoutingConfidence   float64    `json:"routing_confidence"`
	RoutingReason       string     `json:"routing_reason,omitempty"`
	SuggestedAssignee   *string    `json:"suggested_assignee,omitempty"`
	MatchedRule         *string    `json:"matched_rule,omitempty"`
	Confirmed           bool       `json:"confirmed"`
	ConfirmedDepartment *string    `json:"confirmed_department,omitempty"`
	ConfirmedBy         *string    `json:"confirmed_by,omitempty"`
	ConfirmedAt         *time.Time `json:"confirmed_at,omitempty"`
}

// Suggestion is the classification outcome that moves a document into Suggested.
type Suggestion struct {
	Category      string
	Urgency       string
	Department    string
	CCDepartments []string
	Confidence    float64
	Reason        string
	Assignee      *string
	MatchedRule   *string
}

// Suggest records a new suggestion. Unclassified and Suggested documents
// accept it; a Confirmed routing must be reopened first.
func (r Routing) Suggest(s Suggestion) (Routing, error) {
	if r.State == StateConfirmed {
		return r, fmt.Errorf("%w: classify %s document", ErrInvalidTransition, r.State)
	}
	if strings.TrimSpace(s.Department) == "" {
		return r, fmt.Errorf("%w: suggestion without department", ErrInvalidCommand)
	}

	cc := make([]string, 0, len(s.CCDepartments))
	for _, d := range s.CCDepartments {
		if d != s.Department && !slices.Contains(cc, d) {
			cc = append(cc, d)
		}
	}

	return Routing{
		State:               StateSuggested,
		Category:            s.Category,
		Urgency:             s.Urgency,
		SuggestedDepartment: s.Department,
		CCDepartments:       cc,
		RoutingConfidence:   s.Confidence,
		RoutingReason:       s.Reason,
		SuggestedAssignee:   s.Assignee,
		MatchedRule:         s.MatchedRule,
	}, nil
}

// Confirm locks the routing to department, or to the suggestion when
// department is empty. It reports whether the human overrode the suggestion.
func (r Routing) Confirm(department, actor string, at time.Time) (Routing, bool, error) {
	if r.State != StateSuggested {
		return r, false, fmt.Errorf("%w: confirm %s document", ErrInvalidTransition, r.State)
	}
	if strings.TrimSpace(actor) == "" {
		return r, false, fmt.Errorf("%w: confirmation requires an actor", ErrInvalidCommand)
	}

	department = strings.TrimSpace(department)
	if department == "" {
		department = r.SuggestedDepartment
	}
	overridden := department != r.SuggestedDepartment

	r.State = StateConfirmed
	r.Confirmed = true
	r.ConfirmedDepartment = &department
	r.ConfirmedBy = &actor
	r.ConfirmedAt = &at
	return r, overridden, nil
}

// Reopen returns a Confirmed routing to Suggested. The suggestion is kept;
// the confirmation is cleared and survives only in the action history.
func (r Routing) Reopen() (Routing, error) {
	if r.State != StateConfirmed {
		return r, fmt.Errorf("%w: reopen %s document", ErrInvalidTransition, r.State)
	}

	r.State = StateSuggested
	r.Confirmed = false
	r.ConfirmedDepartment = nil
	r.ConfirmedBy = nil
	r.ConfirmedAt = nil
	return r, nil
}
