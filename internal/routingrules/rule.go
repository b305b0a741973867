// Package routingrules holds administrator-defined routing rules and the
// engine that resolves a document's attributes to an assignee.
package routingrules

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/taxonomy"
)

// Rule is an administrator-defined routing rule. Department, Category, and
// Urgency hold either a concrete value or "any"; an empty Keywords list is a
// wildcard.
type Rule struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Category   string    `json:"category"`
	Urgency    string    `json:"urgency"`
	Keywords   []string  `json:"keywords"`
	AssignTo   string    `json:"assign_to"`
	Priority   int       `json:"priority"`
	Active     bool      `json:"active"`
	Seq        int64     `json:"seq"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Command carries the fields an administrator supplies to create or replace a rule.
type Command struct {
	Name       string   `json:"name"`
	Department string   `json:"department"`
	Category   string   `json:"category"`
	Urgency    string   `json:"urgency"`
	Keywords   []string `json:"keywords"`
	AssignTo   string   `json:"assign_to"`
	Priority   int      `json:"priority"`
	Active     *bool    `json:"active"`
}

// Normalize validates cmd and returns it in canonical form: trimmed text,
// canonical category and urgency, lowercase de-duplicated keywords.
func (cmd Command) Normalize() (Command, error) {
	cmd.Name = strings.TrimSpace(cmd.Name)
	cmd.Department = strings.TrimSpace(cmd.Department)
	cmd.AssignTo = strings.TrimSpace(cmd.AssignTo)

	if cmd.Name == "" {
		return cmd, fmt.Errorf("%w: name required", ErrInvalidRule)
	}
	if cmd.Department == "" {
		return cmd, fmt.Errorf("%w: department required", ErrInvalidRule)
	}
	if strings.EqualFold(cmd.Department, taxonomy.Any) {
		cmd.Department = taxonomy.Any
	}
	if cmd.AssignTo == "" {
		return cmd, fmt.Errorf("%w: assign_to required", ErrInvalidRule)
	}

	category, err := taxonomy.ParseCondition(cmd.Category, taxonomy.ParseCategory)
	if err != nil {
		return cmd, fmt.Errorf("%w: category %q", ErrInvalidRule, cmd.Category)
	}
	urgency, err := taxonomy.ParseCondition(cmd.Urgency, taxonomy.ParseUrgency)
	if err != nil {
		return cmd, fmt.Errorf("%w: urgency %q", ErrInvalidRule, cmd.Urgency)
	}
	cmd.Category, cmd.Urgency = category, urgency

	keywords := make([]string, 0, len(cmd.Keywords))
	for _, k := range cmd.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || slices.Contains(keywords, k) {
			continue
		}
		if strings.IndexFunc(k, unicode.IsSpace) >= 0 {
			return cmd, fmt.Errorf("%w: keyword %q must be a single word", ErrInvalidRule, k)
		}
		keywords = append(keywords, k)
	}
	if slices.Contains(keywords, taxonomy.Any) {
		keywords = keywords[:0]
	}
	cmd.Keywords = keywords

	if cmd.Active == nil {
		v := true
		cmd.Active = &v
	}

	return cmd, nil
}

// Attributes describe a document for rule resolution.
type Attributes struct {
	Department string            `json:"department"`
	Category   taxonomy.Category `json:"category"`
	Urgency    taxonomy.Urgency  `json:"urgency"`
	Keywords   []string          `json:"keywords"`
}

// Decision is the outcome of a successful resolution.
type Decision struct {
	RuleID   uuid.UUID `json:"rule_id"`
	RuleName string    `json:"rule_name"`
	Priority int       `json:"priority"`
	AssignTo string    `json:"assign_to"`
}

// Matches reports whether every condition of r holds for a.
func (r Rule) Matches(a Attributes, terms map[string]struct{}) bool {
	if r.Department != taxonomy.Any && !strings.EqualFold(r.Department, strings.TrimSpace(a.Department)) {
		return false
	}
	if !taxonomy.MatchCondition(r.Category, string(a.Category)) {
		return false
	}
	if !taxonomy.MatchCondition(r.Urgency, string(a.Urgency)) {
		return false
	}
	if len(r.Keywords) == 0 {
		return true
	}
	for _, k := range r.Keywords {
		if _, ok := terms[k]; ok {
			return true
		}
	}
	return false
}

// Terms splits texts into the lowercase words used as resolution keywords.
func Terms(texts ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, text := range texts {
		for _, w := range strings.FieldsFunc(text, notWordRune) {
			w = strings.ToLower(w)
			if _, ok := seen[w]; ok {
				continue
			}
			seen[w] = struct{}{}
			out = append(out, w)
		}
	}
	return out
}

func notWordRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsMark(r)
}

func termSet(keywords []string) map[string]struct{} {
	set := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		set[strings.ToLower(strings.TrimSpace(k))] = struct{}{}
	}
	return set
}

// FromCommands normalizes cmds into rules whose creation sequence follows
// slice order. It is used to resolve against rule sets held outside the store.
func FromCommands(cmds []Command) ([]Rule, error) {
	rules := make([]Rule, 0, len(cmds))
	for i, cmd := range cmds {
		cmd, err := cmd.Normalize()
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		rules = append(rules, Rule{
			ID:         uuid.New(),
			Name:       cmd.Name,
			Department: cmd.Department,
			Category:   cmd.Category,
			Urgency:    cmd.Urgency,
			Keywords:   cmd.Keywords,
			AssignTo:   cmd.AssignTo,
			Priority:   cmd.Priority,
			Active:     *cmd.Active,
			Seq:        int64(i + 1),
		})
	}
	return rules, nil
}
