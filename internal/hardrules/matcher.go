// Package hardrules evaluates document text against a declarative, ordered
// table of keyword rules. A match always overrides inferred classification.
package hardrules

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/savetree-1/docflow/internal/taxonomy"
)

// DefaultReason is attached to every result whose rule declares no reason.
const DefaultReason = "Hard Rule Applied"

//go:embed rules.toml
var defaultTable []byte

// Rule is one entry of the rule table.
type Rule struct {
	Name       string   `toml:"name" json:"name"`
	Patterns   []string `toml:"patterns" json:"patterns"`
	Category   string   `toml:"category" json:"category"`
	Department string   `toml:"department" json:"department"`
	Urgency    string   `toml:"urgency" json:"urgency"`
	Reason     string   `toml:"reason" json:"reason,omitempty"`
}

type table struct {
	Rules []Rule `toml:"rule"`
}

// Result describes the rule that matched a text.
type Result struct {
	Rule       string            `json:"rule"`
	Keyword    string            `json:"keyword"`
	Category   taxonomy.Category `json:"category"`
	Department string            `json:"department"`
	Urgency    taxonomy.Urgency  `json:"urgency"`
	Reason     string            `json:"reason"`
}

type compiled struct {
	rule     Rule
	category taxonomy.Category
	urgency  taxonomy.Urgency
	pattern  *regexp.Regexp
}

// Matcher holds a validated, compiled rule table. It is immutable and safe
// for concurrent use.
type Matcher struct {
	rules []compiled
}

// Default returns a Matcher over the rule table built into the binary.
func Default() (*Matcher, error) {
	return Load(defaultTable)
}

// LoadFile reads a TOML rule table from path.
func LoadFile(path string) (*Matcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rule table: %w", err)
	}
	return Load(data)
}

// Load parses and validates a TOML rule table.
func Load(data []byte) (*Matcher, error) {
	var t table
	if err := toml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}
	return New(t.Rules)
}

// New validates and compiles rules, preserving their order.
func New(rules []Rule) (*Matcher, error) {
	m := &Matcher{rules: make([]compiled, 0, len(rules))}
	seen := make(map[string]bool, len(rules))

	for i, r := range rules {
		c, err := compile(r)
		if err != nil {
			return nil, fmt.Errorf("%w: rule %d (%s): %v", ErrInvalidRule, i, r.Name, err)
		}
		if seen[c.rule.Name] {
			return nil, fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRule, c.rule.Name)
		}
		seen[c.rule.Name] = true
		m.rules = append(m.rules, c)
	}

	return m, nil
}

// Match returns the first rule, in table order, with a pattern occurring in text.
func (m *Matcher) Match(text string) (*Result, bool) {
	for _, c := range m.rules {
		found := c.pattern.FindStringSubmatch(text)
		if found == nil {
			continue
		}
		return &Result{
			Rule:       c.rule.Name,
			Keyword:    strings.ToLower(strings.Join(strings.Fields(found[1]), " ")),
			Category:   c.category,
			Department: c.rule.Department,
			Urgency:    c.urgency,
			Reason:     c.rule.Reason,
		}, true
	}
	return nil, false
}

// Rules returns a copy of the rule table in evaluation order.
func (m *Matcher) Rules() []Rule {
	out := make([]Rule, len(m.rules))
	for i, c := range m.rules {
		r := c.rule
		r.Patterns = append([]string(nil), c.rule.Patterns...)
		out[i] = r
	}
	return out
}

// Len returns the number of rules.
func (m *Matcher) Len() int {
	return len(m.rules)
}

func compile(r Rule) (compiled, error) {
	r.Name = strings.TrimSpace(r.Name)
	r.Department = strings.TrimSpace(r.Department)
	r.Reason = strings.TrimSpace(r.Reason)

	if r.Name == "" {
		return compiled{}, fmt.Errorf("name required")
	}
	if r.Department == "" {
		return compiled{}, fmt.Errorf("department required")
	}
	if r.Reason == "" {
		r.Reason = DefaultReason
	}

	category, err := taxonomy.ParseCategory(r.Category)
	if err != nil {
		return compiled{}, fmt.Errorf("category %q: %w", r.Category, err)
	}
	urgency, err := taxonomy.ParseUrgency(r.Urgency)
	if err != nil {
		return compiled{}, fmt.Errorf("urgency %q: %w", r.Urgency, err)
	}
	r.Category = string(category)
	r.Urgency = string(urgency)

	alternatives := make([]string, 0, len(r.Patterns))
	patterns := make([]string, 0, len(r.Patterns))
	for _, p := range r.Patterns {
		words := strings.Fields(p)
		if len(words) == 0 {
			continue
		}
		quoted := make([]string, len(words))
		for i, w := range words {
			quoted[i] = regexp.QuoteMeta(w)
		}
		alternatives = append(alternatives, strings.Join(quoted, `\s+`))
		patterns = append(patterns, strings.Join(words, " "))
	}
	if len(alternatives) == 0 {
		return compiled{}, fmt.Errorf("at least one pattern required")
	}
	r.Patterns = patterns

	// boundaries are any non-word rune so non-ASCII text is handled like ASCII
	const boundary = `[^\pL\pM\pN_]`
	expr := `(?i)(?:^|` + boundary + `)(` + strings.Join(alternatives, "|") + `)(?:$|` + boundary + `)`

	re, err := regexp.Compile(expr)
	if err != nil {
		return compiled{}, fmt.Errorf("compile patterns: %w", err)
	}

	return compiled{
		rule:     r,
		category: category,
		urgency:  urgency,
		pattern:  re,
	}, nil
}
