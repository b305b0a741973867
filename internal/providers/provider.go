// Package providers adapts external classification capabilities to a uniform
// request and response contract.
package providers

import (
	"context"
	"unicode/utf8"

	"github.com/savetree-1/docflow/internal/taxonomy"
)

// Provider classifies a single document. Implementations must bound the text
// they send and return either a validated Output or an *Error.
type Provider interface {
	Name() string
	Classify(ctx context.Context, req Request) (*Output, error)
}

// Request is the input to a provider call.
type Request struct {
	Text   string
	Prompt string
}

// Output is a validated provider response. It is only built by Parse.
type Output struct {
	Summary    []string       `json:"summary"`
	KeyDetails KeyDetails     `json:"key_details"`
	Class      Classification `json:"classification"`
	Routing    Routing        `json:"routing"`
}

// KeyDetails holds the extracted subject, urgency, and optional deadline.
type KeyDetails struct {
	Subject  string           `json:"subject"`
	Urgency  taxonomy.Urgency `json:"urgency"`
	Deadline *string          `json:"deadline,omitempty"`
}

// Classification holds the category and the provider's confidence in it.
type Classification struct {
	Category   taxonomy.Category `json:"category"`
	Confidence float64           `json:"confidence"`
}

// Routing is a provider's department suggestion.
type Routing struct {
	PrimaryDepartment string   `json:"primary_department"`
	CCDepartments     []string `json:"cc_departments"`
	Reason            string   `json:"reason"`
}

// Func adapts a function to the Provider interface.
type Func struct {
	ProviderName string
	Fn           func(ctx context.Context, req Request) (*Output, error)
}

func (f Func) Name() string {
	return f.ProviderName
}

func (f Func) Classify(ctx context.Context, req Request) (*Output, error) {
	return f.Fn(ctx, req)
}

// Truncate returns the first max runes of s. A non-positive max returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
