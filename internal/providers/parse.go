package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/savetree-1/docflow/internal/taxonomy"
	"github.com/savetree-1/docflow/pkg/formatting"
)

// MaxSummaryItems bounds the summary list accepted from a provider.
const MaxSummaryItems = 5

type rawOutput struct {
	Summary    []string `json:"summary"`
	KeyDetails struct {
		Subject  string  `json:"subject"`
		Urgency  string  `json:"urgency"`
		Deadline *string `json:"deadline"`
	} `json:"key_details"`
	Classification struct {
		Category   string   `json:"category"`
		Confidence *float64 `json:"confidence"`
	} `json:"classification"`
	Routing struct {
		PrimaryDepartment string   `json:"primary_department"`
		CCDepartments     []string `json:"cc_departments"`
		Reason            string   `json:"reason"`
	} `json:"routing"`
}

// Parse converts raw provider content into a validated Output. Content may be
// bare JSON, fenced JSON, or JSON embedded in prose. Unknown fields and any
// value outside the fixed schema are rejected with ErrMalformedResponse.
func Parse(content string) (*Output, error) {
	envelope, err := formatting.Parse[json.RawMessage](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	dec := json.NewDecoder(bytes.NewReader(envelope))
	dec.DisallowUnknownFields()

	var raw rawOutput
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrMalformedResponse, err)
	}

	out, err := raw.validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return out, nil
}

func (r *rawOutput) validate() (*Output, error) {
	summary := make([]string, 0, len(r.Summary))
	for _, s := range r.Summary {
		if s = strings.TrimSpace(s); s != "" {
			summary = append(summary, s)
		}
	}
	if len(summary) == 0 {
		return nil, fmt.Errorf("summary required")
	}
	if len(summary) > MaxSummaryItems {
		summary = summary[:MaxSummaryItems]
	}

	subject := strings.TrimSpace(r.KeyDetails.Subject)
	if subject == "" {
		return nil, fmt.Errorf("key_details.subject required")
	}

	urgency, err := taxonomy.ParseUrgency(r.KeyDetails.Urgency)
	if err != nil {
		return nil, fmt.Errorf("key_details.urgency %q: %w", r.KeyDetails.Urgency, err)
	}

	category, err := taxonomy.ParseCategory(r.Classification.Category)
	if err != nil {
		return nil, fmt.Errorf("classification.category %q: %w", r.Classification.Category, err)
	}

	if r.Classification.Confidence == nil {
		return nil, fmt.Errorf("classification.confidence required")
	}
	confidence := *r.Classification.Confidence
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return nil, fmt.Errorf("classification.confidence %v out of range", confidence)
	}

	primary := strings.TrimSpace(r.Routing.PrimaryDepartment)
	if primary == "" {
		return nil, fmt.Errorf("routing.primary_department required")
	}

	cc := make([]string, 0, len(r.Routing.CCDepartments))
	for _, d := range r.Routing.CCDepartments {
		if d = strings.TrimSpace(d); d != "" && !strings.EqualFold(d, primary) {
			cc = append(cc, d)
		}
	}

	var deadline *string
	if r.KeyDetails.Deadline != nil {
		if d := strings.TrimSpace(*r.KeyDetails.Deadline); d != "" && !strings.EqualFold(d, "null") {
			deadline = &d
		}
	}

	return &Output{
		Summary: summary,
		KeyDetails: KeyDetails{
			Subject:  subject,
			Urgency:  urgency,
			Deadline: deadline,
		},
		Class: Classification{
			Category:   category,
			Confidence: confidence,
		},
		Routing: Routing{
			PrimaryDepartment: primary,
			CCDepartments:     cc,
			Reason:            strings.TrimSpace(r.Routing.Reason),
		},
	}, nil
}
