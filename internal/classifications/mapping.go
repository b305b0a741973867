package classifications

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/query"
	"github.com/savetree-1/docflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "classifications", "c").
	Project("id", "ID").
	Project("document_id", "DocumentID").
	Project("category", "Category").
	Project("urgency", "Urgency").
	Project("confidence", "Confidence").
	Project("primary_department", "PrimaryDepartment").
	Project("provider_used", "ProviderUsed").
	Project("hard_rule_applied", "HardRuleApplied").
	Project("result", "Result").
	Project("decision", "Decision").
	Project("requested_by", "RequestedBy").
	Project("classified_at", "ClassifiedAt").
	Project("superseded_at", "SupersededAt")

const returning = `RETURNING id, document_id, category, urgency, confidence, primary_department,
	provider_used, hard_rule_applied, result, decision, requested_by, classified_at, superseded_at`

var defaultSort = query.SortField{
	Field:      "ClassifiedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for classification queries.
// Nil fields are ignored. Superseded runs are excluded unless IncludeSuperseded is set.
type Filters struct {
	DocumentID        *uuid.UUID `json:"document_id,omitempty"`
	Category          *string    `json:"category,omitempty"`
	Urgency           *string    `json:"urgency,omitempty"`
	PrimaryDepartment *string    `json:"primary_department,omitempty"`
	ProviderUsed      *string    `json:"provider_used,omitempty"`
	HardRuleApplied   *bool      `json:"hard_rule_applied,omitempty"`
	MinConfidence     *float64   `json:"min_confidence,omitempty"`
	MaxConfidence     *float64   `json:"max_confidence,omitempty"`
	IncludeSuperseded bool       `json:"include_superseded,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("DocumentID", f.DocumentID).
		WhereEquals("Category", f.Category).
		WhereEquals("Urgency", f.Urgency).
		WhereEquals("PrimaryDepartment", f.PrimaryDepartment).
		WhereEquals("ProviderUsed", f.ProviderUsed).
		WhereEquals("HardRuleApplied", f.HardRuleApplied).
		WhereCompare("Confidence", ">=", f.MinConfidence).
		WhereCompare("Confidence", "<", f.MaxConfidence)

	if !f.IncludeSuperseded {
		b.WhereNull("SupersededAt", true)
	}
	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("document_id"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			f.DocumentID = &id
		}
	}

	if v := values.Get("category"); v != "" {
		f.Category = &v
	}

	if v := values.Get("urgency"); v != "" {
		f.Urgency = &v
	}

	if v := values.Get("primary_department"); v != "" {
		f.PrimaryDepartment = &v
	}

	if v := values.Get("provider_used"); v != "" {
		f.ProviderUsed = &v
	}

	if v := values.Get("hard_rule_applied"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.HardRuleApplied = &b
		}
	}

	if v := values.Get("min_confidence"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.MinConfidence = &n
		}
	}

	if v := values.Get("max_confidence"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.MaxConfidence = &n
		}
	}

	if v := values.Get("include_superseded"); v != "" {
		f.IncludeSuperseded, _ = strconv.ParseBool(v)
	}

	return f
}

func scanClassification(s repository.Scanner) (Classification, error) {
	var (
		c           Classification
		resultRaw   []byte
		decisionRaw []byte
	)

	err := s.Scan(
		&c.ID,
		&c.DocumentID,
		&c.Category,
		&c.Urgency,
		&c.Confidence,
		&c.PrimaryDepartment,
		&c.ProviderUsed,
		&c.HardRuleApplied,
		&resultRaw,
		&decisionRaw,
		&c.RequestedBy,
		&c.ClassifiedAt,
		&c.SupersededAt,
	)

	if err != nil {
		return c, err
	}

	if err := json.Unmarshal(resultRaw, &c.Result); err != nil {
		return c, fmt.Errorf("unmarshal result: %w", err)
	}

	if len(decisionRaw) > 0 {
		if err := json.Unmarshal(decisionRaw, &c.Decision); err != nil {
			return c, fmt.Errorf("unmarshal decision: %w", err)
		}
	}

	return c, nil
}
