package routingrules

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/savetree-1/docflow/pkg/query"
	"github.com/savetree-1/docflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "routing_rules", "r").
	Project("id", "ID").
	Project("name", "Name").
	Project("department", "Department").
	Project("category", "Category").
	Project("urgency", "Urgency").
	Project("keywords", "Keywords").
	Project("assign_to", "AssignTo").
	Project("priority", "Priority").
	Project("active", "Active").
	Project("seq", "Seq").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = []query.SortField{
	{Field: "Priority", Descending: true},
	{Field: "Seq"},
}

// Filters contains optional filtering criteria for rule queries.
type Filters struct {
	Name       *string `json:"name,omitempty"`
	Department *string `json:"department,omitempty"`
	Category   *string `json:"category,omitempty"`
	Urgency    *string `json:"urgency,omitempty"`
	AssignTo   *string `json:"assign_to,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereContains("Name", f.Name).
		WhereEquals("Department", f.Department).
		WhereEquals("Category", f.Category).
		WhereEquals("Urgency", f.Urgency).
		WhereContains("AssignTo", f.AssignTo).
		WhereEquals("Active", f.Active)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("name"); v != "" {
		f.Name = &v
	}

	if v := values.Get("department"); v != "" {
		f.Department = &v
	}

	if v := values.Get("category"); v != "" {
		f.Category = &v
	}

	if v := values.Get("urgency"); v != "" {
		f.Urgency = &v
	}

	if v := values.Get("assign_to"); v != "" {
		f.AssignTo = &v
	}

	if v := values.Get("active"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Active = &b
		}
	}

	return f
}

func scanRule(s repository.Scanner) (Rule, error) {
	var (
		r        Rule
		keywords []byte
	)
	err := s.Scan(
		&r.ID,
		&r.Name,
		&r.Department,
		&r.Category,
		&r.Urgency,
		&keywords,
		&r.AssignTo,
		&r.Priority,
		&r.Active,
		&r.Seq,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return r, err
	}

	r.Keywords = []string{}
	if len(keywords) > 0 {
		err = json.Unmarshal(keywords, &r.Keywords)
	}
	return r, err
}

func encodeKeywords(keywords []string) []byte {
	if keywords == nil {
		keywords = []string{}
	}
	data, _ := json.Marshal(keywords)
	return data
}
