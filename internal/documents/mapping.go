package documents

import (
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/savetree-1/docflow/pkg/query"
	"github.com/savetree-1/docflow/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("title", "Title").
	Project("uploading_department", "UploadingDepartment").
	Project("storage_key", "StorageKey").
	Project("text_length", "TextLength").
	Project("state", "State").
	Project("category", "Category").
	Project("urgency", "Urgency").
	Project("suggested_department", "SuggestedDepartment").
	Project("cc_departments", "CCDepartments").
	Project("routing_confidence", "RoutingConfidence").
	Project("routing_reason", "RoutingReason").
	Project("suggested_assignee", "SuggestedAssignee").
	Project("matched_rule", "MatchedRule").
	Project("confirmed", "Confirmed").
	Project("confirmed_department", "ConfirmedDepartment").
	Project("confirmed_by", "ConfirmedBy").
	Project("confirmed_at", "ConfirmedAt").
	Project("version", "Version").
	Project("deleted_at", "DeletedAt").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

// returning lists the projection columns unqualified, for INSERT and UPDATE.
const returning = `RETURNING id, title, uploading_department, storage_key, text_length,
	state, category, urgency, suggested_department, cc_departments, routing_confidence,
	routing_reason, suggested_assignee, matched_rule, confirmed, confirmed_department,
	confirmed_by, confirmed_at, version, deleted_at, created_at, updated_at`

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Soft-deleted documents are excluded unless
// IncludeDeleted is set.
type Filters struct {
	State               *string `json:"state,omitempty"`
	Category            *string `json:"category,omitempty"`
	Urgency             *string `json:"urgency,omitempty"`
	Department          *string `json:"department,omitempty"`
	UploadingDepartment *string `json:"uploading_department,omitempty"`
	Title               *string `json:"title,omitempty"`
	Confirmed           *bool   `json:"confirmed,omitempty"`
	IncludeDeleted      bool    `json:"include_deleted,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	b.
		WhereEquals("State", f.State).
		WhereEquals("Category", f.Category).
		WhereEquals("Urgency", f.Urgency).
		WhereEquals("SuggestedDepartment", f.Department).
		WhereEquals("UploadingDepartment", f.UploadingDepartment).
		WhereContains("Title", f.Title).
		WhereEquals("Confirmed", f.Confirmed)

	if !f.IncludeDeleted {
		b.WhereNull("DeletedAt", true)
	}
	return b
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if v := values.Get("state"); v != "" {
		f.State = &v
	}

	if v := values.Get("category"); v != "" {
		f.Category = &v
	}

	if v := values.Get("urgency"); v != "" {
		f.Urgency = &v
	}

	if v := values.Get("department"); v != "" {
		f.Department = &v
	}

	if v := values.Get("uploading_department"); v != "" {
		f.UploadingDepartment = &v
	}

	if v := values.Get("title"); v != "" {
		f.Title = &v
	}

	if v := values.Get("confirmed"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			f.Confirmed = &b
		}
	}

	if v := values.Get("include_deleted"); v != "" {
		f.IncludeDeleted, _ = strconv.ParseBool(v)
	}

	return f
}

func scanDocument(s repository.Scanner) (Document, error) {
	var (
		d     Document
		state string
		cc    []byte
	)
	err := s.Scan(
		&d.ID,
		&d.Title,
		&d.UploadingDepartment,
		&d.StorageKey,
		&d.TextLength,
		&state,
		&d.Routing.Category,
		&d.Routing.Urgency,
		&d.Routing.SuggestedDepartment,
		&cc,
		&d.Routing.RoutingConfidence,
		&d.Routing.RoutingReason,
		&d.Routing.SuggestedAssignee,
		&d.Routing.MatchedRule,
		&d.Routing.Confirmed,
		&d.Routing.ConfirmedDepartment,
		&d.Routing.ConfirmedBy,
		&d.Routing.ConfirmedAt,
		&d.Version,
		&d.DeletedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return d, err
	}

	d.Routing.State = State(state)
	d.Routing.CCDepartments = []string{}
	if len(cc) > 0 {
		err = json.Unmarshal(cc, &d.Routing.CCDepartments)
	}
	return d, err
}

func encodeList(list []string) []byte {
	if list == nil {
		list = []string{}
	}
	data, _ := json.Marshal(list)
	return data
}
