package query_test

import (
	"slices"
	"testing"

	"github.com/savetree-1/docflow/pkg/query"
)

func documents() *query.ProjectionMap {
	return query.NewProjectionMap("public", "documents", "d").
		Project("id", "ID").
		Project("title", "Title").
		Project("state", "State").
		Project("routing_confidence", "Confidence").
		Project("deleted_at", "DeletedAt").
		Project("created_at", "CreatedAt")
}

func TestProjectionMap(t *testing.T) {
	p := documents()

	if got := p.Table(); got != "public.documents d" {
		t.Errorf("Table = %q", got)
	}
	if got := p.Column("State"); got != "d.state" {
		t.Errorf("Column(State) = %q", got)
	}
	if got := p.Column("unknown"); got != "unknown" {
		t.Errorf("Column(unknown) = %q", got)
	}
	if p.Has("unknown") {
		t.Error("Has(unknown) = true")
	}
	if got := len(p.ColumnList()); got != 6 {
		t.Errorf("ColumnList len = %d", got)
	}
}

func TestProjectionJoin(t *testing.T) {
	p := query.NewProjectionMap("public", "classifications", "c").
		Project("id", "ID").
		Join("public", "documents", "d", "JOIN", "d.id = c.document_id").
		Project("title", "Title")

	if got := p.Column("Title"); got != "d.title" {
		t.Errorf("joined column = %q", got)
	}
	want := "public.classifications c JOIN public.documents d ON d.id = c.document_id"
	if got := p.From(); got != want {
		t.Errorf("From = %q, want %q", got, want)
	}
	if p.Alias() != "c" {
		t.Errorf("Alias = %q", p.Alias())
	}
}

func TestParseSortFields(t *testing.T) {
	got := query.ParseSortFields(" Title, -CreatedAt ,,")
	want := []query.SortField{
		{Field: "Title"},
		{Field: "CreatedAt", Descending: true},
	}
	if !slices.Equal(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if query.ParseSortFields("") != nil {
		t.Error("empty input should be nil")
	}
}

func TestBuild(t *testing.T) {
	state := "suggested"
	search := "invoice"
	var missing *string

	sql, args := query.NewBuilder(documents(), query.SortField{Field: "CreatedAt", Descending: true}).
		WhereEquals("State", &state).
		WhereEquals("Title", missing).
		WhereNull("DeletedAt", true).
		WhereCompare("Confidence", ">=", 0.5).
		WhereSearch(&search, "Title").
		Build()

	want := "SELECT d.id, d.title, d.state, d.routing_confidence, d.deleted_at, d.created_at " +
		"FROM public.documents d WHERE d.state = $1 AND d.deleted_at IS NULL AND " +
		"d.routing_confidence >= $2 AND (d.title ILIKE $3) ORDER BY d.created_at DESC"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
	if len(args) != 3 || args[2] != "%invoice%" {
		t.Errorf("args = %v", args)
	}
}

func TestWhereIn(t *testing.T) {
	sql, args := query.NewBuilder(documents()).
		WhereIn("State", []any{"suggested", "confirmed"}).
		WhereIn("Title", nil).
		BuildCount()

	want := "SELECT COUNT(*) FROM public.documents d WHERE d.state IN ($1, $2)"
	if sql != want {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildPage(t *testing.T) {
	sql, _ := query.NewBuilder(documents(), query.SortField{Field: "CreatedAt"}).
		OrderByFields([]query.SortField{{Field: "Title", Descending: true}, {Field: "dropped; --"}}).
		BuildPage(3, 20)

	want := "SELECT d.id, d.title, d.state, d.routing_confidence, d.deleted_at, d.created_at " +
		"FROM public.documents d ORDER BY d.title DESC LIMIT 20 OFFSET 40"
	if sql != want {
		t.Errorf("sql:\n got %s\nwant %s", sql, want)
	}
}

func TestBuildSingle(t *testing.T) {
	sql, args := query.NewBuilder(documents()).BuildSingle("ID", "abc")
	if sql != "SELECT d.id, d.title, d.state, d.routing_confidence, d.deleted_at, d.created_at FROM public.documents d WHERE d.id = $1" {
		t.Errorf("sql = %q", sql)
	}
	if len(args) != 1 || args[0] != "abc" {
		t.Errorf("args = %v", args)
	}

	sql, _ = query.NewBuilder(documents()).WhereNull("DeletedAt", false).BuildSingleOrNull()
	if sql != "SELECT d.id, d.title, d.state, d.routing_confidence, d.deleted_at, d.created_at FROM public.documents d WHERE d.deleted_at IS NOT NULL LIMIT 1" {
		t.Errorf("sql = %q", sql)
	}
}

func TestWhereCompareRejectsOperator(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for unsupported operator")
		}
	}()
	query.NewBuilder(documents()).WhereCompare("Confidence", "LIKE", 1)
}
