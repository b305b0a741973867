package routingrules_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/routingrules"
	"github.com/savetree-1/docflow/internal/taxonomy"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/lifecycle"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/routes"
)

type mockSystem struct {
	snap     *routingrules.Snapshot
	createFn func(actor auth.Actor, cmd routingrules.Command) (*routingrules.Rule, error)
}

func (m *mockSystem) Handler() *routingrules.Handler {
	return routingrules.NewHandler(m, discard(), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (m *mockSystem) Start(*lifecycle.Coordinator) error { return nil }

func (m *mockSystem) List(_ context.Context, page pagination.PageRequest, _ routingrules.Filters) (*pagination.PageResult[routingrules.Rule], error) {
	rules := m.snap.Rules()
	result := pagination.NewPageResult(rules, len(rules), page.Page, page.PageSize)
	return &result, nil
}

func (m *mockSystem) Find(_ context.Context, id uuid.UUID) (*routingrules.Rule, error) {
	for _, r := range m.snap.Rules() {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, routingrules.ErrNotFound
}

func (m *mockSystem) Create(_ context.Context, actor auth.Actor, cmd routingrules.Command) (*routingrules.Rule, error) {
	return m.createFn(actor, cmd)
}

func (m *mockSystem) Update(context.Context, auth.Actor, uuid.UUID, routingrules.Command) (*routingrules.Rule, error) {
	return nil, routingrules.ErrNotFound
}

func (m *mockSystem) Delete(context.Context, auth.Actor, uuid.UUID) error {
	return routingrules.ErrNotFound
}

func (m *mockSystem) Resolve(a routingrules.Attributes) (*routingrules.Decision, bool) {
	return m.snap.Resolve(a)
}

func (m *mockSystem) Snapshot() *routingrules.Snapshot { return m.snap }

func (m *mockSystem) Reload(context.Context) error { return nil }

func setupMux(sys *mockSystem) http.Handler {
	mux := http.NewServeMux()
	routes.Register(mux, sys.Handler().Routes())
	return auth.NewWithVerifier(&auth.Config{}, nil, discard()).Middleware(mux)
}

func request(method, path string, body any, role string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if role != "" {
		req.Header.Set(auth.HeaderActor, "tester")
		req.Header.Set(auth.HeaderRole, role)
	}
	return req
}

func TestHandlerResolve(t *testing.T) {
	sys := &mockSystem{snap: routingrules.NewSnapshot([]routingrules.Rule{
		rule("A", 5, 1, func(r *routingrules.Rule) { r.Category = string(taxonomy.Finance) }),
		rule("B", 10, 2, func(r *routingrules.Rule) {
			r.Urgency = string(taxonomy.High)
			r.Keywords = []string{"audit"}
		}),
	})}
	mux := setupMux(sys)

	tests := []struct {
		name    string
		body    routingrules.ResolveRequest
		status  int
		matched bool
		rule    string
	}{
		{"keyword from text", routingrules.ResolveRequest{Category: "finance", Urgency: "high", Text: "Annual audit report"}, http.StatusOK, true, "B"},
		{"lower priority", routingrules.ResolveRequest{Category: "Finance", Urgency: "Low"}, http.StatusOK, true, "A"},
		{"no match", routingrules.ResolveRequest{Category: "Health"}, http.StatusOK, false, ""},
		{"bad category", routingrules.ResolveRequest{Category: "sports"}, http.StatusBadRequest, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, request("POST", "/routing-rules/resolve", tt.body, "viewer"))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body.String())
			}
			if tt.status != http.StatusOK {
				return
			}

			var got routingrules.ResolveResponse
			if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got.Matched != tt.matched {
				t.Errorf("Matched = %v, want %v", got.Matched, tt.matched)
			}
			if tt.matched && got.Decision.RuleName != tt.rule {
				t.Errorf("RuleName = %q, want %q", got.Decision.RuleName, tt.rule)
			}
			if !tt.matched && got.Decision != nil {
				t.Errorf("Decision = %+v, want null", got.Decision)
			}
		})
	}
}

func TestHandlerCreate(t *testing.T) {
	var gotActor auth.Actor
	sys := &mockSystem{
		snap: routingrules.NewSnapshot(nil),
		createFn: func(actor auth.Actor, cmd routingrules.Command) (*routingrules.Rule, error) {
			gotActor = actor
			if _, err := cmd.Normalize(); err != nil {
				return nil, err
			}
			r := rule(cmd.Name, cmd.Priority, 1, nil)
			return &r, nil
		},
	}
	mux := setupMux(sys)
	valid := routingrules.Command{Name: "desk", Department: "Revenue", AssignTo: "clerk"}

	t.Run("admin creates", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, request("POST", "/routing-rules", valid, "admin"))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}
		if gotActor.Name != "tester" || gotActor.Role != auth.RoleAdmin {
			t.Errorf("actor = %+v", gotActor)
		}
	})

	t.Run("invalid rule", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, request("POST", "/routing-rules", routingrules.Command{Name: "x"}, "admin"))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("department admin forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, request("POST", "/routing-rules", valid, "department_admin"))

		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("unknown rule", func(t *testing.T) {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, request("DELETE", "/routing-rules/"+uuid.NewString(), nil, "admin"))

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}
