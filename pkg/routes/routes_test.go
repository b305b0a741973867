package routes_test

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/savetree-1/docflow/pkg/routes"
)

func ok(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func tag(name string, trail *[]string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*trail = append(*trail, name)
			next.ServeHTTP(w, r)
		})
	}
}

func TestRegister(t *testing.T) {
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: ok},
			{Method: "GET", Pattern: "/{id}", Handler: ok},
		},
		Children: []routes.Group{
			{
				Prefix: "/{id}/routing",
				Routes: []routes.Route{{Method: "POST", Pattern: "/confirm", Handler: ok}},
			},
		},
	})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{"GET", "/documents", http.StatusOK},
		{"GET", "/documents/123", http.StatusOK},
		{"POST", "/documents/123/routing/confirm", http.StatusOK},
		{"DELETE", "/documents/123", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("status: got %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestMiddlewareOrder(t *testing.T) {
	var trail []string
	mux := http.NewServeMux()
	routes.Register(mux, routes.Group{
		Prefix:     "/api",
		Middleware: []func(http.Handler) http.Handler{tag("parent", &trail)},
		Children: []routes.Group{
			{
				Prefix:     "/rules",
				Middleware: []func(http.Handler) http.Handler{tag("child", &trail)},
				Routes: []routes.Route{
					{
						Method:     "POST",
						Pattern:    "",
						Handler:    ok,
						Middleware: []func(http.Handler) http.Handler{tag("route", &trail)},
					},
				},
			},
		},
	})

	mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/rules", nil))

	want := []string{"parent", "child", "route"}
	if !slices.Equal(trail, want) {
		t.Errorf("order: got %v, want %v", trail, want)
	}
}

func TestPatterns(t *testing.T) {
	got := routes.Patterns(
		routes.Group{
			Prefix: "/audit",
			Routes: []routes.Route{{Method: "GET", Pattern: "/document/{id}", Handler: ok}},
		},
		routes.Group{
			Prefix:   "/rules",
			Routes:   []routes.Route{{Method: "PUT", Pattern: "/{id}", Handler: ok}},
			Children: []routes.Group{{Prefix: "/sub", Routes: []routes.Route{{Method: "GET", Pattern: "", Handler: ok}}}},
		},
	)

	want := []string{"GET /audit/document/{id}", "PUT /rules/{id}", "GET /rules/sub"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("patterns: got %v, want %v", got, want)
	}
}
