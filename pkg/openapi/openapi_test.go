package openapi_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/savetree-1/docflow/pkg/openapi"
	"github.com/savetree-1/docflow/pkg/routes"
)

func noop(http.ResponseWriter, *http.Request) {}

func TestNewSpec(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{Title: "Test API"}, "1.0.0")

	if spec.OpenAPI != "3.1.0" {
		t.Errorf("openapi version: got %s, want 3.1.0", spec.OpenAPI)
	}
	if spec.Info.Title != "Test API" || spec.Info.Version != "1.0.0" || len(spec.Servers) != 0 {
		t.Errorf("info: got %+v", spec.Info)
	}
	if spec.Components == nil || spec.Components.Responses["Conflict"] == nil {
		t.Fatal("default components missing")
	}
	if spec.Paths == nil {
		t.Fatal("paths should not be nil")
	}
}

func TestAddGroups(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{Title: "Test"}, "1.0.0")
	spec.AddGroups("/api",
		routes.Group{
			Prefix: "/documents",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "", Handler: noop},
				{Method: "GET", Pattern: "/{id}", Handler: noop},
				{Method: "POST", Pattern: "/{id}/confirm", Handler: noop},
				{Method: "DELETE", Pattern: "/{id}", Handler: noop},
			},
		},
		routes.Group{
			Prefix: "/storage",
			Routes: []routes.Route{
				{Method: "GET", Pattern: "/{key...}", Handler: noop},
			},
		},
	)

	if len(spec.Paths) != 4 {
		t.Fatalf("paths: got %d, want 4", len(spec.Paths))
	}

	item := spec.Paths["/api/documents/{id}"]
	if item == nil || item.Get == nil || item.Delete == nil {
		t.Fatalf("item: got %+v", item)
	}
	if len(item.Get.Parameters) != 1 || item.Get.Parameters[0].Name != "id" || item.Get.Parameters[0].In != "path" {
		t.Errorf("parameters: got %+v", item.Get.Parameters)
	}
	if len(item.Get.Tags) != 1 || item.Get.Tags[0] != "documents" {
		t.Errorf("tags: got %v", item.Get.Tags)
	}

	confirm := spec.Paths["/api/documents/{id}/confirm"]
	if confirm == nil || confirm.Post == nil || confirm.Post.RequestBody == nil {
		t.Error("confirm should carry a request body")
	}
	if confirm.Post.Responses[409].Ref != "#/components/responses/Conflict" {
		t.Errorf("409: got %+v", confirm.Post.Responses[409])
	}

	storage := spec.Paths["/api/storage/{key}"]
	if storage == nil || storage.Get == nil || storage.Get.Parameters[0].Name != "key" {
		t.Errorf("wildcard not rewritten: %+v", spec.Paths)
	}
}

func TestSpecHandler(t *testing.T) {
	spec := openapi.NewSpec(&openapi.Config{Title: "Test", Description: "A test API"}, "1.0.0", "/api")
	serve, err := spec.Handler()
	if err != nil {
		t.Fatalf("Handler() error: %v", err)
	}

	rec := httptest.NewRecorder()
	serve(rec, httptest.NewRequest("GET", "/openapi.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("content type: got %s", ct)
	}

	body, _ := io.ReadAll(rec.Body)
	var got openapi.Spec
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Info.Description != "A test API" || len(got.Servers) != 1 || got.Servers[0].URL != "/api" {
		t.Errorf("round trip: got %+v %+v", got.Info, got.Servers)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg openapi.Config
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Title != "docflow API" {
		t.Errorf("title: got %s", cfg.Title)
	}

	cfg.Merge(&openapi.Config{Title: "Override"})
	if cfg.Title != "Override" {
		t.Errorf("merged title: got %s", cfg.Title)
	}
}
