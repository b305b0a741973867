package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"github.com/savetree-1/docflow/pkg/lifecycle"
	"github.com/savetree-1/docflow/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/devstoreaccount1;"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestNew(t *testing.T) {
	sys, err := storage.New(&storage.Config{
		ContainerName:    "document-text",
		ConnectionString: azuriteConnString,
	}, discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if sys == nil {
		t.Fatal("nil system")
	}

	_, err = storage.New(&storage.Config{
		ContainerName:    "document-text",
		ConnectionString: "not-a-connection-string",
	}, discard)
	if err == nil {
		t.Error("expected error for malformed connection string")
	}
}

func TestKeyValidation(t *testing.T) {
	sys, err := storage.New(&storage.Config{
		ContainerName:    "document-text",
		ConnectionString: azuriteConnString,
	}, discard)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx := context.Background()
	tests := []struct {
		key  string
		want error
	}{
		{"", storage.ErrEmptyKey},
		{"documents/../secrets", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		if err := sys.Upload(ctx, tt.key, strings.NewReader("x"), "text/plain"); !errors.Is(err, tt.want) {
			t.Errorf("Upload(%q) = %v, want %v", tt.key, err, tt.want)
		}
		if _, err := sys.Download(ctx, tt.key); !errors.Is(err, tt.want) {
			t.Errorf("Download(%q) = %v, want %v", tt.key, err, tt.want)
		}
		if err := sys.Delete(ctx, tt.key); !errors.Is(err, tt.want) {
			t.Errorf("Delete(%q) = %v, want %v", tt.key, err, tt.want)
		}
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrap: %w", storage.ErrEmptyKey), http.StatusBadRequest},
		{storage.ErrInvalidKey, http.StatusBadRequest},
		{storage.ErrTooLarge, http.StatusRequestEntityTooLarge},
		{errors.New("network"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

type memStore struct {
	blobs map[string][]byte
}

func (m *memStore) Start(*lifecycle.Coordinator) error { return nil }

func (m *memStore) Upload(_ context.Context, key string, r io.Reader, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.blobs[key] = data
	return nil
}

func (m *memStore) Download(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.blobs[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func TestReadAll(t *testing.T) {
	store := &memStore{blobs: map[string][]byte{
		"documents/a.txt": []byte("invoice for march"),
	}}
	ctx := context.Background()

	data, err := storage.ReadAll(ctx, store, "documents/a.txt", 64)
	if err != nil || string(data) != "invoice for march" {
		t.Errorf("ReadAll = %q, %v", data, err)
	}

	if _, err := storage.ReadAll(ctx, store, "documents/a.txt", 7); !errors.Is(err, storage.ErrTooLarge) {
		t.Errorf("over limit: %v, want ErrTooLarge", err)
	}

	if _, err := storage.ReadAll(ctx, store, "documents/missing.txt", 64); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing: %v, want ErrNotFound", err)
	}
}

func TestConfig(t *testing.T) {
	t.Setenv("TEST_STORAGE_URL", "https://acct.blob.core.windows.net")

	cfg := storage.Config{}
	if err := cfg.Finalize(&storage.Env{ServiceURL: "TEST_STORAGE_URL"}); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.ContainerName != "document-text" {
		t.Errorf("container default = %q", cfg.ContainerName)
	}
	if cfg.UsesConnectionString() {
		t.Error("service url config reported connection string")
	}

	if err := (&storage.Config{}).Finalize(nil); err == nil {
		t.Error("expected error without connection string or service url")
	}
}
