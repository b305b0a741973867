package middleware_test

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"

	"github.com/savetree-1/docflow/pkg/middleware"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestApplyOrder(t *testing.T) {
	var order []string
	step := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	var mw middleware.Stack
	mw.Use(step("recover"))
	mw.Use(step("logger"))

	h := mw.Apply(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		order = append(order, "handler")
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if want := []string{"recover", "logger", "handler"}; !slices.Equal(order, want) {
		t.Errorf("order: got %v, want %v", order, want)
	}
}

func TestCORS(t *testing.T) {
	cfg := &middleware.CORSConfig{
		Enabled:          true,
		Origins:          []string{"https://intake.example.gov"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           600,
	}

	tests := []struct {
		name       string
		cfg        *middleware.CORSConfig
		method     string
		origin     string
		wantOrigin string
		wantStatus int
	}{
		{"allowed origin", cfg, "GET", "https://intake.example.gov", "https://intake.example.gov", http.StatusOK},
		{"foreign origin", cfg, "GET", "https://evil.example.com", "", http.StatusOK},
		{"preflight", cfg, "OPTIONS", "https://intake.example.gov", "https://intake.example.gov", http.StatusOK},
		{"disabled", &middleware.CORSConfig{}, "GET", "https://intake.example.gov", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			h := middleware.CORS(tt.cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/", nil)
			req.Header.Set("Origin", tt.origin)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantOrigin {
				t.Errorf("allow-origin: got %q, want %q", got, tt.wantOrigin)
			}
			if tt.method == "OPTIONS" && tt.cfg.Enabled && called {
				t.Error("preflight reached the handler")
			}
			if tt.wantOrigin != "" && rec.Header().Get("Access-Control-Max-Age") != "600" {
				t.Errorf("max-age: got %q", rec.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORSConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("TEST_CORS_ENABLED", "true")

	cfg := &middleware.CORSConfig{}
	if err := cfg.Finalize(&middleware.CORSEnv{
		Enabled: "TEST_CORS_ENABLED",
		Origins: "TEST_CORS_ORIGINS",
	}); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if !cfg.Enabled {
		t.Error("enabled not applied from env")
	}
	if want := []string{"https://a.example", "https://b.example"}; !slices.Equal(cfg.Origins, want) {
		t.Errorf("origins: got %v, want %v", cfg.Origins, want)
	}
	if cfg.MaxAge != 3600 {
		t.Errorf("max age default: got %d", cfg.MaxAge)
	}
	if !slices.Contains(cfg.AllowedHeaders, "X-Actor-Role") {
		t.Errorf("allowed headers missing actor role: %v", cfg.AllowedHeaders)
	}
}

func TestLoggerRequestID(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	var seen string
	h := middleware.Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.RequestID(r.Context())
		w.WriteHeader(http.StatusAccepted)
	}))

	t.Run("propagates inbound id", func(t *testing.T) {
		logs.Reset()
		req := httptest.NewRequest("POST", "/api/classifications/batch", nil)
		req.Header.Set(middleware.RequestIDHeader, "req-42")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		if seen != "req-42" {
			t.Errorf("context id: got %q", seen)
		}
		if rec.Header().Get(middleware.RequestIDHeader) != "req-42" {
			t.Errorf("response id: got %q", rec.Header().Get(middleware.RequestIDHeader))
		}
		if !strings.Contains(logs.String(), "status=202") {
			t.Errorf("log missing status: %s", logs.String())
		}
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
		if seen == "" || rec.Header().Get(middleware.RequestIDHeader) != seen {
			t.Errorf("generated id mismatch: ctx %q header %q", seen, rec.Header().Get(middleware.RequestIDHeader))
		}
	})
}

func TestRecover(t *testing.T) {
	h := middleware.Recover(discard)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status: got %d, want 500", rec.Code)
	}

	rec = httptest.NewRecorder()
	middleware.Recover(discard)(http.HandlerFunc(okHandler)).ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("passthrough status: got %d", rec.Code)
	}
}
