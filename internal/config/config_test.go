package config_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/savetree-1/docflow/internal/config"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"
log_level = "debug"

[server]
host = "0.0.0.0"
port = 8080
read_timeout = "1m"
write_timeout = "5m"

[database]
host = "localhost"
port = 5432
name = "docflow"
user = "docflow"
password = "docflow"

[storage]
container_name = "document-text"
connection_string = "UseDevelopmentStorage=true"

[redis]
url = "redis://localhost:6379/0"

[api]
base_path = "/api"
max_text_size = "1MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[providers.primary]
kind = "ollama"
timeout = "20s"
retries = 1

[classification]
budget = "45s"
infer_on_hard_rule = false
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[classification]
secondary_ceiling = 0.6
`

// minimalConfig provides the fields validation cannot default.
const minimalConfig = `
[database]
name = "docflow"
user = "docflow"

[storage]
connection_string = "conn"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(orig) })
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "docflow" {
		t.Errorf("database name: got %s", cfg.Database.Name)
	}
	if cfg.API.MaxTextSizeBytes() != 1024*1024 {
		t.Errorf("max text size: got %d", cfg.API.MaxTextSizeBytes())
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("default page size: got %d", cfg.API.Pagination.DefaultPageSize)
	}
	if !cfg.Redis.Enabled() || cfg.Redis.Prefix != "docflow" {
		t.Errorf("redis: got %+v", cfg.Redis)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("log level: got %v", cfg.Level())
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %v", cfg.ShutdownTimeoutDuration())
	}
}

func TestLoadProviders(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	p := cfg.Providers.Primary
	if !p.Enabled() {
		t.Fatal("primary provider disabled")
	}
	if p.Name != "ollama" {
		t.Errorf("primary name: got %s, want kind default", p.Name)
	}
	if p.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("primary base_url: got %s", p.BaseURL)
	}
	if p.TimeoutDuration() != 20*time.Second {
		t.Errorf("primary timeout: got %v", p.TimeoutDuration())
	}
	if cfg.Providers.Secondary.Enabled() {
		t.Error("secondary provider enabled without a kind")
	}
}

func TestLoadClassification(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	c := cfg.Classification
	if c.BudgetDuration() != 45*time.Second {
		t.Errorf("budget: got %v", c.BudgetDuration())
	}
	if c.InferWithHardRule() {
		t.Error("infer_on_hard_rule = false not honored")
	}
	if c.SecondaryCeiling != 0.65 {
		t.Errorf("secondary ceiling default: got %v", c.SecondaryCeiling)
	}
	if c.BatchConcurrency != 4 {
		t.Errorf("batch concurrency default: got %d", c.BatchConcurrency)
	}
}

func TestLoadWithOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", baseConfig)
	writeConfig(t, dir, "config.prod.toml", overlayConfig)
	chdir(t, dir)
	t.Setenv(config.EnvDocflowEnv, "prod")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("database host: got %s, want prodhost", cfg.Database.Host)
	}
	if cfg.Database.Name != "docflow" {
		t.Errorf("database name: got %s, want base value kept", cfg.Database.Name)
	}
	if cfg.Classification.SecondaryCeiling != 0.6 {
		t.Errorf("secondary ceiling: got %v", cfg.Classification.SecondaryCeiling)
	}
	if cfg.Classification.InferWithHardRule() {
		t.Error("overlay without infer_on_hard_rule reset the base value")
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port default: got %d", cfg.Server.Port)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path default: got %s", cfg.API.BasePath)
	}
	if cfg.API.MaxTextSizeBytes() != 2*1024*1024 {
		t.Errorf("max text size default: got %d", cfg.API.MaxTextSizeBytes())
	}
	if cfg.Storage.ContainerName != "document-text" {
		t.Errorf("container default: got %s", cfg.Storage.ContainerName)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis enabled without url")
	}
	if cfg.Auth.Enabled() {
		t.Error("auth enabled without issuer")
	}
	if !cfg.Classification.InferWithHardRule() {
		t.Error("infer_on_hard_rule default should be true")
	}
	if !cfg.Classification.ClassifyOnIntake() {
		t.Error("on_intake default should be true")
	}
	if cfg.Level() != slog.LevelInfo {
		t.Errorf("log level default: got %v", cfg.Level())
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.toml", minimalConfig)
	chdir(t, dir)

	t.Setenv("DOCFLOW_SERVER_PORT", "7070")
	t.Setenv("DOCFLOW_DB_HOST", "envhost")
	t.Setenv("DOCFLOW_PROVIDER_SECONDARY_KIND", "openai")
	t.Setenv("DOCFLOW_PROVIDER_SECONDARY_TOKEN", "sk-test")
	t.Setenv("DOCFLOW_CLASSIFICATION_BUDGET", "2m")
	t.Setenv("DOCFLOW_CLASSIFICATION_ON_INTAKE", "false")
	t.Setenv(config.EnvDocflowLogLevel, "warn")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server port: got %d, want 7070", cfg.Server.Port)
	}
	if cfg.Database.Host != "envhost" {
		t.Errorf("database host: got %s", cfg.Database.Host)
	}
	if !cfg.Providers.Secondary.Enabled() || cfg.Providers.Secondary.Model != "gpt-4o-mini" {
		t.Errorf("secondary provider: got %+v", cfg.Providers.Secondary)
	}
	if cfg.Classification.BudgetDuration() != 2*time.Minute {
		t.Errorf("budget: got %v", cfg.Classification.BudgetDuration())
	}
	if cfg.Classification.ClassifyOnIntake() {
		t.Error("DOCFLOW_CLASSIFICATION_ON_INTAKE=false not honored")
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("log level: got %v", cfg.Level())
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "missing database name",
			content: "[storage]\nconnection_string = \"conn\"\n[database]\nuser = \"u\"\n",
			want:    "database",
		},
		{
			name:    "missing storage credentials",
			content: "[database]\nname = \"n\"\nuser = \"u\"\n",
			want:    "storage",
		},
		{
			name:    "bad log level",
			content: "log_level = \"loud\"\n" + minimalConfig,
			want:    "log_level",
		},
		{
			name:    "missing hard rules file",
			content: "hard_rules_path = \"/nonexistent/rules.toml\"\n" + minimalConfig,
			want:    "hard_rules_path",
		},
		{
			name:    "bad ceiling",
			content: minimalConfig + "\n[classification]\nsecondary_ceiling = 1.5\n",
			want:    "classification",
		},
		{
			name:    "bad redis scheme",
			content: minimalConfig + "\n[redis]\nurl = \"http://localhost\"\n",
			want:    "redis",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, "config.toml", tt.content)
			chdir(t, dir)

			_, err := config.Load()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
