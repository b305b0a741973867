// Package config loads the service configuration from config.toml, an
// optional config.<env>.toml overlay, and DOCFLOW_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/savetree-1/docflow/internal/workflow"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/database"
	"github.com/savetree-1/docflow/pkg/notify"
	"github.com/savetree-1/docflow/pkg/openapi"
	"github.com/savetree-1/docflow/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvDocflowEnv             = "DOCFLOW_ENV"
	EnvDocflowShutdownTimeout = "DOCFLOW_SHUTDOWN_TIMEOUT"
	EnvDocflowVersion         = "DOCFLOW_VERSION"
	EnvDocflowLogLevel        = "DOCFLOW_LOG_LEVEL"
	EnvDocflowHardRulesPath   = "DOCFLOW_HARD_RULES_PATH"
)

var databaseEnv = &database.Env{
	URL:             "DOCFLOW_DB_URL",
	Host:            "DOCFLOW_DB_HOST",
	Port:            "DOCFLOW_DB_PORT",
	Name:            "DOCFLOW_DB_NAME",
	User:            "DOCFLOW_DB_USER",
	Password:        "DOCFLOW_DB_PASSWORD",
	SSLMode:         "DOCFLOW_DB_SSL_MODE",
	MaxOpenConns:    "DOCFLOW_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "DOCFLOW_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DOCFLOW_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "DOCFLOW_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "DOCFLOW_STORAGE_CONTAINER_NAME",
	ConnectionString: "DOCFLOW_STORAGE_CONNECTION_STRING",
	ServiceURL:       "DOCFLOW_STORAGE_SERVICE_URL",
}

var redisEnv = &notify.Env{
	URL:    "DOCFLOW_REDIS_URL",
	Prefix: "DOCFLOW_REDIS_PREFIX",
}

var authEnv = &auth.Env{
	Issuer:          "DOCFLOW_AUTH_ISSUER",
	ClientID:        "DOCFLOW_AUTH_CLIENT_ID",
	NameClaim:       "DOCFLOW_AUTH_NAME_CLAIM",
	RoleClaim:       "DOCFLOW_AUTH_ROLE_CLAIM",
	DepartmentClaim: "DOCFLOW_AUTH_DEPARTMENT_CLAIM",
}

var openapiEnv = &openapi.ConfigEnv{
	Title:       "DOCFLOW_OPENAPI_TITLE",
	Description: "DOCFLOW_OPENAPI_DESCRIPTION",
}

var classificationEnv = &workflow.Env{
	Budget:           "DOCFLOW_CLASSIFICATION_BUDGET",
	TextWindow:       "DOCFLOW_CLASSIFICATION_TEXT_WINDOW",
	InferOnHardRule:  "DOCFLOW_CLASSIFICATION_INFER_ON_HARD_RULE",
	HighConfidence:   "DOCFLOW_CLASSIFICATION_HIGH_CONFIDENCE",
	SecondaryCeiling: "DOCFLOW_CLASSIFICATION_SECONDARY_CEILING",
	BatchConcurrency: "DOCFLOW_CLASSIFICATION_BATCH_CONCURRENCY",
	OnIntake:         "DOCFLOW_CLASSIFICATION_ON_INTAKE",
}

// Config is the root configuration for the docflow service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	Redis           notify.Config   `toml:"redis"`
	Auth            auth.Config     `toml:"auth"`
	API             APIConfig       `toml:"api"`
	Providers       ProvidersConfig `toml:"providers"`
	Classification  workflow.Config `toml:"classification"`
	OpenAPI         openapi.Config  `toml:"openapi"`
	HardRulesPath   string          `toml:"hard_rules_path"`
	LogLevel        string          `toml:"log_level"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the DOCFLOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvDocflowEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Level returns LogLevel as a slog.Level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.HardRulesPath != "" {
		c.HardRulesPath = overlay.HardRulesPath
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Redis.Merge(&overlay.Redis)
	c.Auth.Merge(&overlay.Auth)
	c.API.Merge(&overlay.API)
	c.Providers.Merge(&overlay.Providers)
	c.Classification.Merge(&overlay.Classification)
	c.OpenAPI.Merge(&overlay.OpenAPI)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Redis.Finalize(redisEnv); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Providers.Finalize(); err != nil {
		return fmt.Errorf("providers: %w", err)
	}
	if err := c.Classification.Finalize(classificationEnv); err != nil {
		return fmt.Errorf("classification: %w", err)
	}
	if err := c.OpenAPI.Finalize(openapiEnv); err != nil {
		return fmt.Errorf("openapi: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvDocflowShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvDocflowVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvDocflowLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvDocflowHardRulesPath); v != "" {
		c.HardRulesPath = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.HardRulesPath != "" {
		if _, err := os.Stat(c.HardRulesPath); err != nil {
			return fmt.Errorf("hard_rules_path: %w", err)
		}
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvDocflowEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
