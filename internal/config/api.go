package config

import (
	"fmt"
	"os"

	"github.com/savetree-1/docflow/pkg/formatting"
	"github.com/savetree-1/docflow/pkg/middleware"
	"github.com/savetree-1/docflow/pkg/pagination"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "DOCFLOW_CORS_ENABLED",
	Origins:          "DOCFLOW_CORS_ORIGINS",
	AllowedMethods:   "DOCFLOW_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "DOCFLOW_CORS_ALLOWED_HEADERS",
	AllowCredentials: "DOCFLOW_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "DOCFLOW_CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "DOCFLOW_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "DOCFLOW_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, CORS, and pagination settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxTextSize string                `toml:"max_text_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
	Pagination  pagination.Config     `toml:"pagination"`
}

// MaxTextSizeBytes returns the largest extracted text accepted at intake.
func (c *APIConfig) MaxTextSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxTextSize)
	if err != nil {
		return 2 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if _, err := formatting.ParseBytes(c.MaxTextSize); err != nil {
		return fmt.Errorf("invalid max_text_size: %w", err)
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxTextSize != "" {
		c.MaxTextSize = overlay.MaxTextSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxTextSize == "" {
		c.MaxTextSize = "2MB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv("DOCFLOW_API_BASE_PATH"); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv("DOCFLOW_API_MAX_TEXT_SIZE"); v != "" {
		c.MaxTextSize = v
	}
}
