package providers

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Adapter kinds understood by NewOpenAI.
const (
	KindAzure  = "azure"
	KindOpenAI = "openai"
	KindOllama = "ollama"
)

// Config describes one provider adapter. A Config with an empty Kind is
// disabled and produces no adapter.
type Config struct {
	Name              string `toml:"name"`
	Kind              string `toml:"kind"`
	BaseURL           string `toml:"base_url"`
	Token             string `toml:"token"`
	Model             string `toml:"model"`
	Deployment        string `toml:"deployment"`
	APIVersion        string `toml:"api_version"`
	Timeout           string `toml:"timeout"`
	MaxInputChars     int    `toml:"max_input_chars"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	Burst             int    `toml:"burst"`
	Retries           int    `toml:"retries"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Name              string
	Kind              string
	BaseURL           string
	Token             string
	Model             string
	Deployment        string
	APIVersion        string
	Timeout           string
	MaxInputChars     string
	RequestsPerMinute string
	Burst             string
	Retries           string
}

// Enabled reports whether the adapter is configured.
func (c *Config) Enabled() bool {
	return c.Kind != ""
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
// Defaults are applied after the environment so a kind supplied only through
// the environment still receives kind-specific defaults.
func (c *Config) Finalize(env *Env) error {
	if env != nil {
		c.loadEnv(env)
	}
	c.loadDefaults()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Kind != "" {
		c.Kind = overlay.Kind
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Token != "" {
		c.Token = overlay.Token
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Deployment != "" {
		c.Deployment = overlay.Deployment
	}
	if overlay.APIVersion != "" {
		c.APIVersion = overlay.APIVersion
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxInputChars != 0 {
		c.MaxInputChars = overlay.MaxInputChars
	}
	if overlay.RequestsPerMinute != 0 {
		c.RequestsPerMinute = overlay.RequestsPerMinute
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
	if overlay.Retries != 0 {
		c.Retries = overlay.Retries
	}
}

func (c *Config) loadDefaults() {
	if !c.Enabled() {
		return
	}
	if c.Name == "" {
		c.Name = c.Kind
	}
	if c.Timeout == "" {
		c.Timeout = "30s"
	}
	if c.MaxInputChars == 0 {
		c.MaxInputChars = 12000
	}
	if c.RequestsPerMinute == 0 {
		c.RequestsPerMinute = 60
	}
	if c.Burst == 0 {
		c.Burst = 5
	}

	switch c.Kind {
	case KindAzure:
		if c.APIVersion == "" {
			c.APIVersion = "2024-10-21"
		}
		if c.Model == "" {
			c.Model = c.Deployment
		}
	case KindOllama:
		if c.BaseURL == "" {
			c.BaseURL = "http://localhost:11434/v1"
		}
		if c.Model == "" {
			c.Model = "llama3.1"
		}
	case KindOpenAI:
		if c.Model == "" {
			c.Model = "gpt-4o-mini"
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	str := func(key string, dst *string) {
		if key == "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if key == "" {
			return
		}
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str(env.Name, &c.Name)
	str(env.Kind, &c.Kind)
	str(env.BaseURL, &c.BaseURL)
	str(env.Token, &c.Token)
	str(env.Model, &c.Model)
	str(env.Deployment, &c.Deployment)
	str(env.APIVersion, &c.APIVersion)
	str(env.Timeout, &c.Timeout)
	num(env.MaxInputChars, &c.MaxInputChars)
	num(env.RequestsPerMinute, &c.RequestsPerMinute)
	num(env.Burst, &c.Burst)
	num(env.Retries, &c.Retries)
}

func (c *Config) validate() error {
	if !c.Enabled() {
		return nil
	}

	switch c.Kind {
	case KindAzure:
		if c.BaseURL == "" {
			return fmt.Errorf("base_url required for azure")
		}
		if c.Deployment == "" {
			return fmt.Errorf("deployment required for azure")
		}
		if c.Token == "" {
			return fmt.Errorf("token required for azure")
		}
	case KindOpenAI:
		if c.Token == "" {
			return fmt.Errorf("token required for openai")
		}
	case KindOllama:
	default:
		return fmt.Errorf("unknown kind %q", c.Kind)
	}

	if d, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	} else if d <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxInputChars < 1 {
		return fmt.Errorf("max_input_chars must be positive")
	}
	if c.RequestsPerMinute < 1 {
		return fmt.Errorf("requests_per_minute must be positive")
	}
	if c.Burst < 1 {
		return fmt.Errorf("burst must be positive")
	}
	if c.Retries < 0 || c.Retries > 3 {
		return fmt.Errorf("retries must be between 0 and 3")
	}
	return nil
}
