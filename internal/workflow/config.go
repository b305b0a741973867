package workflow

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds classification policy.
type Config struct {
	Budget           string  `toml:"budget"`
	TextWindow       int     `toml:"text_window"`
	SummaryItems     int     `toml:"summary_items"`
	SummaryChars     int     `toml:"summary_chars"`
	InferOnHardRule  *bool   `toml:"infer_on_hard_rule"`
	HighConfidence   float64 `toml:"high_confidence"`
	SecondaryCeiling float64 `toml:"secondary_ceiling"`
	BatchConcurrency int     `toml:"batch_concurrency"`
	OnIntake         *bool   `toml:"on_intake"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Budget           string
	TextWindow       string
	InferOnHardRule  string
	HighConfidence   string
	SecondaryCeiling string
	BatchConcurrency string
	OnIntake         string
}

// BudgetDuration returns Budget as a time.Duration. Zero means unbounded.
func (c *Config) BudgetDuration() time.Duration {
	d, _ := time.ParseDuration(c.Budget)
	return d
}

// InferWithHardRule reports whether providers are consulted when a hard rule matched.
func (c *Config) InferWithHardRule() bool {
	return c.InferOnHardRule == nil || *c.InferOnHardRule
}

// ClassifyOnIntake reports whether new documents are classified as soon as
// they are accepted.
func (c *Config) ClassifyOnIntake() bool {
	return c.OnIntake == nil || *c.OnIntake
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Budget != "" {
		c.Budget = overlay.Budget
	}
	if overlay.TextWindow != 0 {
		c.TextWindow = overlay.TextWindow
	}
	if overlay.SummaryItems != 0 {
		c.SummaryItems = overlay.SummaryItems
	}
	if overlay.SummaryChars != 0 {
		c.SummaryChars = overlay.SummaryChars
	}
	if overlay.InferOnHardRule != nil {
		v := *overlay.InferOnHardRule
		c.InferOnHardRule = &v
	}
	if overlay.HighConfidence != 0 {
		c.HighConfidence = overlay.HighConfidence
	}
	if overlay.SecondaryCeiling != 0 {
		c.SecondaryCeiling = overlay.SecondaryCeiling
	}
	if overlay.BatchConcurrency != 0 {
		c.BatchConcurrency = overlay.BatchConcurrency
	}
	if overlay.OnIntake != nil {
		v := *overlay.OnIntake
		c.OnIntake = &v
	}
}

func (c *Config) loadDefaults() {
	if c.Budget == "" {
		c.Budget = "90s"
	}
	if c.TextWindow == 0 {
		c.TextWindow = 12000
	}
	if c.SummaryItems == 0 {
		c.SummaryItems = 3
	}
	if c.SummaryChars == 0 {
		c.SummaryChars = 240
	}
	if c.InferOnHardRule == nil {
		v := true
		c.InferOnHardRule = &v
	}
	if c.HighConfidence == 0 {
		c.HighConfidence = 0.75
	}
	if c.SecondaryCeiling == 0 {
		c.SecondaryCeiling = 0.65
	}
	if c.BatchConcurrency == 0 {
		c.BatchConcurrency = 4
	}
	if c.OnIntake == nil {
		v := true
		c.OnIntake = &v
	}
}

func (c *Config) loadEnv(env *Env) {
	get := func(key string) string {
		if key == "" {
			return ""
		}
		return os.Getenv(key)
	}

	if v := get(env.Budget); v != "" {
		c.Budget = v
	}
	if v := get(env.TextWindow); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TextWindow = n
		}
	}
	if v := get(env.InferOnHardRule); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.InferOnHardRule = &b
		}
	}
	if v := get(env.HighConfidence); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.HighConfidence = f
		}
	}
	if v := get(env.SecondaryCeiling); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.SecondaryCeiling = f
		}
	}
	if v := get(env.BatchConcurrency); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.BatchConcurrency = n
		}
	}
	if v := get(env.OnIntake); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.OnIntake = &b
		}
	}
}

func (c *Config) validate() error {
	if d, err := time.ParseDuration(c.Budget); err != nil {
		return fmt.Errorf("invalid budget: %w", err)
	} else if d < 0 {
		return fmt.Errorf("budget cannot be negative")
	}
	if c.TextWindow < 1 {
		return fmt.Errorf("text_window must be positive")
	}
	if c.SummaryItems < 1 || c.SummaryChars < 1 {
		return fmt.Errorf("summary_items and summary_chars must be positive")
	}
	if c.HighConfidence <= 0 || c.HighConfidence > 1 {
		return fmt.Errorf("high_confidence must be in (0, 1]")
	}
	if c.SecondaryCeiling <= 0 || c.SecondaryCeiling > 1 {
		return fmt.Errorf("secondary_ceiling must be in (0, 1]")
	}
	if c.BatchConcurrency < 1 {
		return fmt.Errorf("batch_concurrency must be positive")
	}
	return nil
}
