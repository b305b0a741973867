package config

import (
	"fmt"

	"github.com/savetree-1/docflow/internal/providers"
)

var primaryEnv = providerEnv("PRIMARY")

var secondaryEnv = providerEnv("SECONDARY")

func providerEnv(slot string) *providers.Env {
	key := func(field string) string {
		return fmt.Sprintf("DOCFLOW_PROVIDER_%s_%s", slot, field)
	}
	return &providers.Env{
		Name:              key("NAME"),
		Kind:              key("KIND"),
		BaseURL:           key("BASE_URL"),
		Token:             key("TOKEN"),
		Model:             key("MODEL"),
		Deployment:        key("DEPLOYMENT"),
		APIVersion:        key("API_VERSION"),
		Timeout:           key("TIMEOUT"),
		MaxInputChars:     key("MAX_INPUT_CHARS"),
		RequestsPerMinute: key("REQUESTS_PER_MINUTE"),
		Burst:             key("BURST"),
		Retries:           key("RETRIES"),
	}
}

// ProvidersConfig holds the primary and secondary inference adapters.
// Either may be left without a kind to disable it.
type ProvidersConfig struct {
	Primary   providers.Config `toml:"primary"`
	Secondary providers.Config `toml:"secondary"`
}

// Finalize finalizes both adapter configs.
func (c *ProvidersConfig) Finalize() error {
	if err := c.Primary.Finalize(primaryEnv); err != nil {
		return fmt.Errorf("primary: %w", err)
	}
	if err := c.Secondary.Finalize(secondaryEnv); err != nil {
		return fmt.Errorf("secondary: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *ProvidersConfig) Merge(overlay *ProvidersConfig) {
	c.Primary.Merge(&overlay.Primary)
	c.Secondary.Merge(&overlay.Secondary)
}
