package providers_test

import (
	"testing"
	"time"

	"github.com/savetree-1/docflow/internal/providers"
)

func TestConfigDisabled(t *testing.T) {
	var c providers.Config
	if err := c.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if c.Enabled() {
		t.Error("empty config should be disabled")
	}
}

func TestConfigDefaultsByKind(t *testing.T) {
	c := providers.Config{Kind: providers.KindOllama}
	if err := c.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if c.Name != "ollama" || c.BaseURL == "" || c.Model == "" {
		t.Errorf("unexpected defaults: %+v", c)
	}
	if c.TimeoutDuration() != 30*time.Second {
		t.Errorf("Timeout = %v", c.TimeoutDuration())
	}
}

func TestConfigEnvOverrides(t *testing.T) {
	t.Setenv("TEST_PROVIDER_KIND", "azure")
	t.Setenv("TEST_PROVIDER_BASE_URL", "https://example.openai.azure.com")
	t.Setenv("TEST_PROVIDER_TOKEN", "key")
	t.Setenv("TEST_PROVIDER_DEPLOYMENT", "gpt-4o")
	t.Setenv("TEST_PROVIDER_RETRIES", "2")

	c := providers.Config{}
	env := &providers.Env{
		Kind:       "TEST_PROVIDER_KIND",
		BaseURL:    "TEST_PROVIDER_BASE_URL",
		Token:      "TEST_PROVIDER_TOKEN",
		Deployment: "TEST_PROVIDER_DEPLOYMENT",
		Retries:    "TEST_PROVIDER_RETRIES",
	}
	if err := c.Finalize(env); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if c.Model != "gpt-4o" || c.APIVersion == "" || c.Retries != 2 {
		t.Errorf("unexpected config: %+v", c)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  providers.Config
	}{
		{"unknown kind", providers.Config{Kind: "bedrock"}},
		{"azure without deployment", providers.Config{Kind: "azure", BaseURL: "https://x", Token: "k"}},
		{"openai without token", providers.Config{Kind: "openai"}},
		{"bad timeout", providers.Config{Kind: "ollama", Timeout: "soon"}},
		{"too many retries", providers.Config{Kind: "ollama", Retries: 5}},
		{"negative burst", providers.Config{Kind: "ollama", Burst: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.cfg
			if err := c.Finalize(nil); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigBurstEnv(t *testing.T) {
	t.Setenv("TEST_PROVIDER_BURST", "12")

	c := providers.Config{Kind: providers.KindOllama}
	if err := c.Finalize(&providers.Env{Burst: "TEST_PROVIDER_BURST"}); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if c.Burst != 12 {
		t.Errorf("Burst = %d, want 12", c.Burst)
	}

	t.Setenv("TEST_PROVIDER_BURST", "-2")
	neg := providers.Config{Kind: providers.KindOllama}
	if err := neg.Finalize(&providers.Env{Burst: "TEST_PROVIDER_BURST"}); err == nil {
		t.Error("expected error for negative burst")
	}
}
