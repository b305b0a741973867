package api

import (
	"fmt"
	"log/slog"

	"github.com/savetree-1/docflow/internal/config"
	"github.com/savetree-1/docflow/internal/hardrules"
	"github.com/savetree-1/docflow/internal/infrastructure"
	"github.com/savetree-1/docflow/internal/providers"
	"github.com/savetree-1/docflow/internal/workflow"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/formatting"
	"github.com/savetree-1/docflow/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration and the
// classification collaborators built from it.
type Runtime struct {
	*infrastructure.Infrastructure
	Pagination     pagination.Config
	MaxTextSize    int64
	Classification workflow.Config
	HardRules      *hardrules.Matcher
	Primary        *workflow.Backend
	Secondary      *workflow.Backend
	Auth           *auth.Authenticator
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) (*Runtime, error) {
	logger := infra.Logger.With("module", "api")

	rules, err := loadHardRules(cfg.HardRulesPath)
	if err != nil {
		return nil, fmt.Errorf("hard rules: %w", err)
	}

	primary, err := NewBackend(&cfg.Providers.Primary, logger)
	if err != nil {
		return nil, fmt.Errorf("primary provider: %w", err)
	}

	secondary, err := NewBackend(&cfg.Providers.Secondary, logger)
	if err != nil {
		return nil, fmt.Errorf("secondary provider: %w", err)
	}

	authn, err := auth.New(infra.Lifecycle.Context(), &cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	logger.Info("classification runtime ready",
		"hard_rules", rules.Len(),
		"primary", backendName(primary),
		"secondary", backendName(secondary),
		"budget", cfg.Classification.BudgetDuration(),
		"max_text_size", formatting.FormatBytes(cfg.API.MaxTextSizeBytes()),
	)

	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    logger,
			Database:  infra.Database,
			Storage:   infra.Storage,
			Notify:    infra.Notify,
		},
		Pagination:     cfg.API.Pagination,
		MaxTextSize:    cfg.API.MaxTextSizeBytes(),
		Classification: cfg.Classification,
		HardRules:      rules,
		Primary:        primary,
		Secondary:      secondary,
		Auth:           authn,
	}, nil
}

// NewBackend builds the provider backend described by cfg, or nil when the
// provider is not configured.
func NewBackend(cfg *providers.Config, logger *slog.Logger) (*workflow.Backend, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	p, err := providers.NewOpenAI(cfg, nil, logger)
	if err != nil {
		return nil, err
	}

	return &workflow.Backend{
		Provider: p,
		Timeout:  cfg.TimeoutDuration(),
		Retries:  cfg.Retries,
	}, nil
}

func loadHardRules(path string) (*hardrules.Matcher, error) {
	if path == "" {
		return hardrules.Default()
	}
	return hardrules.LoadFile(path)
}

func backendName(b *workflow.Backend) string {
	if b == nil {
		return "none"
	}
	return b.Provider.Name()
}
