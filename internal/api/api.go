// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"fmt"
	"net/http"

	"github.com/savetree-1/docflow/internal/config"
	"github.com/savetree-1/docflow/internal/infrastructure"
	"github.com/savetree-1/docflow/pkg/middleware"
	"github.com/savetree-1/docflow/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The routing rule snapshot is loaded before the module is returned.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime, err := NewRuntime(cfg, infra)
	if err != nil {
		return nil, err
	}

	domain := NewDomain(runtime)
	if err := domain.Start(runtime); err != nil {
		return nil, fmt.Errorf("domain start: %w", err)
	}

	mux := http.NewServeMux()
	if err := registerRoutes(mux, domain, runtime, cfg); err != nil {
		return nil, fmt.Errorf("register routes: %w", err)
	}

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.Recover(runtime.Logger))
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(runtime.Auth.Middleware)

	return m, nil
}
