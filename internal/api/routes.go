package api

import (
	"net/http"

	"github.com/savetree-1/docflow/internal/config"
	"github.com/savetree-1/docflow/pkg/openapi"
	"github.com/savetree-1/docflow/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
	cfg *config.Config,
) error {
	text := newStorageHandler(runtime.Storage, runtime.Logger, runtime.MaxTextSize)

	groups := []routes.Group{
		domain.Documents.Handler().Routes(),
		domain.Classifications.Handler().Routes(),
		domain.RoutingRules.Handler().Routes(),
		domain.Audit.Handler().Routes(),
		domain.Prompts.Handler().Routes(),
		text.routes(),
	}
	routes.Register(mux, groups...)

	spec := openapi.NewSpec(&cfg.OpenAPI, cfg.Version, cfg.API.BasePath)
	spec.AddGroups("", groups...)

	serve, err := spec.Handler()
	if err != nil {
		return err
	}
	mux.HandleFunc("GET /openapi.json", serve)
	return nil
}
