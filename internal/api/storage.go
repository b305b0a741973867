package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/handlers"
	"github.com/savetree-1/docflow/pkg/routes"
	"github.com/savetree-1/docflow/pkg/storage"
)

// storageHandler serves retained document text blobs by key.
type storageHandler struct {
	store   storage.System
	logger  *slog.Logger
	maxSize int64
}

func newStorageHandler(
	store storage.System,
	logger *slog.Logger,
	maxSize int64,
) *storageHandler {
	return &storageHandler{
		store:   store,
		logger:  logger.With("handler", "storage"),
		maxSize: maxSize,
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix:     "/storage",
		Middleware: []func(http.Handler) http.Handler{auth.Require(auth.ActionView)},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
		},
	}
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if !strings.HasPrefix(key, "documents/") {
		handlers.RespondError(w, h.logger, http.StatusNotFound, storage.ErrNotFound)
		return
	}

	data, err := storage.ReadAll(r.Context(), h.store, key, h.maxSize)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
