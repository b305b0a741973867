package classifications

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/handlers"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/routes"
)

// MaxBatch bounds the number of documents accepted by one batch request.
const MaxBatch = 100

// Handler provides HTTP endpoints for classification operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "classifications"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for classification endpoints.
func (h *Handler) Routes() routes.Group {
	classify := []func(http.Handler) http.Handler{auth.Require(auth.ActionClassify)}

	return routes.Group{
		Prefix:     "/classifications",
		Middleware: []func(http.Handler) http.Handler{auth.Require(auth.ActionView)},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/document/{id}", Handler: h.FindByDocument},
			{Method: "GET", Pattern: "/document/{id}/history", Handler: h.History},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/batch", Handler: h.ClassifyBatch, Middleware: classify},
			{Method: "POST", Pattern: "/{documentId}", Handler: h.Classify, Middleware: classify},
		},
	}
}

// List returns a paginated list of classifications with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	h.respond(w, http.StatusOK, result, err)
}

// Find returns a single classification by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.sys.Find(r.Context(), id)
	h.respond(w, http.StatusOK, c, err)
}

// FindByDocument returns the current classification of a document.
func (h *Handler) FindByDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.sys.Current(r.Context(), id)
	h.respond(w, http.StatusOK, c, err)
}

// History returns every classification run of a document, newest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	items, err := h.sys.History(r.Context(), id)
	h.respond(w, http.StatusOK, items, err)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching classifications.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	h.respond(w, http.StatusOK, result, err)
}

// Classify runs classification for the document in the path and returns the new run.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "documentId")
	if !ok {
		return
	}

	c, err := h.sys.Classify(r.Context(), id, h.actor(r))
	h.respond(w, http.StatusCreated, c, err)
}

// ClassifyBatch classifies several documents and reports a result per document.
func (h *Handler) ClassifyBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidBatch)
		return
	}

	if n := len(req.DocumentIDs); n == 0 || n > MaxBatch {
		err := fmt.Errorf("%w: between 1 and %d document_ids required", ErrInvalidBatch, MaxBatch)
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	results := h.sys.ClassifyBatch(r.Context(), req.DocumentIDs, h.actor(r))
	handlers.RespondJSON(w, http.StatusOK, results)
}

func (h *Handler) actor(r *http.Request) auth.Actor {
	actor, _ := auth.FromContext(r.Context())
	return actor
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNotFound)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any, err error) {
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, status, body)
}
