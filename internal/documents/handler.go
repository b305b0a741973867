package documents

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/handlers"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/routes"
)

// Handler provides HTTP endpoints for document operations.
type Handler struct {
	sys         System
	logger      *slog.Logger
	pagination  pagination.Config
	maxTextSize int64
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, pagination config, and text size limit.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxTextSize int64,
) *Handler {
	return &Handler{
		sys:         sys,
		logger:      logger.With("handler", "documents"),
		pagination:  pagination,
		maxTextSize: maxTextSize,
	}
}

// Routes returns the route group definition for document endpoints.
func (h *Handler) Routes() routes.Group {
	require := func(a auth.Action) []func(http.Handler) http.Handler {
		return []func(http.Handler) http.Handler{auth.Require(a)}
	}

	return routes.Group{
		Prefix:     "/documents",
		Middleware: require(auth.ActionView),
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/history", Handler: h.History},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "", Handler: h.Create, Middleware: require(auth.ActionIntake)},
			{Method: "POST", Pattern: "/{id}/confirm", Handler: h.Confirm, Middleware: require(auth.ActionConfirm)},
			{Method: "POST", Pattern: "/{id}/reopen", Handler: h.Reopen, Middleware: require(auth.ActionReopen)},
			{Method: "POST", Pattern: "/{id}/comments", Handler: h.Comment, Middleware: require(auth.ActionComment)},
			{Method: "POST", Pattern: "/{id}/decisions", Handler: h.Decide, Middleware: require(auth.ActionConfirm)},
			{Method: "POST", Pattern: "/{id}/restore", Handler: h.Restore, Middleware: require(auth.ActionDelete)},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Middleware: require(auth.ActionDelete)},
		},
	}
}

// List returns a paginated list of documents with optional query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	h.respond(w, http.StatusOK, result, err)
}

// Find returns a single document by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Find(r.Context(), id)
	h.respond(w, http.StatusOK, doc, err)
}

// History returns the action history of a document, oldest first.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	entries, err := h.sys.History(r.Context(), id)
	h.respond(w, http.StatusOK, entries, err)
}

// Search accepts a JSON body with pagination and filter criteria and returns matching documents.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCommand)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.List(r.Context(), req.PageRequest, req.Filters)
	h.respond(w, http.StatusOK, result, err)
}

// Create registers a document from its extracted text and metadata.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd CreateCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	doc, err := h.sys.Create(r.Context(), h.actor(r), cmd)
	h.respond(w, http.StatusCreated, doc, err)
}

// Confirm locks a suggested routing, as suggested or to another department.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd ConfirmCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	doc, err := h.sys.Confirm(r.Context(), h.actor(r), id, cmd)
	h.respond(w, http.StatusOK, doc, err)
}

// Reopen returns a confirmed routing to review.
func (h *Handler) Reopen(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd ReopenCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	doc, err := h.sys.Reopen(r.Context(), h.actor(r), id, cmd)
	h.respond(w, http.StatusOK, doc, err)
}

// Comment appends a remark to the document's history.
func (h *Handler) Comment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd CommentCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	if err := h.sys.Comment(r.Context(), h.actor(r), id, cmd); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Decide records an approve, reject, or forward decision.
func (h *Handler) Decide(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd DecisionCommand
	if !h.decode(w, r, &cmd) {
		return
	}

	entry, err := h.sys.Decide(r.Context(), h.actor(r), id, cmd)
	h.respond(w, http.StatusCreated, entry, err)
}

// Delete soft-deletes a document by its UUID path parameter.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), h.actor(r), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Restore reverses a soft delete.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Restore(r.Context(), h.actor(r), id)
	h.respond(w, http.StatusOK, doc, err)
}

func (h *Handler) actor(r *http.Request) auth.Actor {
	actor, _ := auth.FromContext(r.Context())
	return actor
}

// decode reads a JSON body bounded by the text size limit plus room for metadata.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if h.maxTextSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, 2*h.maxTextSize+64*1024)
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrTextTooLarge)
			return false
		}
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCommand)
		return false
	}
	return true
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidCommand)
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
