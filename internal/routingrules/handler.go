package routingrules

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/savetree-1/docflow/internal/taxonomy"
	"github.com/savetree-1/docflow/pkg/auth"
	"github.com/savetree-1/docflow/pkg/handlers"
	"github.com/savetree-1/docflow/pkg/pagination"
	"github.com/savetree-1/docflow/pkg/routes"
)

// Handler provides HTTP endpoints for routing rule operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// ResolveRequest is the body of a dry-run resolution. Text, when present,
// contributes keywords in addition to Keywords.
type ResolveRequest struct {
	Department string   `json:"department"`
	Category   string   `json:"category"`
	Urgency    string   `json:"urgency"`
	Keywords   []string `json:"keywords"`
	Text       string   `json:"text"`
}

// ResolveResponse reports a dry-run outcome. Decision is null when no rule matched.
type ResolveResponse struct {
	Matched  bool      `json:"matched"`
	Decision *Decision `json:"decision"`
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "routing-rules"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for routing rule endpoints.
func (h *Handler) Routes() routes.Group {
	manage := []func(http.Handler) http.Handler{auth.Require(auth.ActionManageRules)}

	return routes.Group{
		Prefix:     "/routing-rules",
		Middleware: []func(http.Handler) http.Handler{auth.Require(auth.ActionView)},
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/resolve", Handler: h.Resolve},
			{Method: "POST", Pattern: "", Handler: h.Create, Middleware: manage},
			{Method: "PUT", Pattern: "/{id}", Handler: h.Update, Middleware: manage},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete, Middleware: manage},
		},
	}
}

// List returns a paginated list of rules.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), page, filters)
	h.respond(w, http.StatusOK, result, err)
}

// Find returns a single rule by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	rule, err := h.sys.Find(r.Context(), id)
	h.respond(w, http.StatusOK, rule, err)
}

// Create adds a rule and records a rule-create entry.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	actor, _ := auth.FromContext(r.Context())
	rule, err := h.sys.Create(r.Context(), actor, cmd)
	h.respond(w, http.StatusCreated, rule, err)
}

// Update replaces a rule and records a rule-update entry.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var cmd Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	actor, _ := auth.FromContext(r.Context())
	rule, err := h.sys.Update(r.Context(), actor, id, cmd)
	h.respond(w, http.StatusOK, rule, err)
}

// Delete removes a rule and records a rule-delete entry.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	actor, _ := auth.FromContext(r.Context())
	if err := h.sys.Delete(r.Context(), actor, id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Resolve runs a resolution against the current snapshot without side effects.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	attrs := Attributes{
		Department: req.Department,
		Keywords:   append(req.Keywords, Terms(req.Text)...),
	}

	if req.Category != "" {
		c, err := taxonomy.ParseCategory(req.Category)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		attrs.Category = c
	}

	if req.Urgency != "" {
		u, err := taxonomy.ParseUrgency(req.Urgency)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
			return
		}
		attrs.Urgency = u
	}

	decision, matched := h.sys.Resolve(attrs)
	handlers.RespondJSON(w, http.StatusOK, ResolveResponse{Matched: matched, Decision: decision})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
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
