package problems

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/pkg/handlers"
	"github.com/quizdeck/quizdeck/pkg/middleware"
	"github.com/quizdeck/quizdeck/pkg/pagination"
	"github.com/quizdeck/quizdeck/pkg/routes"
)

// Handler provides HTTP endpoints for problem operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SolveRequest records the outcome of a solve attempt.
type SolveRequest struct {
	Correct bool `json:"correct"`
}

// SearchRequest is the body of a pool search: a page request plus
// structured filters.
type SearchRequest struct {
	pagination.PageRequest
	Filters Filters `json:"filters"`
}

// NewHandler creates a Handler with the given system, logger, and
// pagination config.
func NewHandler(sys System, logger *slog.Logger, pagination pagination.Config) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "problems"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for problem endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/problems",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/stats", Handler: h.Stats},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "POST", Pattern: "/{id}/solve", Handler: h.Solve},
		},
	}
}

// List returns a paginated list of the caller's problems with optional
// query parameter filters.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), &h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.List(r.Context(), middleware.UserID(r.Context()), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search returns a paginated list of the caller's problems filtered by a
// structured request body.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}
	req.Normalize(&h.pagination)

	result, err := h.sys.List(r.Context(), middleware.UserID(r.Context()), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Find returns a single problem by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	problem, err := h.sys.Find(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, problem)
}

// Stats returns per-type, per-classification solve statistics for the
// caller. An optional depth parameter (0..4) rolls counts up to a
// shallower classification level.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	rows, err := h.sys.Stats(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	if d := r.URL.Query().Get("depth"); d != "" {
		depth, err := strconv.Atoi(d)
		if err != nil || depth < 0 || depth > 4 {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
			return
		}
		rows = RollUp(rows, depth)
	}

	handlers.RespondJSON(w, http.StatusOK, rows)
}

// Solve records a solve attempt for a problem.
func (h *Handler) Solve(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	if err := h.sys.Solve(r.Context(), middleware.UserID(r.Context()), id, req.Correct); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
