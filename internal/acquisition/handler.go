package acquisition

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/quizdeck/quizdeck/pkg/handlers"
	"github.com/quizdeck/quizdeck/pkg/middleware"
	"github.com/quizdeck/quizdeck/pkg/routes"
)

// Handler provides the HTTP endpoint for the acquisition flow.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "acquisition"),
	}
}

// Routes returns the route group definition for acquisition endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/quizzes",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Acquire},
		},
	}
}

// Acquire fulfills a problem request from the pool plus generation and
// returns the tagged result. The response can take minutes when
// generation is involved.
func (h *Handler) Acquire(w http.ResponseWriter, r *http.Request) {
	var spec RequestSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	result, err := h.sys.Acquire(r.Context(), middleware.UserID(r.Context()), spec)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
