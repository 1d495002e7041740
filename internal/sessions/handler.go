package sessions

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/quizdeck/quizdeck/pkg/handlers"
	"github.com/quizdeck/quizdeck/pkg/middleware"
	"github.com/quizdeck/quizdeck/pkg/pagination"
	"github.com/quizdeck/quizdeck/pkg/routes"
)

// Handler provides HTTP endpoints for session operations.
type Handler struct {
	sys           System
	analyzer      Analyzer
	logger        *slog.Logger
	maxUploadSize int64
	pagination    pagination.Config
}

// NewHandler creates a Handler with the given system, analyzer, logger,
// upload size limit, and pagination config.
func NewHandler(
	sys System,
	analyzer Analyzer,
	logger *slog.Logger,
	maxUploadSize int64,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:           sys,
		analyzer:      analyzer,
		logger:        logger.With("handler", "sessions"),
		maxUploadSize: maxUploadSize,
		pagination:    pagination,
	}
}

// Routes returns the route group definition for session endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/sessions",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/board", Handler: h.Board},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "GET", Pattern: "/{id}/problems", Handler: h.Problems},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/{id}/label", Handler: h.Label},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

// List returns a page of the caller's sessions, newest first, optionally
// filtered by status.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), &h.pagination)

	var status *string
	if s := r.URL.Query().Get("status"); s != "" {
		status = &s
	}

	result, err := h.sys.List(r.Context(), middleware.UserID(r.Context()), page, status)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Board returns the caller's sessions partitioned into review board buckets
// plus the keep-polling flag.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	board, err := h.sys.BoardFor(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, board)
}

// Find returns a single session by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	session, err := h.sys.Find(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, session)
}

// Problems returns the problems extracted from a session's image.
func (h *Handler) Problems(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	extracted, err := h.sys.ExtractedProblems(r.Context(), middleware.UserID(r.Context()), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, extracted)
}

// Upload processes a multipart image upload, registers a pending session,
// and enqueues it for analysis. PDF uploads get an automatic page count.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		handlers.RespondError(w, h.logger, http.StatusRequestEntityTooLarge, ErrFileTooLarge)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	contentType := detectContentType(header.Header.Get("Content-Type"), data)
	if !supportedUpload(contentType) {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidFile)
		return
	}

	cmd := CreateCommand{
		UserID:      middleware.UserID(r.Context()),
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		PageCount:   extractPDFPageCount(h.logger, data, contentType),
	}

	session, err := h.sys.Create(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if err := h.analyzer.Submit(r.Context(), session.ID); err != nil {
		h.logger.Error("enqueue analysis failed", "session", session.ID, "error", err)
		if failErr := h.sys.Fail(r.Context(), session.ID, "enqueue", err.Error()); failErr != nil {
			h.logger.Error("mark session failed errored", "session", session.ID, "error", failErr)
		}
	}

	handlers.RespondJSON(w, http.StatusCreated, session)
}

// Label marks a completed session as reviewed.
func (h *Handler) Label(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	if err := h.sys.Label(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete removes one of the caller's sessions along with its stored image
// and extracted problems.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidRequest)
		return
	}

	if err := h.sys.Delete(r.Context(), middleware.UserID(r.Context()), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func supportedUpload(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/webp", "application/pdf":
		return true
	}
	return false
}

func detectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}

func extractPDFPageCount(logger *slog.Logger, data []byte, contentType string) *int {
	if contentType != "application/pdf" {
		return nil
	}

	count, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		logger.Warn("failed to extract PDF page count", "error", err)
		return nil
	}

	return &count
}
