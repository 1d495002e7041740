package sessions

import (
	"errors"
	"net/http"
)

// Domain errors for session operations.
var (
	ErrNotFound       = errors.New("session not found")
	ErrDuplicate      = errors.New("session already exists")
	ErrInvalidFile    = errors.New("invalid file")
	ErrFileTooLarge   = errors.New("file exceeds maximum upload size")
	ErrNotReviewable  = errors.New("session has no completed analysis to label")
	ErrInvalidRequest = errors.New("invalid request")
)

// MapHTTPStatus maps session domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrFileTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	if errors.Is(err, ErrInvalidFile) || errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNotReviewable) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
