package problems

import (
	"errors"
	"net/http"
)

// Domain errors for problem operations.
var (
	ErrNotFound              = errors.New("problem not found")
	ErrDuplicate             = errors.New("problem already exists")
	ErrInvalidType           = errors.New("invalid problem type")
	ErrInvalidClassification = errors.New("classification depths must be contiguous from depth1")
	ErrInvalidRequest        = errors.New("invalid request")
)

// MapHTTPStatus maps problem domain errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrInvalidType) ||
		errors.Is(err, ErrInvalidClassification) ||
		errors.Is(err, ErrInvalidRequest) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
