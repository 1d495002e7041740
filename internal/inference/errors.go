package inference

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

// ErrEmptyResponse indicates the model returned no usable content.
var ErrEmptyResponse = errors.New("no content in model response")

// IsRetryable reports whether an inference error is transient: rate limits,
// service overload, or timeouts. Other failures (bad requests, safety
// blocks) are terminal.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests, http.StatusServiceUnavailable:
			return true
		}
	}

	return false
}
