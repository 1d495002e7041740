package acquisition

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/quizdeck/quizdeck/internal/problems"
)

// Domain errors for acquisition operations.
var (
	ErrNotActionable   = errors.New("at least one problem type must have a positive count")
	ErrCountOutOfRange = errors.New("requested count out of range")
	ErrSubmitFailed    = errors.New("problem generation could not be requested")
	ErrTimeout         = errors.New("problem generation timed out")
	ErrInvalidRequest  = errors.New("invalid request")
)

// User-facing failure messages attached to partial results, keyed by the
// request's language. Timeouts are worded distinctly from generation
// failures so the caller knows partial results were kept.
var (
	msgTimedOut = map[string]string{
		"en": "Problem generation timed out. Partial results were kept; please try again.",
		"ko": "문제 생성 시간이 초과되었습니다. 일부 결과만 저장되었으니 다시 시도해 주세요.",
	}

	msgGenerationFailed = map[string]string{
		"en": "Problem generation failed. Please try again.",
		"ko": "문제 생성에 실패했습니다. 다시 시도해 주세요.",
	}
)

func localize(messages map[string]string, language string) string {
	if msg, ok := messages[language]; ok {
		return msg
	}
	return messages["en"]
}

// GenerationError carries the human-readable message embedded in a
// generation failure marker.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("problem generation failed: %s", e.Message)
}

// MapHTTPStatus maps acquisition errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotActionable) ||
		errors.Is(err, ErrCountOutOfRange) ||
		errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, problems.ErrInvalidType) ||
		errors.Is(err, problems.ErrInvalidClassification) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrSubmitFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
