package inference

import "strings"

// ExtractJSON strips a Markdown code fence from a model response, returning
// the inner payload. Responses without a fence pass through trimmed.
func ExtractJSON(response string) string {
	trimmed := strings.TrimSpace(response)

	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// drop the language tag line, e.g. ```json
		trimmed = trimmed[idx+1:]
	}

	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}

	return strings.TrimSpace(trimmed)
}
