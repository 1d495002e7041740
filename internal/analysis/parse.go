package analysis

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/problems"
	"github.com/quizdeck/quizdeck/internal/sessions"
)

const analysisPrompt = `You are an English test analyst. The image contains
an English exam page. Identify every distinct problem on the page.

For each problem, classify it against a four-level topic taxonomy from
broad area (depth1) to specific skill (depth4). Use as many depths as you
can justify; leave deeper levels empty when uncertain.

Respond with ONLY a JSON array. Each element must have this shape:
{"content": "full problem text", "classification": {"depth1": "...",
"depth2": "...", "depth3": "...", "depth4": "..."}}

An empty array is valid when the image contains no problems. Do not include
any text outside the JSON array.`

type rawExtracted struct {
	Content        string                  `json:"content"`
	Classification problems.Classification `json:"classification"`
}

// parseAnalysis decodes the vision model output into extracted problems.
// Elements with empty content are dropped; a malformed classification fails
// the session so the failure surfaces on the board.
func parseAnalysis(payload string, sessionID uuid.UUID) ([]sessions.ExtractedProblem, error) {
	var raw []rawExtracted
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode analysis output: %w", err)
	}

	extracted := make([]sessions.ExtractedProblem, 0, len(raw))
	for i, r := range raw {
		content := strings.TrimSpace(r.Content)
		if content == "" {
			continue
		}

		if r.Classification.Depth() > 0 && !r.Classification.WellFormed() {
			return nil, fmt.Errorf("problem %d: classification depths must be contiguous", i)
		}

		extracted = append(extracted, sessions.ExtractedProblem{
			ID:             uuid.New(),
			SessionID:      sessionID,
			Seq:            len(extracted) + 1,
			Content:        content,
			Classification: r.Classification,
		})
	}

	return extracted, nil
}
