package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/problems"
)

// rawProblem is the JSON shape produced by the generation model.
type rawProblem struct {
	Stem        string   `json:"stem"`
	Choices     []string `json:"choices"`
	AnswerIndex *int     `json:"answerIndex"`
	Answer      string   `json:"answer"`
	Guidelines  string   `json:"guidelines"`
	Explanation string   `json:"explanation"`
}

var trueFalseChoices = []string{"True", "False"}

// parseResponse decodes the model output into validated pool problems.
// Invalid elements fail the whole batch so the caller can retry.
func parseResponse(payload string, userID string, typ problems.Type, classification problems.Classification) ([]problems.Problem, error) {
	var raw []rawProblem
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("decode model output: %w", err)
	}

	if len(raw) == 0 {
		return nil, fmt.Errorf("model returned no problems")
	}

	batch := make([]problems.Problem, 0, len(raw))
	for i, r := range raw {
		p, err := transform(r, userID, typ, classification)
		if err != nil {
			return nil, fmt.Errorf("problem %d: %w", i, err)
		}
		batch = append(batch, p)
	}

	return batch, nil
}

func transform(raw rawProblem, userID string, typ problems.Type, classification problems.Classification) (problems.Problem, error) {
	stem := strings.TrimSpace(raw.Stem)
	if stem == "" {
		return problems.Problem{}, fmt.Errorf("empty stem")
	}

	p := problems.Problem{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           typ,
		Stem:           stem,
		Classification: classification,
		IsEditable:     true,
	}

	if explanation := strings.TrimSpace(raw.Explanation); explanation != "" {
		p.Explanation = &explanation
	}

	switch typ {
	case problems.TypeMultipleChoice:
		if len(raw.Choices) < 2 {
			return problems.Problem{}, fmt.Errorf("multiple choice requires at least 2 choices, got %d", len(raw.Choices))
		}
		if raw.AnswerIndex == nil || *raw.AnswerIndex < 0 || *raw.AnswerIndex >= len(raw.Choices) {
			return problems.Problem{}, fmt.Errorf("answer index out of range")
		}
		p.Choices = raw.Choices
		p.CorrectAnswerIndex = raw.AnswerIndex

	case problems.TypeTrueFalse:
		if raw.AnswerIndex == nil || *raw.AnswerIndex < 0 || *raw.AnswerIndex >= len(trueFalseChoices) {
			return problems.Problem{}, fmt.Errorf("true/false answer index out of range")
		}
		p.Choices = trueFalseChoices
		p.CorrectAnswerIndex = raw.AnswerIndex

	case problems.TypeShortAnswer:
		answer := strings.TrimSpace(raw.Answer)
		if answer == "" {
			return problems.Problem{}, fmt.Errorf("short answer requires an answer")
		}
		p.CorrectAnswer = &answer

	case problems.TypeEssay:
		guidelines := strings.TrimSpace(raw.Guidelines)
		if guidelines == "" {
			return problems.Problem{}, fmt.Errorf("essay requires grading guidelines")
		}
		p.Guidelines = &guidelines

	default:
		return problems.Problem{}, problems.ErrInvalidType
	}

	return p, nil
}
