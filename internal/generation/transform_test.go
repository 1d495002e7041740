package generation

import (
	"strings"
	"testing"

	"github.com/quizdeck/quizdeck/internal/problems"
)

var testPath = problems.Classification{
	Depth1: "grammar",
	Depth2: "verb tense",
	Depth3: "perfect aspect",
	Depth4: "past perfect",
}

func intPtr(v int) *int { return &v }

func TestTransformMultipleChoice(t *testing.T) {
	raw := rawProblem{
		Stem:        "Which sentence uses the past perfect correctly?",
		Choices:     []string{"She had left.", "She has leave.", "She had leave.", "She have left."},
		AnswerIndex: intPtr(0),
		Explanation: "Past perfect is had + past participle.",
	}

	p, err := transform(raw, "user-1", problems.TypeMultipleChoice, testPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if p.Type != problems.TypeMultipleChoice {
		t.Errorf("wrong type: %s", p.Type)
	}
	if len(p.Choices) != 4 || *p.CorrectAnswerIndex != 0 {
		t.Error("choices or answer index not carried over")
	}
	if !p.IsEditable {
		t.Error("generated problems should be editable")
	}
	if p.Classification != testPath {
		t.Error("classification not carried over")
	}
}

func TestTransformRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		typ  problems.Type
		raw  rawProblem
	}{
		{
			name: "empty stem",
			typ:  problems.TypeShortAnswer,
			raw:  rawProblem{Stem: "  ", Answer: "ran"},
		},
		{
			name: "too few choices",
			typ:  problems.TypeMultipleChoice,
			raw:  rawProblem{Stem: "Pick one.", Choices: []string{"only"}, AnswerIndex: intPtr(0)},
		},
		{
			name: "answer index out of range",
			typ:  problems.TypeMultipleChoice,
			raw:  rawProblem{Stem: "Pick one.", Choices: []string{"a", "b"}, AnswerIndex: intPtr(2)},
		},
		{
			name: "missing answer index",
			typ:  problems.TypeTrueFalse,
			raw:  rawProblem{Stem: "The sky is green."},
		},
		{
			name: "short answer without answer",
			typ:  problems.TypeShortAnswer,
			raw:  rawProblem{Stem: "What is the past tense of run?"},
		},
		{
			name: "essay without guidelines",
			typ:  problems.TypeEssay,
			raw:  rawProblem{Stem: "Describe your best holiday."},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := transform(tc.raw, "user-1", tc.typ, testPath); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestTransformTrueFalse(t *testing.T) {
	raw := rawProblem{
		Stem:        "The past perfect uses 'had'.",
		AnswerIndex: intPtr(0),
	}

	p, err := transform(raw, "user-1", problems.TypeTrueFalse, testPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(p.Choices) != 2 || p.Choices[0] != "True" || p.Choices[1] != "False" {
		t.Errorf("expected fixed true/false choices, got %v", p.Choices)
	}
}

func TestParseResponse(t *testing.T) {
	payload := `[
		{"stem": "What is the past participle of go?", "answer": "gone", "explanation": "irregular verb"},
		{"stem": "What is the past participle of see?", "answer": "seen", "explanation": "irregular verb"}
	]`

	batch, err := parseResponse(payload, "user-1", problems.TypeShortAnswer, testPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(batch) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(batch))
	}
	if *batch[0].CorrectAnswer != "gone" {
		t.Errorf("wrong answer: %s", *batch[0].CorrectAnswer)
	}
}

func TestParseResponseFailsWholeBatch(t *testing.T) {
	payload := `[
		{"stem": "Valid question?", "answer": "yes"},
		{"stem": "", "answer": "broken"}
	]`

	if _, err := parseResponse(payload, "user-1", problems.TypeShortAnswer, testPath); err == nil {
		t.Error("expected error for batch containing invalid problem")
	}
}

func TestParseResponseRejectsNonJSON(t *testing.T) {
	if _, err := parseResponse("sorry, I cannot help", "user-1", problems.TypeEssay, testPath); err == nil {
		t.Error("expected decode error")
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(problems.TypeMultipleChoice, testPath, 3, "ko")

	if !strings.Contains(prompt, "grammar > verb tense > perfect aspect > past perfect") {
		t.Error("prompt missing topic path")
	}
	if !strings.Contains(prompt, "3 multiple choice") {
		t.Error("prompt missing count and type label")
	}
	if !strings.Contains(prompt, "answerIndex") {
		t.Error("prompt missing response schema")
	}
	if !strings.Contains(prompt, `"ko"`) {
		t.Error("prompt missing language")
	}
}

func TestBuildPromptPartialPath(t *testing.T) {
	prompt := buildPrompt(problems.TypeEssay, testPath.Truncate(2), 1, "")

	if !strings.Contains(prompt, "grammar > verb tense") {
		t.Error("prompt missing truncated path")
	}
	if strings.Contains(prompt, "perfect aspect") {
		t.Error("prompt should not include depths beyond truncation")
	}
}
