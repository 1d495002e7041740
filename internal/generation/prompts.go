package generation

import (
	"fmt"
	"strings"

	"github.com/quizdeck/quizdeck/internal/problems"
)

const promptHeader = `You are an English test item writer. Create %d %s problem(s)
for the topic path below. Problems must be self-contained and suitable for
exam practice. Write explanations in language %q.

Topic path: %s

Respond with ONLY a JSON array. Each element must have this shape:
%s

Do not include any text outside the JSON array.`

var typeInstructions = map[problems.Type]struct {
	label  string
	schema string
}{
	problems.TypeMultipleChoice: {
		label: "multiple choice",
		schema: `{"stem": "question text", "choices": ["A", "B", "C", "D"],
"answerIndex": 0, "explanation": "why the answer is correct"}`,
	},
	problems.TypeShortAnswer: {
		label: "short answer",
		schema: `{"stem": "question text", "answer": "expected answer",
"explanation": "why the answer is correct"}`,
	},
	problems.TypeEssay: {
		label: "essay",
		schema: `{"stem": "writing prompt", "guidelines": "grading guidelines",
"explanation": "what a strong response covers"}`,
	},
	problems.TypeTrueFalse: {
		label: "true/false",
		schema: `{"stem": "statement to judge", "answerIndex": 0,
"explanation": "why the statement is true or false"}`,
	},
}

func buildPrompt(typ problems.Type, classification problems.Classification, count int, language string) string {
	inst := typeInstructions[typ]

	if language == "" {
		language = "en"
	}

	var path []string
	for _, depth := range classification.Depths() {
		if depth == "" {
			break
		}
		path = append(path, depth)
	}

	topic := strings.Join(path, " > ")
	if topic == "" {
		topic = "general English"
	}

	return fmt.Sprintf(promptHeader, count, inst.label, language, topic, inst.schema)
}
