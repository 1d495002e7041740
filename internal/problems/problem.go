// Package problems implements the problem pool domain: generated problems,
// classification-based pool queries with priority fallback, and solve
// history.
package problems

import (
	"time"

	"github.com/google/uuid"
)

// Type identifies a problem format.
type Type string

const (
	TypeMultipleChoice Type = "multiple_choice"
	TypeShortAnswer    Type = "short_answer"
	TypeEssay          Type = "essay"
	TypeTrueFalse      Type = "true_false"
)

// CanonicalTypes lists every problem type in presentation order.
var CanonicalTypes = []Type{
	TypeMultipleChoice,
	TypeShortAnswer,
	TypeEssay,
	TypeTrueFalse,
}

// Valid reports whether t is a known problem type.
func (t Type) Valid() bool {
	switch t {
	case TypeMultipleChoice, TypeShortAnswer, TypeEssay, TypeTrueFalse:
		return true
	}
	return false
}

// Classification locates a problem in the four-level topic taxonomy.
// Depths must be filled top-down: a set depth implies all shallower
// depths are set.
type Classification struct {
	Depth1 string `json:"depth1"`
	Depth2 string `json:"depth2"`
	Depth3 string `json:"depth3"`
	Depth4 string `json:"depth4"`
}

// Depths returns the classification values in order.
func (c Classification) Depths() [4]string {
	return [4]string{c.Depth1, c.Depth2, c.Depth3, c.Depth4}
}

// Depth returns the number of contiguous levels set from the top.
func (c Classification) Depth() int {
	depth := 0
	for _, v := range c.Depths() {
		if v == "" {
			break
		}
		depth++
	}
	return depth
}

// Contiguous reports whether set depths have no gaps from the top. An
// entirely empty classification is contiguous.
func (c Classification) Contiguous() bool {
	gap := false
	for _, v := range c.Depths() {
		if v == "" {
			gap = true
			continue
		}
		if gap {
			return false
		}
	}
	return true
}

// WellFormed reports whether set depths are contiguous from the top,
// with at least depth1 present.
func (c Classification) WellFormed() bool {
	return c.Depth1 != "" && c.Contiguous()
}

// Truncate returns a copy of the classification cut to the given depth.
func (c Classification) Truncate(depth int) Classification {
	out := Classification{}
	depths := c.Depths()
	for i := range min(depth, 4) {
		switch i {
		case 0:
			out.Depth1 = depths[0]
		case 1:
			out.Depth2 = depths[1]
		case 2:
			out.Depth3 = depths[2]
		case 3:
			out.Depth4 = depths[3]
		}
	}
	return out
}

// Stem markers recorded when generation fails terminally. The failure
// message is carried in the explanation field.
const (
	StemGenerationError = "__GENERATION_ERROR__"
	StemTimeoutError    = "__TIMEOUT_ERROR__"
)

// Problem is a generated study problem in the user's pool.
type Problem struct {
	ID                 uuid.UUID      `json:"id"`
	UserID             string         `json:"userId"`
	Type               Type           `json:"problemType"`
	Stem               string         `json:"stem"`
	Choices            []string       `json:"choices,omitempty"`
	CorrectAnswerIndex *int           `json:"correctAnswerIndex,omitempty"`
	CorrectAnswer      *string        `json:"correctAnswer,omitempty"`
	Guidelines         *string        `json:"guidelines,omitempty"`
	Explanation        *string        `json:"explanation,omitempty"`
	IsCorrect          *bool          `json:"isCorrect,omitempty"`
	Classification     Classification `json:"classification"`
	IsEditable         bool           `json:"isEditable"`
	CreatedAt          time.Time      `json:"createdAt"`
}

// IsErrorMarker reports whether the problem is a generation failure record
// rather than usable content.
func (p *Problem) IsErrorMarker() bool {
	return p.Stem == StemGenerationError || p.Stem == StemTimeoutError
}
