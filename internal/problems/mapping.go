package problems

import (
	"encoding/json"
	"net/url"

	"github.com/quizdeck/quizdeck/pkg/query"
	"github.com/quizdeck/quizdeck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "generated_problems", "p").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("problem_type", "Type").
	Project("stem", "Stem").
	Project("choices", "Choices").
	Project("correct_answer_index", "CorrectAnswerIndex").
	Project("correct_answer", "CorrectAnswer").
	Project("guidelines", "Guidelines").
	Project("explanation", "Explanation").
	Project("is_correct", "IsCorrect").
	Project("classification", "Classification").
	Project("is_editable", "IsEditable").
	Project("created_at", "CreatedAt").
	ProjectExpr("p.classification->>'depth1'", "Depth1").
	ProjectExpr("p.classification->>'depth2'", "Depth2").
	ProjectExpr("p.classification->>'depth3'", "Depth3").
	ProjectExpr("p.classification->>'depth4'", "Depth4")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for problem list queries.
// Nil fields are ignored.
type Filters struct {
	Type   *string `json:"problemType,omitempty"`
	Depth1 *string `json:"depth1,omitempty"`
	Depth2 *string `json:"depth2,omitempty"`
	Depth3 *string `json:"depth3,omitempty"`
	Depth4 *string `json:"depth4,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Type", f.Type).
		WhereEquals("Depth1", f.Depth1).
		WhereEquals("Depth2", f.Depth2).
		WhereEquals("Depth3", f.Depth3).
		WhereEquals("Depth4", f.Depth4)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if t := values.Get("problemType"); t != "" {
		f.Type = &t
	}
	if d := values.Get("depth1"); d != "" {
		f.Depth1 = &d
	}
	if d := values.Get("depth2"); d != "" {
		f.Depth2 = &d
	}
	if d := values.Get("depth3"); d != "" {
		f.Depth3 = &d
	}
	if d := values.Get("depth4"); d != "" {
		f.Depth4 = &d
	}

	return f
}

func scanProblem(s repository.Scanner) (Problem, error) {
	var (
		p              Problem
		choices        []byte
		classification []byte
		depth1         *string
		depth2         *string
		depth3         *string
		depth4         *string
	)

	err := s.Scan(
		&p.ID,
		&p.UserID,
		&p.Type,
		&p.Stem,
		&choices,
		&p.CorrectAnswerIndex,
		&p.CorrectAnswer,
		&p.Guidelines,
		&p.Explanation,
		&p.IsCorrect,
		&classification,
		&p.IsEditable,
		&p.CreatedAt,
		&depth1,
		&depth2,
		&depth3,
		&depth4,
	)
	if err != nil {
		return p, err
	}

	if len(choices) > 0 {
		if err := json.Unmarshal(choices, &p.Choices); err != nil {
			return p, err
		}
	}

	if len(classification) > 0 {
		if err := json.Unmarshal(classification, &p.Classification); err != nil {
			return p, err
		}
	}

	return p, nil
}
