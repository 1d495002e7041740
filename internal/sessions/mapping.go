package sessions

import (
	"encoding/json"

	"github.com/quizdeck/quizdeck/pkg/query"
	"github.com/quizdeck/quizdeck/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "sessions", "s").
	Project("id", "ID").
	Project("user_id", "UserID").
	Project("image_key", "ImageKey").
	Project("content_type", "ContentType").
	Project("page_count", "PageCount").
	Project("status", "Status").
	Project("failure_stage", "FailureStage").
	Project("failure_message", "FailureMessage").
	Project("analysis_model", "AnalysisModel").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt").
	ProjectExpr(
		"(SELECT COUNT(*) FROM public.session_problems sp WHERE sp.session_id = s.id)",
		"ProblemCount",
	)

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

func scanSession(s repository.Scanner) (Session, error) {
	var session Session
	err := s.Scan(
		&session.ID,
		&session.UserID,
		&session.ImageKey,
		&session.ContentType,
		&session.PageCount,
		&session.Status,
		&session.FailureStage,
		&session.FailureMessage,
		&session.AnalysisModel,
		&session.CreatedAt,
		&session.UpdatedAt,
		&session.ProblemCount,
	)
	return session, err
}

func scanExtracted(s repository.Scanner) (ExtractedProblem, error) {
	var (
		p              ExtractedProblem
		classification []byte
	)

	err := s.Scan(
		&p.ID,
		&p.SessionID,
		&p.Seq,
		&p.Content,
		&classification,
		&p.CreatedAt,
	)
	if err != nil {
		return p, err
	}

	if len(classification) > 0 {
		if err := json.Unmarshal(classification, &p.Classification); err != nil {
			return p, err
		}
	}

	return p, nil
}
