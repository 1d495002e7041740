package problems

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/pkg/pagination"
	"github.com/quizdeck/quizdeck/pkg/query"
	"github.com/quizdeck/quizdeck/pkg/repository"
)

type repo struct {
	db         *sql.DB
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a problem repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		logger:     logger.With("system", "problems"),
		pagination: pagination,
	}
}

func (r *repo) Handler() *Handler {
	return NewHandler(r, r.logger, r.pagination)
}

func (r *repo) FetchExisting(ctx context.Context, userID string, criteria FetchCriteria) ([]Problem, error) {
	if criteria.Limit <= 0 {
		return []Problem{}, nil
	}
	if !criteria.Type.Valid() {
		return nil, ErrInvalidType
	}
	if !criteria.Classification.Contiguous() {
		return nil, ErrInvalidClassification
	}

	excluded, err := r.excludedIDs(ctx, userID, criteria)
	if err != nil {
		return nil, fmt.Errorf("load exclusions: %w", err)
	}

	seen := make(map[uuid.UUID]struct{})
	matched := make([]Problem, 0, criteria.Limit)

	for _, stage := range fallbackStages(criteria.Classification) {
		if len(matched) >= criteria.Limit {
			break
		}

		candidates, err := r.queryPool(ctx, userID, criteria.Type, stage, criteria.Limit*poolOverfetch)
		if err != nil {
			return nil, fmt.Errorf("query pool at depth %d: %w", stage.Depth(), err)
		}

		matched = mergeUnique(matched, filterUsable(candidates, excluded), seen, criteria.Limit)
	}

	return matched, nil
}

func (r *repo) CreatedSince(ctx context.Context, userID string, types []Type, since time.Time) ([]Problem, error) {
	typeValues := make([]any, len(types))
	for i, t := range types {
		typeValues[i] = string(t)
	}

	qb := query.
		NewBuilder(projection, query.SortField{Field: "CreatedAt"}).
		WhereEquals("UserID", userID).
		WhereIn("Type", typeValues).
		WhereAtOrAfter("CreatedAt", since)

	q, args := qb.Build()
	return repository.QueryMany(ctx, r.db, q, args, scanProblem)
}

func (r *repo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Problem, error) {
	if len(ids) == 0 {
		return []Problem{}, nil
	}

	idValues := make([]any, len(ids))
	for i, id := range ids {
		idValues[i] = id
	}

	q, args := query.NewBuilder(projection).WhereIn("ID", idValues).Build()
	found, err := repository.QueryMany(ctx, r.db, q, args, scanProblem)
	if err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]Problem, len(found))
	for _, p := range found {
		byID[p.ID] = p
	}

	ordered := make([]Problem, 0, len(found))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}

	return ordered, nil
}

func (r *repo) InsertBatch(ctx context.Context, batch []Problem) error {
	if len(batch) == 0 {
		return nil
	}

	q := `
		INSERT INTO generated_problems(
			id, user_id, problem_type, stem, choices, correct_answer_index,
			correct_answer, guidelines, explanation, classification, is_editable
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, p := range batch {
			choices, err := json.Marshal(p.Choices)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshal choices: %w", err)
			}

			classification, err := json.Marshal(p.Classification)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshal classification: %w", err)
			}

			if _, err := tx.ExecContext(ctx, q,
				p.ID,
				p.UserID,
				p.Type,
				p.Stem,
				choices,
				p.CorrectAnswerIndex,
				p.CorrectAnswer,
				p.Guidelines,
				p.Explanation,
				classification,
				p.IsEditable,
			); err != nil {
				return struct{}{}, err
			}
		}
		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("problems inserted", "count", len(batch))
	return nil
}

func (r *repo) List(
	ctx context.Context,
	userID string,
	page pagination.PageRequest,
	filters Filters,
) (*pagination.PageResult[Problem], error) {
	page.Normalize(&r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		WhereSearch(page.SearchTerm(), "Stem")

	filters.Apply(qb)

	if sort := page.SortFields(); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count problems: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanProblem)
	if err != nil {
		return nil, fmt.Errorf("query problems: %w", err)
	}

	result := pagination.NewPageResult(items, page, total)
	return &result, nil
}

func (r *repo) Find(ctx context.Context, userID string, id uuid.UUID) (*Problem, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("UserID", userID).
		Build()

	p, err := repository.QueryOne(ctx, r.db, q, args, scanProblem)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &p, nil
}

func (r *repo) Stats(ctx context.Context, userID string) ([]StatsRow, error) {
	q := `
		SELECT
			p.problem_type,
			p.classification->>'depth1',
			p.classification->>'depth2',
			p.classification->>'depth3',
			p.classification->>'depth4',
			COUNT(*) FILTER (WHERE p.is_correct IS TRUE),
			COUNT(*) FILTER (WHERE p.is_correct IS FALSE),
			COUNT(*)
		FROM public.generated_problems p
		WHERE p.user_id = $1 AND p.stem NOT IN ($2, $3)
		GROUP BY 1, 2, 3, 4, 5
		ORDER BY 1, 2, 3, 4, 5`

	args := []any{userID, StemGenerationError, StemTimeoutError}
	return repository.QueryMany(ctx, r.db, q, args, scanStatsRow)
}

func (r *repo) Solve(ctx context.Context, userID string, problemID uuid.UUID, correct bool) error {
	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE generated_problems SET is_correct = $1 WHERE id = $2 AND user_id = $3",
			correct, problemID, userID,
		); err != nil {
			return struct{}{}, err
		}

		if _, err := tx.ExecContext(
			ctx,
			"INSERT INTO solve_history(id, user_id, problem_id, is_correct) VALUES ($1, $2, $3, $4)",
			uuid.New(), userID, problemID, correct,
		); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("problem solved", "id", problemID, "correct", correct)
	return nil
}

func (r *repo) queryPool(ctx context.Context, userID string, typ Type, stage Classification, limit int) ([]Problem, error) {
	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		WhereEquals("Type", string(typ)).
		Limit(limit)

	depths := stage.Depths()
	for i, field := range []string{"Depth1", "Depth2", "Depth3", "Depth4"} {
		if depths[i] != "" {
			qb.WhereEquals(field, depths[i])
		}
	}

	q, args := qb.Build()
	return repository.QueryMany(ctx, r.db, q, args, scanProblem)
}

func (r *repo) excludedIDs(ctx context.Context, userID string, criteria FetchCriteria) (map[uuid.UUID]struct{}, error) {
	excluded := make(map[uuid.UUID]struct{})

	var (
		q    string
		args []any
	)

	switch {
	case criteria.ExcludeSolved:
		q = "SELECT problem_id FROM solve_history WHERE user_id = $1"
		args = []any{userID}
	case criteria.ExcludeRecentDays > 0:
		cutoff := time.Now().AddDate(0, 0, -criteria.ExcludeRecentDays)
		q = "SELECT problem_id FROM solve_history WHERE user_id = $1 AND created_at >= $2"
		args = []any{userID, cutoff}
	default:
		return excluded, nil
	}

	ids, err := repository.QueryMany(ctx, r.db, q, args, func(s repository.Scanner) (uuid.UUID, error) {
		var id uuid.UUID
		err := s.Scan(&id)
		return id, err
	})
	if err != nil {
		return nil, err
	}

	for _, id := range ids {
		excluded[id] = struct{}{}
	}

	return excluded, nil
}
