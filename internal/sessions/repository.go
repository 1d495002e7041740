package sessions

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/pkg/pagination"
	"github.com/quizdeck/quizdeck/pkg/query"
	"github.com/quizdeck/quizdeck/pkg/repository"
	"github.com/quizdeck/quizdeck/pkg/storage"
)

type repo struct {
	db         *sql.DB
	storage    storage.System
	logger     *slog.Logger
	pagination pagination.Config
}

// New creates a session repository implementing the System interface.
func New(db *sql.DB, store storage.System, logger *slog.Logger, pagination pagination.Config) System {
	return &repo{
		db:         db,
		storage:    store,
		logger:     logger.With("system", "sessions"),
		pagination: pagination,
	}
}

func (r *repo) Handler(analyzer Analyzer, maxUploadSize int64) *Handler {
	return NewHandler(r, analyzer, r.logger, maxUploadSize, r.pagination)
}

func (r *repo) Create(ctx context.Context, cmd CreateCommand) (*Session, error) {
	id := uuid.New()
	key := buildImageKey(id, sanitizeFilename(cmd.Filename))

	if err := r.storage.Upload(ctx, key, bytes.NewReader(cmd.Data), cmd.ContentType); err != nil {
		return nil, fmt.Errorf("upload session image: %w", err)
	}

	q := fmt.Sprintf(`
		INSERT INTO sessions(id, user_id, image_key, content_type, page_count)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s`, returningColumns())

	insertArgs := []any{id, cmd.UserID, key, cmd.ContentType, cmd.PageCount}

	session, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (Session, error) {
		return repository.QueryOne(ctx, tx, q, insertArgs, scanSession)
	})

	if err != nil {
		if delErr := r.storage.Delete(ctx, key); delErr != nil {
			r.logger.Warn("compensating image delete failed", "key", key, "error", delErr)
		}
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("session created", "id", session.ID, "user", session.UserID)
	return &session, nil
}

func (r *repo) Find(ctx context.Context, userID string, id uuid.UUID) (*Session, error) {
	q, args := query.
		NewBuilder(projection).
		WhereEquals("ID", id).
		WhereEquals("UserID", userID).
		Build()

	session, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &session, nil
}

// findByID loads a session without owner scoping. Worker-facing paths only;
// user-facing reads go through Find.
func (r *repo) findByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	session, err := repository.QueryOne(ctx, r.db, q, args, scanSession)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &session, nil
}

func (r *repo) ListForUser(ctx context.Context, userID string) ([]Session, error) {
	q, args := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		Build()

	return repository.QueryMany(ctx, r.db, q, args, scanSession)
}

func (r *repo) List(
	ctx context.Context,
	userID string,
	page pagination.PageRequest,
	status *string,
) (*pagination.PageResult[Session], error) {
	page.Normalize(&r.pagination)

	qb := query.
		NewBuilder(projection, defaultSort).
		WhereEquals("UserID", userID).
		WhereEquals("Status", status)

	if sort := page.SortFields(); len(sort) > 0 {
		qb.OrderByFields(sort)
	}

	countSQL, countArgs := qb.BuildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}

	pageSQL, pageArgs := qb.BuildPage(page.Page, page.PageSize)
	items, err := repository.QueryMany(ctx, r.db, pageSQL, pageArgs, scanSession)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	result := pagination.NewPageResult(items, page, total)
	return &result, nil
}

func (r *repo) Delete(ctx context.Context, userID string, id uuid.UUID) error {
	session, err := r.Find(ctx, userID, id)
	if err != nil {
		return err
	}

	err = repository.ExecExpectOne(
		ctx, r.db,
		"DELETE FROM sessions WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	if delErr := r.storage.Delete(ctx, session.ImageKey); delErr != nil {
		r.logger.Warn("session image delete failed", "key", session.ImageKey, "error", delErr)
	}

	r.logger.Info("session deleted", "id", id)
	return nil
}

func (r *repo) BoardFor(ctx context.Context, userID string) (*Board, error) {
	sessions, err := r.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	board := Partition(sessions, time.Now())
	return &board, nil
}

func (r *repo) Label(ctx context.Context, userID string, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE sessions SET status = $1, updated_at = now()
		 WHERE id = $2 AND user_id = $3 AND status = $4`,
		StatusLabeled, id, userID, StatusCompleted,
	)
	if err != nil {
		if _, findErr := r.Find(ctx, userID, id); findErr != nil {
			return findErr
		}
		return ErrNotReviewable
	}

	r.logger.Info("session labeled", "id", id)
	return nil
}

func (r *repo) ExtractedProblems(ctx context.Context, userID string, sessionID uuid.UUID) ([]ExtractedProblem, error) {
	if _, err := r.Find(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	q := `
		SELECT id, session_id, seq, content, classification, created_at
		FROM session_problems
		WHERE session_id = $1
		ORDER BY seq`

	return repository.QueryMany(ctx, r.db, q, []any{sessionID}, scanExtracted)
}

func (r *repo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		"UPDATE sessions SET status = $1, updated_at = now() WHERE id = $2",
		StatusProcessing, id,
	)
	return repository.MapError(err, ErrNotFound, ErrDuplicate)
}

func (r *repo) CompleteAnalysis(ctx context.Context, id uuid.UUID, extracted []ExtractedProblem, model string) error {
	insert := `
		INSERT INTO session_problems(id, session_id, seq, content, classification)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		for _, p := range extracted {
			classification, err := json.Marshal(p.Classification)
			if err != nil {
				return struct{}{}, fmt.Errorf("marshal classification: %w", err)
			}

			if _, err := tx.ExecContext(ctx, insert,
				p.ID, id, p.Seq, p.Content, classification,
			); err != nil {
				return struct{}{}, err
			}
		}

		if err := repository.ExecExpectOne(
			ctx, tx,
			"UPDATE sessions SET status = $1, analysis_model = $2, updated_at = now() WHERE id = $3",
			StatusCompleted, model, id,
		); err != nil {
			return struct{}{}, err
		}

		return struct{}{}, nil
	})

	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Info("session analysis completed", "id", id, "problems", len(extracted))
	return nil
}

func (r *repo) Fail(ctx context.Context, id uuid.UUID, stage, message string) error {
	err := repository.ExecExpectOne(
		ctx, r.db,
		`UPDATE sessions SET status = $1, failure_stage = $2, failure_message = $3, updated_at = now()
		 WHERE id = $4`,
		StatusFailed, stage, message, id,
	)
	if err != nil {
		return repository.MapError(err, ErrNotFound, ErrDuplicate)
	}

	r.logger.Warn("session failed", "id", id, "stage", stage, "message", message)
	return nil
}

func (r *repo) DownloadImage(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	session, err := r.findByID(ctx, id)
	if err != nil {
		return nil, "", err
	}

	reader, err := r.storage.Download(ctx, session.ImageKey)
	if err != nil {
		return nil, "", fmt.Errorf("download session image: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("read session image: %w", err)
	}

	return data, session.ContentType, nil
}

// returningColumns matches scanSession's column order; a fresh session has
// no extracted problems yet.
func returningColumns() string {
	return `id, user_id, image_key, content_type, page_count, status,
		failure_stage, failure_message, analysis_model, created_at, updated_at,
		0 AS problem_count`
}

func buildImageKey(id uuid.UUID, filename string) string {
	return fmt.Sprintf("sessions/%s/%s", id, filename)
}

func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	if name == "." || name == "" {
		name = "upload"
	}
	return url.PathEscape(name)
}
