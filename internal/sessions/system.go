package sessions

import (
	"context"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/pkg/pagination"
)

// System defines the public contract for session domain operations.
type System interface {
	Handler(analyzer Analyzer, maxUploadSize int64) *Handler

	// Create uploads the image to blob storage and registers a pending
	// session.
	Create(ctx context.Context, cmd CreateCommand) (*Session, error)

	// Find returns one of the user's sessions. Sessions owned by other
	// users are not found.
	Find(ctx context.Context, userID string, id uuid.UUID) (*Session, error)

	ListForUser(ctx context.Context, userID string) ([]Session, error)

	// List returns a page of the user's sessions, optionally filtered by
	// status.
	List(ctx context.Context, userID string, page pagination.PageRequest, status *string) (*pagination.PageResult[Session], error)

	// Delete removes a session row and its stored image. Extracted problems
	// go with the row.
	Delete(ctx context.Context, userID string, id uuid.UUID) error

	// BoardFor returns the user's sessions partitioned into review board
	// buckets.
	BoardFor(ctx context.Context, userID string) (*Board, error)

	// Label marks a completed session as reviewed by its owner.
	Label(ctx context.Context, userID string, id uuid.UUID) error

	// ExtractedProblems returns the problems extracted from one of the
	// user's sessions, in sequence order.
	ExtractedProblems(ctx context.Context, userID string, sessionID uuid.UUID) ([]ExtractedProblem, error)

	// Worker-facing lifecycle transitions.
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	CompleteAnalysis(ctx context.Context, id uuid.UUID, extracted []ExtractedProblem, model string) error
	Fail(ctx context.Context, id uuid.UUID, stage, message string) error

	// DownloadImage returns the session's image bytes and content type.
	DownloadImage(ctx context.Context, id uuid.UUID) ([]byte, string, error)
}
