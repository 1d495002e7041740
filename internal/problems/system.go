package problems

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/pkg/pagination"
)

// FetchCriteria describes an existing-pool query for a single problem type.
type FetchCriteria struct {
	Classification    Classification
	Type              Type
	Limit             int
	ExcludeSolved     bool
	ExcludeRecentDays int
}

// System defines the public contract for problem domain operations.
type System interface {
	Handler() *Handler

	// FetchExisting queries the user's pool for problems matching the
	// criteria, widening the classification match when the exact path
	// yields too few results. Exclusion filters and error markers are
	// applied client-side. Returns at most Limit problems.
	FetchExisting(ctx context.Context, userID string, criteria FetchCriteria) ([]Problem, error)

	// CreatedSince returns the user's problems of the given types created
	// at or after the given instant, oldest first. Error marker rows are
	// included so callers observe failed generations.
	CreatedSince(ctx context.Context, userID string, types []Type, since time.Time) ([]Problem, error)

	// GetByIDs returns problems in the order of the given IDs. Missing IDs
	// are skipped.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Problem, error)

	// InsertBatch persists a batch of generated problems.
	InsertBatch(ctx context.Context, batch []Problem) error

	List(ctx context.Context, userID string, page pagination.PageRequest, filters Filters) (*pagination.PageResult[Problem], error)

	// Find returns one of the user's problems. Problems owned by other
	// users are not found.
	Find(ctx context.Context, userID string, id uuid.UUID) (*Problem, error)

	// Stats aggregates the user's answered and unanswered problems into
	// correct/incorrect/total counts per type and classification path.
	Stats(ctx context.Context, userID string) ([]StatsRow, error)

	// Solve records a solve attempt in the user's history and updates the
	// problem's correctness flag.
	Solve(ctx context.Context, userID string, problemID uuid.UUID, correct bool) error
}
