package problems

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/pkg/middleware"
	"github.com/quizdeck/quizdeck/pkg/pagination"
)

type stubSystem struct {
	find  func(ctx context.Context, userID string, id uuid.UUID) (*Problem, error)
	stats func(ctx context.Context, userID string) ([]StatsRow, error)
}

func (s *stubSystem) Handler() *Handler { return nil }

func (s *stubSystem) FetchExisting(context.Context, string, FetchCriteria) ([]Problem, error) {
	return nil, nil
}

func (s *stubSystem) CreatedSince(context.Context, string, []Type, time.Time) ([]Problem, error) {
	return nil, nil
}

func (s *stubSystem) GetByIDs(context.Context, []uuid.UUID) ([]Problem, error) {
	return nil, nil
}

func (s *stubSystem) InsertBatch(context.Context, []Problem) error { return nil }

func (s *stubSystem) List(context.Context, string, pagination.PageRequest, Filters) (*pagination.PageResult[Problem], error) {
	return nil, nil
}

func (s *stubSystem) Find(ctx context.Context, userID string, id uuid.UUID) (*Problem, error) {
	return s.find(ctx, userID, id)
}

func (s *stubSystem) Stats(ctx context.Context, userID string) ([]StatsRow, error) {
	return s.stats(ctx, userID)
}

func (s *stubSystem) Solve(context.Context, string, uuid.UUID, bool) error { return nil }

func testHandler(sys System) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(sys, logger, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func authedRequest(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestFindScopedToCaller(t *testing.T) {
	owned := Problem{ID: uuid.New(), UserID: "owner", Type: TypeMultipleChoice, Stem: "stem"}

	sys := &stubSystem{
		find: func(_ context.Context, userID string, id uuid.UUID) (*Problem, error) {
			if userID != owned.UserID || id != owned.ID {
				return nil, ErrNotFound
			}
			return &owned, nil
		},
	}
	h := testHandler(sys)

	tests := []struct {
		name       string
		caller     string
		wantStatus int
	}{
		{"owner sees the problem", "owner", http.StatusOK},
		{"other user gets not found", "intruder", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest("GET", "/problems/"+owned.ID.String(), tc.caller)
			req.SetPathValue("id", owned.ID.String())

			rec := httptest.NewRecorder()
			h.Find(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestStatsEndpoint(t *testing.T) {
	var gotUser string

	sys := &stubSystem{
		stats: func(_ context.Context, userID string) ([]StatsRow, error) {
			gotUser = userID
			return statsFixture(), nil
		},
	}
	h := testHandler(sys)

	req := authedRequest("GET", "/problems/stats?depth=1", "u1")
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUser != "u1" {
		t.Fatalf("stats queried for %q, want %q", gotUser, "u1")
	}

	var rows []StatsRow
	if err := json.NewDecoder(rec.Body).Decode(&rows); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2 after depth-1 rollup", len(rows))
	}
}

func TestStatsRejectsBadDepth(t *testing.T) {
	sys := &stubSystem{
		stats: func(context.Context, string) ([]StatsRow, error) {
			return statsFixture(), nil
		},
	}
	h := testHandler(sys)

	req := authedRequest("GET", "/problems/stats?depth=9", "u1")
	rec := httptest.NewRecorder()
	h.Stats(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
