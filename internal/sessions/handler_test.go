package sessions

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/pkg/middleware"
	"github.com/quizdeck/quizdeck/pkg/pagination"
)

type stubSystem struct {
	find      func(ctx context.Context, userID string, id uuid.UUID) (*Session, error)
	extracted func(ctx context.Context, userID string, sessionID uuid.UUID) ([]ExtractedProblem, error)
}

func (s *stubSystem) Handler(Analyzer, int64) *Handler { return nil }

func (s *stubSystem) Create(context.Context, CreateCommand) (*Session, error) { return nil, nil }

func (s *stubSystem) Find(ctx context.Context, userID string, id uuid.UUID) (*Session, error) {
	return s.find(ctx, userID, id)
}

func (s *stubSystem) ListForUser(context.Context, string) ([]Session, error) { return nil, nil }

func (s *stubSystem) List(context.Context, string, pagination.PageRequest, *string) (*pagination.PageResult[Session], error) {
	return nil, nil
}

func (s *stubSystem) Delete(context.Context, string, uuid.UUID) error { return nil }

func (s *stubSystem) BoardFor(context.Context, string) (*Board, error) { return nil, nil }

func (s *stubSystem) Label(context.Context, string, uuid.UUID) error { return nil }

func (s *stubSystem) ExtractedProblems(ctx context.Context, userID string, sessionID uuid.UUID) ([]ExtractedProblem, error) {
	return s.extracted(ctx, userID, sessionID)
}

func (s *stubSystem) MarkProcessing(context.Context, uuid.UUID) error { return nil }

func (s *stubSystem) CompleteAnalysis(context.Context, uuid.UUID, []ExtractedProblem, string) error {
	return nil
}

func (s *stubSystem) Fail(context.Context, uuid.UUID, string, string) error { return nil }

func (s *stubSystem) DownloadImage(context.Context, uuid.UUID) ([]byte, string, error) {
	return nil, "", nil
}

func testHandler(sys System) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(sys, nil, logger, 1<<20, pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func authedRequest(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	return req.WithContext(middleware.WithUserID(req.Context(), userID))
}

func TestFindScopedToCaller(t *testing.T) {
	owned := Session{ID: uuid.New(), UserID: "owner", Status: StatusCompleted}

	sys := &stubSystem{
		find: func(_ context.Context, userID string, id uuid.UUID) (*Session, error) {
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
		{"owner sees the session", "owner", http.StatusOK},
		{"other user gets not found", "intruder", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest("GET", "/sessions/"+owned.ID.String(), tc.caller)
			req.SetPathValue("id", owned.ID.String())

			rec := httptest.NewRecorder()
			h.Find(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}

func TestExtractedProblemsScopedToCaller(t *testing.T) {
	sessionID := uuid.New()

	sys := &stubSystem{
		extracted: func(_ context.Context, userID string, id uuid.UUID) ([]ExtractedProblem, error) {
			if userID != "owner" || id != sessionID {
				return nil, ErrNotFound
			}
			return []ExtractedProblem{{ID: uuid.New(), SessionID: id, Seq: 1, Content: "item"}}, nil
		},
	}
	h := testHandler(sys)

	tests := []struct {
		name       string
		caller     string
		wantStatus int
	}{
		{"owner sees extracted problems", "owner", http.StatusOK},
		{"other user gets not found", "intruder", http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := authedRequest("GET", "/sessions/"+sessionID.String()+"/problems", tc.caller)
			req.SetPathValue("id", sessionID.String())

			rec := httptest.NewRecorder()
			h.Problems(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tc.wantStatus)
			}
		})
	}
}
