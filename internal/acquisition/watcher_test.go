package acquisition

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/problems"
	"github.com/quizdeck/quizdeck/internal/realtime"
	"github.com/quizdeck/quizdeck/pkg/lifecycle"
	"github.com/quizdeck/quizdeck/pkg/pagination"
)

type fakeBus struct {
	events       chan realtime.ProblemCreated
	subscribeErr error
	unsubscribed atomic.Bool
}

func (b *fakeBus) Start(*lifecycle.Coordinator) error { return nil }

func (b *fakeBus) PublishProblemCreated(context.Context, realtime.ProblemCreated) error {
	return nil
}

func (b *fakeBus) SubscribeProblems(context.Context, string) (<-chan realtime.ProblemCreated, func(), error) {
	if b.subscribeErr != nil {
		return nil, nil, b.subscribeErr
	}
	return b.events, func() { b.unsubscribed.Store(true) }, nil
}

type stubPool struct {
	createdSince func(ctx context.Context, userID string, types []problems.Type, since time.Time) ([]problems.Problem, error)
}

func (p *stubPool) Handler() *problems.Handler { return nil }

func (p *stubPool) FetchExisting(context.Context, string, problems.FetchCriteria) ([]problems.Problem, error) {
	return nil, nil
}

func (p *stubPool) CreatedSince(ctx context.Context, userID string, types []problems.Type, since time.Time) ([]problems.Problem, error) {
	if p.createdSince == nil {
		return nil, nil
	}
	return p.createdSince(ctx, userID, types, since)
}

func (p *stubPool) GetByIDs(context.Context, []uuid.UUID) ([]problems.Problem, error) {
	return nil, nil
}

func (p *stubPool) InsertBatch(context.Context, []problems.Problem) error { return nil }

func (p *stubPool) List(context.Context, string, pagination.PageRequest, problems.Filters) (*pagination.PageResult[problems.Problem], error) {
	return nil, nil
}

func (p *stubPool) Find(context.Context, string, uuid.UUID) (*problems.Problem, error) {
	return nil, nil
}

func (p *stubPool) Stats(context.Context, string) ([]problems.StatsRow, error) {
	return nil, nil
}

func (p *stubPool) Solve(context.Context, string, uuid.UUID, bool) error { return nil }

func watchSystem(bus realtime.Bus, pool problems.System) *system {
	return &system{
		cfg: Config{
			PushGrace:      "40ms",
			PollInterval:   "20ms",
			PollWindow:     "200ms",
			HardTimeout:    "500ms",
			SkewBuffer:     "1ms",
			SubmitInterval: "1ms",
			MaxPerType:     50,
		},
		pool:   pool,
		bus:    bus,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func pushEvent(id uuid.UUID, typ problems.Type, createdAt time.Time) realtime.ProblemCreated {
	return realtime.ProblemCreated{
		ProblemID:   id,
		ProblemType: string(typ),
		UserID:      "u1",
		Stem:        "stem",
		CreatedAt:   createdAt,
	}
}

func TestWatchSatisfiedByPushWithDedup(t *testing.T) {
	start := time.Now().UTC().Add(-time.Minute)
	now := time.Now().UTC()

	first := uuid.New()
	second := uuid.New()

	bus := &fakeBus{events: make(chan realtime.ProblemCreated, 5)}
	bus.events <- pushEvent(first, problems.TypeMultipleChoice, now)
	bus.events <- pushEvent(first, problems.TypeMultipleChoice, now)
	bus.events <- pushEvent(uuid.New(), problems.TypeEssay, now)
	bus.events <- pushEvent(uuid.New(), problems.TypeMultipleChoice, start.Add(-time.Hour))
	bus.events <- pushEvent(second, problems.TypeMultipleChoice, now)

	s := watchSystem(bus, &stubPool{})
	outcome := s.watchType(context.Background(), "u1", problems.TypeMultipleChoice, 2, start)

	if outcome.Err != nil {
		t.Fatalf("watch error = %v, want nil", outcome.Err)
	}
	if len(outcome.ProblemIDs) != 2 {
		t.Fatalf("len(ProblemIDs) = %d, want 2", len(outcome.ProblemIDs))
	}
	if outcome.ProblemIDs[0] != first || outcome.ProblemIDs[1] != second {
		t.Fatalf("ProblemIDs = %v, want [%s %s]", outcome.ProblemIDs, first, second)
	}
	if !bus.unsubscribed.Load() {
		t.Fatal("push channel not unsubscribed on exit")
	}
}

func TestWatchErrorMarkerFromPushAborts(t *testing.T) {
	start := time.Now().UTC().Add(-time.Minute)
	now := time.Now().UTC()

	good := uuid.New()
	marker := pushEvent(uuid.New(), problems.TypeShortAnswer, now)
	marker.Stem = problems.StemGenerationError
	marker.Message = "model failure"

	bus := &fakeBus{events: make(chan realtime.ProblemCreated, 2)}
	bus.events <- pushEvent(good, problems.TypeShortAnswer, now)
	bus.events <- marker

	s := watchSystem(bus, &stubPool{})
	outcome := s.watchType(context.Background(), "u1", problems.TypeShortAnswer, 3, start)

	var genErr *GenerationError
	if !errors.As(outcome.Err, &genErr) {
		t.Fatalf("watch error = %v, want GenerationError", outcome.Err)
	}
	if genErr.Message != "model failure" {
		t.Fatalf("message = %q, want %q", genErr.Message, "model failure")
	}
	if len(outcome.ProblemIDs) != 1 || outcome.ProblemIDs[0] != good {
		t.Fatalf("partial ProblemIDs = %v, want [%s]", outcome.ProblemIDs, good)
	}
	if !bus.unsubscribed.Load() {
		t.Fatal("push channel not unsubscribed on exit")
	}
}

func TestWatchPollFallbackAfterGrace(t *testing.T) {
	start := time.Now().UTC()

	rows := []problems.Problem{
		{ID: uuid.New(), UserID: "u1", Type: problems.TypeTrueFalse, Stem: "a"},
		{ID: uuid.New(), UserID: "u1", Type: problems.TypeTrueFalse, Stem: "b"},
	}

	var gotSince atomic.Value
	pool := &stubPool{
		createdSince: func(_ context.Context, _ string, _ []problems.Type, since time.Time) ([]problems.Problem, error) {
			gotSince.Store(since)
			return rows, nil
		},
	}

	bus := &fakeBus{events: make(chan realtime.ProblemCreated)}
	s := watchSystem(bus, pool)
	outcome := s.watchType(context.Background(), "u1", problems.TypeTrueFalse, 2, start)

	if outcome.Err != nil {
		t.Fatalf("watch error = %v, want nil", outcome.Err)
	}
	if len(outcome.ProblemIDs) != 2 {
		t.Fatalf("len(ProblemIDs) = %d, want 2", len(outcome.ProblemIDs))
	}

	since, ok := gotSince.Load().(time.Time)
	if !ok {
		t.Fatal("poll never queried the pool")
	}
	if !since.Before(start) {
		t.Fatalf("poll since = %v, want before start %v (skew buffer)", since, start)
	}
}

func TestWatchCrossChannelDedup(t *testing.T) {
	start := time.Now().UTC().Add(-time.Minute)
	now := time.Now().UTC()

	shared := uuid.New()
	fresh := uuid.New()

	bus := &fakeBus{events: make(chan realtime.ProblemCreated, 1)}
	bus.events <- pushEvent(shared, problems.TypeEssay, now)

	pool := &stubPool{
		createdSince: func(context.Context, string, []problems.Type, time.Time) ([]problems.Problem, error) {
			return []problems.Problem{
				{ID: shared, UserID: "u1", Type: problems.TypeEssay, Stem: "a"},
				{ID: fresh, UserID: "u1", Type: problems.TypeEssay, Stem: "b"},
			}, nil
		},
	}

	s := watchSystem(bus, pool)
	outcome := s.watchType(context.Background(), "u1", problems.TypeEssay, 2, start)

	if outcome.Err != nil {
		t.Fatalf("watch error = %v, want nil", outcome.Err)
	}
	if len(outcome.ProblemIDs) != 2 {
		t.Fatalf("len(ProblemIDs) = %d, want 2 (same ID via both channels counts once)", len(outcome.ProblemIDs))
	}
	if outcome.ProblemIDs[0] != shared || outcome.ProblemIDs[1] != fresh {
		t.Fatalf("ProblemIDs = %v, want [%s %s]", outcome.ProblemIDs, shared, fresh)
	}
}

func TestWatchErrorMarkerFromPollAborts(t *testing.T) {
	start := time.Now().UTC()
	message := "timed out upstream"

	pool := &stubPool{
		createdSince: func(context.Context, string, []problems.Type, time.Time) ([]problems.Problem, error) {
			return []problems.Problem{
				{ID: uuid.New(), UserID: "u1", Type: problems.TypeEssay, Stem: problems.StemTimeoutError, Explanation: &message},
			}, nil
		},
	}

	bus := &fakeBus{events: make(chan realtime.ProblemCreated)}
	s := watchSystem(bus, pool)
	outcome := s.watchType(context.Background(), "u1", problems.TypeEssay, 1, start)

	var genErr *GenerationError
	if !errors.As(outcome.Err, &genErr) {
		t.Fatalf("watch error = %v, want GenerationError", outcome.Err)
	}
	if genErr.Message != message {
		t.Fatalf("message = %q, want %q", genErr.Message, message)
	}
}

func TestWatchHardTimeoutReturnsPartial(t *testing.T) {
	start := time.Now().UTC().Add(-time.Minute)
	now := time.Now().UTC()

	only := uuid.New()

	bus := &fakeBus{events: make(chan realtime.ProblemCreated, 1)}
	bus.events <- pushEvent(only, problems.TypeMultipleChoice, now)

	pool := &stubPool{
		createdSince: func(context.Context, string, []problems.Type, time.Time) ([]problems.Problem, error) {
			return []problems.Problem{
				{ID: only, UserID: "u1", Type: problems.TypeMultipleChoice, Stem: "a"},
			}, nil
		},
	}

	s := watchSystem(bus, pool)
	outcome := s.watchType(context.Background(), "u1", problems.TypeMultipleChoice, 2, start)

	if !errors.Is(outcome.Err, ErrTimeout) {
		t.Fatalf("watch error = %v, want ErrTimeout", outcome.Err)
	}
	if len(outcome.ProblemIDs) != 1 || outcome.ProblemIDs[0] != only {
		t.Fatalf("partial ProblemIDs = %v, want [%s]", outcome.ProblemIDs, only)
	}
	if !bus.unsubscribed.Load() {
		t.Fatal("push channel not unsubscribed on exit")
	}
}

func TestWatchSubscribeFailureFallsBackToPoll(t *testing.T) {
	start := time.Now().UTC()

	row := problems.Problem{ID: uuid.New(), UserID: "u1", Type: problems.TypeShortAnswer, Stem: "a"}
	pool := &stubPool{
		createdSince: func(context.Context, string, []problems.Type, time.Time) ([]problems.Problem, error) {
			return []problems.Problem{row}, nil
		},
	}

	bus := &fakeBus{subscribeErr: errors.New("redis unavailable")}
	s := watchSystem(bus, pool)
	outcome := s.watchType(context.Background(), "u1", problems.TypeShortAnswer, 1, start)

	if outcome.Err != nil {
		t.Fatalf("watch error = %v, want nil", outcome.Err)
	}
	if len(outcome.ProblemIDs) != 1 || outcome.ProblemIDs[0] != row.ID {
		t.Fatalf("ProblemIDs = %v, want [%s]", outcome.ProblemIDs, row.ID)
	}
}
