package acquisition

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/problems"
)

// watchOutcome is the result of watching one type's generation: problem IDs
// in arrival order (failure markers excluded) and the terminal error, if
// any. A timeout or generation failure still carries the partial IDs.
type watchOutcome struct {
	ProblemIDs []uuid.UUID
	Err        error
}

// watchType waits until expected problems of the given type appear for the
// user, combining the push channel with a poll fallback.
//
// The push channel feeds from the realtime bus; events older than start or
// for other types are ignored. If the expected count has not arrived when
// the grace period ends, polling starts against the pool with a small
// clock-skew allowance, and releases after the poll window. A failure
// marker on either channel ends the watch with that failure; the hard
// timeout bounds the whole watch. Both channels tear down on every exit.
func (s *system) watchType(
	ctx context.Context,
	userID string,
	typ problems.Type,
	expected int,
	start time.Time,
) watchOutcome {
	logger := s.logger.With("type", typ, "expected", expected)

	seen := make(map[uuid.UUID]struct{})
	received := make([]uuid.UUID, 0, expected)

	record := func(id uuid.UUID) bool {
		if _, ok := seen[id]; ok {
			return false
		}
		seen[id] = struct{}{}
		received = append(received, id)
		return true
	}

	events, unsubscribe, err := s.bus.SubscribeProblems(ctx, userID)
	if err != nil {
		// degraded mode: the poll fallback still observes completions
		logger.Warn("push subscribe failed, relying on poll fallback", "error", err)
		events = nil
		unsubscribe = func() {}
	}
	defer unsubscribe()

	grace := time.NewTimer(s.cfg.PushGraceDuration())
	defer grace.Stop()

	hard := time.NewTimer(s.cfg.HardTimeoutDuration())
	defer hard.Stop()

	var (
		poll        *time.Ticker
		pollC       <-chan time.Time
		pollRelease <-chan time.Time
	)
	defer func() {
		if poll != nil {
			poll.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if event.ProblemType != string(typ) || event.CreatedAt.Before(start) {
				continue
			}
			if event.Stem == problems.StemGenerationError || event.Stem == problems.StemTimeoutError {
				return watchOutcome{received, &GenerationError{Message: event.Message}}
			}
			if record(event.ProblemID) && len(received) >= expected {
				return watchOutcome{received, nil}
			}

		case <-grace.C:
			if len(received) >= expected {
				continue
			}
			logger.Info("push grace elapsed, activating poll fallback", "received", len(received))
			poll = time.NewTicker(s.cfg.PollIntervalDuration())
			pollC = poll.C
			pollRelease = time.After(s.cfg.PollWindowDuration())

		case <-pollC:
			since := start.Add(-s.cfg.SkewBufferDuration())
			created, err := s.pool.CreatedSince(ctx, userID, []problems.Type{typ}, since)
			if err != nil {
				// transient: try again next interval
				logger.Warn("poll query failed", "error", err)
				continue
			}

			for _, p := range created {
				if p.IsErrorMarker() {
					message := ""
					if p.Explanation != nil {
						message = *p.Explanation
					}
					return watchOutcome{received, &GenerationError{Message: message}}
				}
				record(p.ID)
			}

			if len(received) >= expected {
				return watchOutcome{received, nil}
			}

		case <-pollRelease:
			poll.Stop()
			pollC = nil
			pollRelease = nil

		case <-hard.C:
			logger.Warn("watch hard timeout", "received", len(received))
			return watchOutcome{received, ErrTimeout}

		case <-ctx.Done():
			return watchOutcome{received, ctx.Err()}
		}
	}
}
