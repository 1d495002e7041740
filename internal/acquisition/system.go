// Package acquisition implements the problem acquisition flow: pool-first
// fulfillment with priority fallback, fire-and-forget generation of the
// shortfall, dual-channel completion watching, and a pure merge of both
// sources into one tagged result.
package acquisition

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/quizdeck/quizdeck/internal/generation"
	"github.com/quizdeck/quizdeck/internal/problems"
	"github.com/quizdeck/quizdeck/internal/realtime"
)

// Result is the outcome of one acquisition: the tagged problem list,
// summary counts, and per-type failure messages for types that timed out
// or failed. Partial success keeps everything collected.
type Result struct {
	Items    []Item                   `json:"items"`
	Summary  Summary                  `json:"summary"`
	Failures map[problems.Type]string `json:"failures,omitempty"`
}

// System defines the public contract for the acquisition flow.
type System interface {
	Handler() *Handler

	// Acquire fulfills a request spec from the pool and generation.
	// Validation and submission failures return an error with no result;
	// generation timeouts and failures after submission degrade to partial
	// results recorded in Result.Failures.
	Acquire(ctx context.Context, userID string, spec RequestSpec) (*Result, error)
}

type system struct {
	cfg       Config
	pool      problems.System
	generator generation.System
	bus       realtime.Bus
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates the acquisition system. The submit limiter enforces the
// inter-request delay the generation backend expects.
func New(
	cfg Config,
	pool problems.System,
	generator generation.System,
	bus realtime.Bus,
	logger *slog.Logger,
) System {
	return &system{
		cfg:       cfg,
		pool:      pool,
		generator: generator,
		bus:       bus,
		limiter:   rate.NewLimiter(rate.Every(cfg.SubmitIntervalDuration()), 1),
		logger:    logger.With("system", "acquisition"),
	}
}

func (s *system) Handler() *Handler {
	return NewHandler(s, s.logger)
}

func (s *system) Acquire(ctx context.Context, userID string, spec RequestSpec) (*Result, error) {
	if err := spec.Validate(s.cfg.MaxPerType); err != nil {
		return nil, err
	}

	types := spec.RequestedTypes()
	requested := make(map[problems.Type]int, len(types))
	for _, typ := range types {
		requested[typ] = spec.Counts[typ]
	}

	existing := s.fetchExisting(ctx, userID, spec, types)

	shortfalls := make(map[problems.Type]int, len(types))
	for _, typ := range types {
		shortfalls[typ] = Shortfall(requested[typ], len(existing[typ]))
	}

	// completion detection ignores anything created before this instant
	start := time.Now().UTC()

	if err := s.submitShortfalls(ctx, userID, spec, types, shortfalls); err != nil {
		return nil, err
	}

	outcomes := s.watchShortfalls(ctx, userID, types, shortfalls, start)

	generated := make(map[problems.Type][]problems.Problem, len(outcomes))
	failures := make(map[problems.Type]string)

	for typ, outcome := range outcomes {
		created, err := s.pool.GetByIDs(ctx, outcome.ProblemIDs)
		if err != nil {
			s.logger.Error("load generated problems failed", "type", typ, "error", err)
			failures[typ] = localize(msgGenerationFailed, spec.Language)
			continue
		}
		generated[typ] = created

		if outcome.Err != nil {
			failures[typ] = failureMessage(outcome.Err, spec.Language)
		}
	}

	items, summary := Merge(requested, existing, generated)

	result := &Result{Items: items, Summary: summary}
	if len(failures) > 0 {
		result.Failures = failures
	}

	s.logger.Info("acquisition complete",
		"user", userID,
		"existing", summary.ExistingCount,
		"generated", summary.NewlyGeneratedCount,
		"failures", len(failures),
	)

	return result, nil
}

// fetchExisting queries the pool per type. Query failures degrade to zero
// found so the shortfall covers the whole request.
func (s *system) fetchExisting(
	ctx context.Context,
	userID string,
	spec RequestSpec,
	types []problems.Type,
) map[problems.Type][]problems.Problem {
	existing := make(map[problems.Type][]problems.Problem, len(types))

	for _, typ := range types {
		criteria := problems.FetchCriteria{
			Classification:    spec.Classification,
			Type:              typ,
			Limit:             spec.Counts[typ],
			ExcludeSolved:     spec.ExcludeSolved,
			ExcludeRecentDays: spec.ExcludeRecentDays,
		}

		found, err := s.pool.FetchExisting(ctx, userID, criteria)
		if err != nil {
			s.logger.Warn("pool query failed, generating everything",
				"type", typ,
				"error", err,
			)
			continue
		}

		existing[typ] = found
	}

	return existing
}

// submitShortfalls issues one generation request per type with a positive
// shortfall, sequentially and throttled. Any submission failure aborts the
// whole flow before watching begins.
func (s *system) submitShortfalls(
	ctx context.Context,
	userID string,
	spec RequestSpec,
	types []problems.Type,
	shortfalls map[problems.Type]int,
) error {
	for _, typ := range types {
		count := shortfalls[typ]
		if count == 0 {
			continue
		}

		if err := s.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %s", ErrSubmitFailed, err)
		}

		req := generation.Request{
			UserID:         userID,
			Type:           typ,
			Classification: spec.Classification,
			Count:          count,
			Language:       spec.Language,
		}

		if err := s.generator.Submit(ctx, req); err != nil {
			return fmt.Errorf("%w: %s: %s", ErrSubmitFailed, typ, err)
		}

		s.logger.Info("generation submitted", "type", typ, "count", count)
	}

	return nil
}

// watchShortfalls runs one completion watch per shortfall type
// concurrently and collects their outcomes.
func (s *system) watchShortfalls(
	ctx context.Context,
	userID string,
	types []problems.Type,
	shortfalls map[problems.Type]int,
	start time.Time,
) map[problems.Type]watchOutcome {
	watched := make([]problems.Type, 0, len(types))
	for _, typ := range types {
		if shortfalls[typ] > 0 {
			watched = append(watched, typ)
		}
	}

	results := make([]watchOutcome, len(watched))

	var g errgroup.Group
	for i, typ := range watched {
		g.Go(func() error {
			results[i] = s.watchType(ctx, userID, typ, shortfalls[typ], start)
			return nil
		})
	}
	g.Wait()

	outcomes := make(map[problems.Type]watchOutcome, len(watched))
	for i, typ := range watched {
		outcomes[typ] = results[i]
	}

	return outcomes
}

func failureMessage(err error, language string) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		if genErr.Message != "" {
			return genErr.Message
		}
		return localize(msgGenerationFailed, language)
	}
	if errors.Is(err, ErrTimeout) {
		return localize(msgTimedOut, language)
	}
	return err.Error()
}
