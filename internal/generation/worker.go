// Package generation implements the asynchronous problem generation worker:
// fire-and-forget submissions, model calls with bounded retry, and
// persistence of results or failure markers to the problem pool.
package generation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/inference"
	"github.com/quizdeck/quizdeck/internal/problems"
	"github.com/quizdeck/quizdeck/internal/realtime"
	"github.com/quizdeck/quizdeck/pkg/lifecycle"
)

// Request describes one generation job: produce Count problems of Type for
// the given classification path, owned by UserID. Language selects the
// explanation language; defaults to English.
type Request struct {
	UserID         string
	Type           problems.Type
	Classification problems.Classification
	Count          int
	Language       string
}

// ErrQueueFull indicates the submission queue is at capacity.
var ErrQueueFull = errors.New("generation queue full")

// System accepts generation requests and processes them in the background.
// Submit acknowledges enqueueing only; completion is observable through the
// problem pool and the realtime bus.
type System interface {
	Start(lc *lifecycle.Coordinator) error
	Submit(ctx context.Context, req Request) error
}

type worker struct {
	cfg       Config
	queue     chan Request
	pool      problems.System
	inference inference.System
	bus       realtime.Bus
	logger    *slog.Logger
}

// New creates a generation worker system.
func New(
	cfg Config,
	pool problems.System,
	inf inference.System,
	bus realtime.Bus,
	logger *slog.Logger,
) System {
	return &worker{
		cfg:       cfg,
		queue:     make(chan Request, cfg.QueueSize),
		pool:      pool,
		inference: inf,
		bus:       bus,
		logger:    logger.With("system", "generation"),
	}
}

func (w *worker) Start(lc *lifecycle.Coordinator) error {
	w.logger.Info("starting generation workers", "workers", w.cfg.Workers)

	for i := range w.cfg.Workers {
		go w.run(lc.Context(), i)
	}

	return nil
}

func (w *worker) Submit(ctx context.Context, req Request) error {
	if req.UserID == "" || req.Count <= 0 {
		return fmt.Errorf("invalid generation request")
	}
	if !req.Type.Valid() {
		return problems.ErrInvalidType
	}
	if !req.Classification.Contiguous() {
		return problems.ErrInvalidClassification
	}

	select {
	case w.queue <- req:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (w *worker) run(ctx context.Context, id int) {
	logger := w.logger.With("worker", id)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-w.queue:
			w.process(ctx, logger, req)
		}
	}
}

func (w *worker) process(ctx context.Context, logger *slog.Logger, req Request) {
	logger.Info("generating problems",
		"user", req.UserID,
		"type", req.Type,
		"count", req.Count,
	)

	batch, err := w.generate(ctx, req)
	if err != nil {
		logger.Error("generation failed", "user", req.UserID, "type", req.Type, "error", err)
		w.recordFailure(ctx, logger, req, err)
		return
	}

	if err := w.pool.InsertBatch(ctx, batch); err != nil {
		logger.Error("persist batch failed", "user", req.UserID, "error", err)
		w.recordFailure(ctx, logger, req, err)
		return
	}

	for _, p := range batch {
		w.announce(ctx, logger, p)
	}
}

// generate calls the model with exponential backoff, retrying only
// transient failures.
func (w *worker) generate(ctx context.Context, req Request) ([]problems.Problem, error) {
	prompt := buildPrompt(req.Type, req.Classification, req.Count, req.Language)

	var lastErr error
	for attempt := 1; attempt <= w.cfg.MaxAttempts; attempt++ {
		response, err := w.inference.GenerateText(ctx, prompt)
		if err == nil {
			return parseResponse(inference.ExtractJSON(response), req.UserID, req.Type, req.Classification)
		}

		lastErr = err
		if !inference.IsRetryable(err) || attempt == w.cfg.MaxAttempts {
			break
		}

		backoff := w.cfg.BaseBackoffDuration() * (1 << (attempt - 1))
		w.logger.Warn("transient generation error, backing off",
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, lastErr
}

// recordFailure writes an error marker row to the pool so watchers observe
// the terminal failure, then announces it like any other completion.
func (w *worker) recordFailure(ctx context.Context, logger *slog.Logger, req Request, cause error) {
	stem := problems.StemGenerationError
	if errors.Is(cause, context.DeadlineExceeded) {
		stem = problems.StemTimeoutError
	}

	message := cause.Error()
	marker := problems.Problem{
		ID:             uuid.New(),
		UserID:         req.UserID,
		Type:           req.Type,
		Stem:           stem,
		Explanation:    &message,
		Classification: req.Classification,
	}

	if err := w.pool.InsertBatch(ctx, []problems.Problem{marker}); err != nil {
		logger.Error("persist failure marker failed", "user", req.UserID, "error", err)
		return
	}

	w.announce(ctx, logger, marker)
}

func (w *worker) announce(ctx context.Context, logger *slog.Logger, p problems.Problem) {
	event := realtime.ProblemCreated{
		ProblemID:   p.ID,
		ProblemType: string(p.Type),
		UserID:      p.UserID,
		Stem:        p.Stem,
		CreatedAt:   time.Now().UTC(),
	}

	if p.IsErrorMarker() && p.Explanation != nil {
		event.Message = *p.Explanation
	}

	if err := w.bus.PublishProblemCreated(ctx, event); err != nil {
		// watchers fall back to polling the pool
		logger.Warn("publish problem event failed", "problem", p.ID, "error", err)
	}
}
