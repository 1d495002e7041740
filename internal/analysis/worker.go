// Package analysis implements the background image analysis worker: it
// pulls uploaded sessions through the vision model and records the
// extracted problems.
package analysis

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/quizdeck/quizdeck/internal/inference"
	"github.com/quizdeck/quizdeck/internal/sessions"
	"github.com/quizdeck/quizdeck/pkg/lifecycle"
)

const (
	queueSize = 32
	workers   = 2
)

// ErrQueueFull indicates the analysis queue is at capacity.
var ErrQueueFull = errors.New("analysis queue full")

// System accepts sessions for background analysis. It implements
// sessions.Analyzer.
type System interface {
	sessions.Analyzer
	Start(lc *lifecycle.Coordinator) error
}

type worker struct {
	queue     chan uuid.UUID
	sessions  sessions.System
	inference inference.System
	model     string
	logger    *slog.Logger
}

// New creates an analysis worker system. The model name is recorded on
// completed sessions for provenance.
func New(sys sessions.System, inf inference.System, model string, logger *slog.Logger) System {
	return &worker{
		queue:     make(chan uuid.UUID, queueSize),
		sessions:  sys,
		inference: inf,
		model:     model,
		logger:    logger.With("system", "analysis"),
	}
}

func (w *worker) Start(lc *lifecycle.Coordinator) error {
	w.logger.Info("starting analysis workers", "workers", workers)

	for i := range workers {
		go w.run(lc.Context(), i)
	}

	return nil
}

func (w *worker) Submit(ctx context.Context, sessionID uuid.UUID) error {
	select {
	case w.queue <- sessionID:
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
		case sessionID := <-w.queue:
			w.process(ctx, logger, sessionID)
		}
	}
}

func (w *worker) process(ctx context.Context, logger *slog.Logger, sessionID uuid.UUID) {
	logger.Info("analyzing session", "session", sessionID)

	if err := w.sessions.MarkProcessing(ctx, sessionID); err != nil {
		logger.Error("mark processing failed", "session", sessionID, "error", err)
		return
	}

	data, contentType, err := w.sessions.DownloadImage(ctx, sessionID)
	if err != nil {
		w.fail(ctx, logger, sessionID, "download", err)
		return
	}

	response, err := w.inference.AnalyzeImage(ctx, contentType, data, analysisPrompt)
	if err != nil {
		w.fail(ctx, logger, sessionID, "analysis", err)
		return
	}

	extracted, err := parseAnalysis(inference.ExtractJSON(response), sessionID)
	if err != nil {
		w.fail(ctx, logger, sessionID, "parse", err)
		return
	}

	if err := w.sessions.CompleteAnalysis(ctx, sessionID, extracted, w.model); err != nil {
		w.fail(ctx, logger, sessionID, "persist", err)
		return
	}

	logger.Info("session analyzed", "session", sessionID, "problems", len(extracted))
}

func (w *worker) fail(ctx context.Context, logger *slog.Logger, sessionID uuid.UUID, stage string, cause error) {
	logger.Error("analysis failed", "session", sessionID, "stage", stage, "error", cause)

	if err := w.sessions.Fail(ctx, sessionID, stage, cause.Error()); err != nil {
		logger.Error("mark session failed errored", "session", sessionID, "error", err)
	}
}
