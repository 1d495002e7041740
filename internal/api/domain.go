package api

import (
	"fmt"

	"github.com/quizdeck/quizdeck/internal/acquisition"
	"github.com/quizdeck/quizdeck/internal/analysis"
	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/generation"
	"github.com/quizdeck/quizdeck/internal/problems"
	"github.com/quizdeck/quizdeck/internal/sessions"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Problems    problems.System
	Sessions    sessions.System
	Analysis    analysis.System
	Generation  generation.System
	Acquisition acquisition.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(cfg *config.Config, runtime *Runtime) *Domain {
	problemsSystem := problems.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	sessionsSystem := sessions.New(
		runtime.Database.Connection(),
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	analysisSystem := analysis.New(
		sessionsSystem,
		runtime.Inference,
		cfg.Inference.AnalysisModel,
		runtime.Logger,
	)

	generationSystem := generation.New(
		cfg.Generation,
		problemsSystem,
		runtime.Inference,
		runtime.Realtime,
		runtime.Logger,
	)

	acquisitionSystem := acquisition.New(
		cfg.Acquisition,
		problemsSystem,
		generationSystem,
		runtime.Realtime,
		runtime.Logger,
	)

	return &Domain{
		Problems:    problemsSystem,
		Sessions:    sessionsSystem,
		Analysis:    analysisSystem,
		Generation:  generationSystem,
		Acquisition: acquisitionSystem,
	}
}

// Start launches the background worker pools with the runtime lifecycle.
func (d *Domain) Start(runtime *Runtime) error {
	if err := d.Analysis.Start(runtime.Lifecycle); err != nil {
		return fmt.Errorf("analysis start failed: %w", err)
	}
	if err := d.Generation.Start(runtime.Lifecycle); err != nil {
		return fmt.Errorf("generation start failed: %w", err)
	}
	return nil
}
