// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, realtime,
// inference) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/inference"
	"github.com/quizdeck/quizdeck/internal/realtime"
	"github.com/quizdeck/quizdeck/pkg/database"
	"github.com/quizdeck/quizdeck/pkg/lifecycle"
	"github.com/quizdeck/quizdeck/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, file storage, the realtime bus, and the
// inference client.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Realtime  realtime.Bus
	Inference inference.System
}

// New creates an Infrastructure from the application configuration.
// It initializes all systems but does not start them; call Start separately.
func New(cfg *config.Config) (*Infrastructure, error) {
	lc := lifecycle.New()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	db, err := database.New(&cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("database init failed: %w", err)
	}

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	bus := realtime.New(&cfg.Realtime, logger)

	inf, err := inference.New(lc.Context(), &cfg.Inference, logger)
	if err != nil {
		return nil, fmt.Errorf("inference init failed: %w", err)
	}

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Realtime:  bus,
		Inference: inf,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	if err := i.Realtime.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("realtime start failed: %w", err)
	}
	if err := i.Inference.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("inference start failed: %w", err)
	}
	return nil
}
