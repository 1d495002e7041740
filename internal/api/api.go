// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/internal/infrastructure"
	"github.com/quizdeck/quizdeck/pkg/middleware"
	"github.com/quizdeck/quizdeck/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(cfg, runtime)

	if err := domain.Start(runtime); err != nil {
		return nil, err
	}

	auth, err := middleware.Auth(infra.Lifecycle.Context(), &cfg.API.Auth, runtime.Logger)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, cfg)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))
	m.Use(auth)
	m.Use(middleware.RequireUser())

	return m, nil
}
