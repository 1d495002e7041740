package api

import (
	"net/http"

	"github.com/quizdeck/quizdeck/internal/config"
	"github.com/quizdeck/quizdeck/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
) {
	routes.Register(
		mux,
		domain.Sessions.Handler(domain.Analysis, cfg.API.MaxUploadSizeBytes()).Routes(),
		domain.Problems.Handler().Routes(),
		domain.Acquisition.Handler().Routes(),
	)
}
