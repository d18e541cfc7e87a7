package api

import (
	"github.com/JaimeStill/postbox/internal/config"
	"github.com/JaimeStill/postbox/internal/infrastructure"
	"github.com/JaimeStill/postbox/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Capture    config.CaptureConfig
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Storage:   infra.Storage,
			Secrets:   infra.Secrets,
			Sessions:  infra.Sessions,
		},
		Capture:    cfg.Capture,
		Pagination: cfg.API.Pagination,
	}
}
