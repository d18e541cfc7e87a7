// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/JaimeStill/postbox/internal/config"
	"github.com/JaimeStill/postbox/internal/infrastructure"
	"github.com/JaimeStill/postbox/pkg/middleware"
	"github.com/JaimeStill/postbox/pkg/module"
)

// NewModule creates the API module with all domain handlers and middleware.
// The returned Domain is shared with the scheduler.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, *Domain, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, domain, nil
}
