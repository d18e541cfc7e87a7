package api

import (
	"net/http"

	"github.com/JaimeStill/postbox/internal/trigger"
	"github.com/JaimeStill/postbox/pkg/routes"
)

func registerRoutes(mux *http.ServeMux, domain *Domain, runtime *Runtime) {
	routes.Register(
		mux,
		domain.Runs.Handler().Routes(),
		trigger.NewHandler(domain.Runner, runtime.Logger).Routes(),
	)
}
