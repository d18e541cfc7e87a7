package trigger

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/postbox/pkg/handlers"
	"github.com/JaimeStill/postbox/pkg/routes"
)

// Handler exposes on-demand capture runs over HTTP.
type Handler struct {
	runner *Runner
	logger *slog.Logger
}

// NewHandler creates a Handler around the given runner.
func NewHandler(runner *Runner, logger *slog.Logger) *Handler {
	return &Handler{
		runner: runner,
		logger: logger.With("handler", "trigger"),
	}
}

// Routes returns the route group definition for the trigger endpoint.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/trigger",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Trigger},
		},
	}
}

// Trigger runs a capture synchronously and returns its report. A run that
// produced a report but failed authentication or enumeration responds 500
// with the report body; partial success responds 200.
func (h *Handler) Trigger(w http.ResponseWriter, r *http.Request) {
	report, err := h.runner.Run(r.Context())
	if err != nil {
		if errors.Is(err, ErrBusy) {
			handlers.RespondError(w, h.logger, http.StatusConflict, err)
			return
		}
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	handlers.RespondJSON(w, status, report)
}
