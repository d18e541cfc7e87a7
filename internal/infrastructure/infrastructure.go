// Package infrastructure provides core service initialization for application startup.
// It assembles common dependencies (logging, database, storage, secrets, and the
// browser capability) that domain systems require.
package infrastructure

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/JaimeStill/postbox/internal/config"
	"github.com/JaimeStill/postbox/internal/secrets"
	"github.com/JaimeStill/postbox/pkg/browser"
	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/JaimeStill/postbox/pkg/database"
	"github.com/JaimeStill/postbox/pkg/lifecycle"
	"github.com/JaimeStill/postbox/pkg/storage"
)

// Infrastructure holds the core systems required by all domain modules.
// It provides a single point of initialization for lifecycle coordination,
// logging, database access, capture storage, credential resolution, and
// browser session launching.
type Infrastructure struct {
	Lifecycle *lifecycle.Coordinator
	Logger    *slog.Logger
	Database  database.System
	Storage   storage.System
	Secrets   secrets.Provider
	Sessions  capability.Launcher
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

	creds, err := secrets.NewKeyVaultProvider(cfg.Secrets, logger)
	if err != nil {
		return nil, fmt.Errorf("secrets init failed: %w", err)
	}

	sessions := browser.NewLauncher(cfg.Browser, &cfg.Agent, logger)

	return &Infrastructure{
		Lifecycle: lc,
		Logger:    logger,
		Database:  db,
		Storage:   store,
		Secrets:   creds,
		Sessions:  sessions,
	}, nil
}

// Start registers all infrastructure systems with the lifecycle coordinator.
// Database and storage hooks are registered for startup and shutdown coordination.
func (i *Infrastructure) Start() error {
	if err := i.Database.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("database start failed: %w", err)
	}
	if err := i.Storage.Start(i.Lifecycle); err != nil {
		return fmt.Errorf("storage start failed: %w", err)
	}
	return nil
}
