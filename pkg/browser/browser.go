// Package browser implements the page-automation capability on top of a
// headless Chromium instance. Natural-language instructions are grounded by
// digesting the live DOM into a compact element inventory, handing the
// instruction and inventory to a language model, and replaying the model's
// chosen action against the page. Element-scoped inspection renders the
// element to an image and submits it to the model's vision endpoint.
package browser

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/JaimeStill/postbox/pkg/capability"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/stealth"
)

// Launcher opens browser-backed capability sessions.
type Launcher struct {
	config   Config
	agentCfg *gaconfig.AgentConfig
	logger   *slog.Logger
}

// NewLauncher creates a Launcher from browser and agent configuration.
func NewLauncher(cfg Config, agentCfg *gaconfig.AgentConfig, logger *slog.Logger) *Launcher {
	return &Launcher{
		config:   cfg,
		agentCfg: agentCfg,
		logger:   logger.With("system", "browser"),
	}
}

// Open launches a Chromium instance, navigates to the configured start page,
// and returns a ready session. The caller owns the session and must Close it.
func (l *Launcher) Open(ctx context.Context) (capability.Session, error) {
	a, err := agent.New(l.agentCfg)
	if err != nil {
		return nil, fmt.Errorf("create agent: %w", err)
	}

	chrome := launcher.New().Headless(!l.config.Headful)
	controlURL, err := chrome.Launch()
	if err != nil {
		return nil, fmt.Errorf("%w: launch chromium: %w", capability.ErrCapability, err)
	}

	b := rod.New().ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		chrome.Cleanup()
		return nil, fmt.Errorf("%w: connect chromium: %w", capability.ErrCapability, err)
	}

	page, err := stealth.Page(b)
	if err != nil {
		b.Close()
		chrome.Cleanup()
		return nil, fmt.Errorf("%w: create page: %w", capability.ErrCapability, err)
	}

	nav := page.Context(ctx).Timeout(l.config.NavigateTimeoutDuration())
	if err := nav.Navigate(l.config.StartPage); err != nil {
		b.Close()
		chrome.Cleanup()
		return nil, fmt.Errorf("%w: navigate %s: %w", capability.ErrCapability, l.config.StartPage, err)
	}
	if err := nav.WaitLoad(); err != nil {
		b.Close()
		chrome.Cleanup()
		return nil, fmt.Errorf("%w: wait load: %w", capability.ErrCapability, err)
	}

	l.logger.Info("session opened", "start_page", l.config.StartPage, "headful", l.config.Headful)

	return &session{
		config:  l.config,
		agent:   a,
		chrome:  chrome,
		browser: b,
		page:    page,
		logger:  l.logger,
	}, nil
}
