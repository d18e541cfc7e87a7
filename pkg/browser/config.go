package browser

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config holds browser session parameters.
type Config struct {
	// StartPage is the portal entry URL the session navigates to on open.
	StartPage string `toml:"start_page"`
	// Headful disables headless mode for local debugging.
	Headful bool `toml:"headful"`
	// NavigateTimeout bounds initial navigation and post-click loads.
	NavigateTimeout string `toml:"navigate_timeout"`
	// ActTimeout bounds a single instruction execution.
	ActTimeout string `toml:"act_timeout"`
	// Selectors are the CSS selectors used to enumerate candidate mail images.
	Selectors []string `toml:"selectors"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	StartPage string
	Headful   string
	Selectors string
}

// NavigateTimeoutDuration returns NavigateTimeout as a time.Duration.
func (c *Config) NavigateTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.NavigateTimeout)
	return d
}

// ActTimeoutDuration returns ActTimeout as a time.Duration.
func (c *Config) ActTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ActTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.StartPage != "" {
		c.StartPage = overlay.StartPage
	}
	if overlay.Headful {
		c.Headful = true
	}
	if overlay.NavigateTimeout != "" {
		c.NavigateTimeout = overlay.NavigateTimeout
	}
	if overlay.ActTimeout != "" {
		c.ActTimeout = overlay.ActTimeout
	}
	if overlay.Selectors != nil {
		c.Selectors = overlay.Selectors
	}
}

func (c *Config) loadDefaults() {
	if c.NavigateTimeout == "" {
		c.NavigateTimeout = "60s"
	}
	if c.ActTimeout == "" {
		c.ActTimeout = "90s"
	}
	if len(c.Selectors) == 0 {
		c.Selectors = []string{
			`img[alt*="Mail Piece"]`,
			`img[alt*="mail"]`,
			`img[src*="mail"]`,
		}
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.StartPage != "" {
		if v := os.Getenv(env.StartPage); v != "" {
			c.StartPage = v
		}
	}
	if env.Headful != "" {
		if v := os.Getenv(env.Headful); v != "" {
			c.Headful = strings.EqualFold(v, "true") || v == "1"
		}
	}
	if env.Selectors != "" {
		if v := os.Getenv(env.Selectors); v != "" {
			parts := strings.Split(v, "|")
			c.Selectors = make([]string, 0, len(parts))
			for _, p := range parts {
				if trimmed := strings.TrimSpace(p); trimmed != "" {
					c.Selectors = append(c.Selectors, trimmed)
				}
			}
		}
	}
}

func (c *Config) validate() error {
	if c.StartPage == "" {
		return fmt.Errorf("start_page required")
	}
	if _, err := time.ParseDuration(c.NavigateTimeout); err != nil {
		return fmt.Errorf("invalid navigate_timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.ActTimeout); err != nil {
		return fmt.Errorf("invalid act_timeout: %w", err)
	}
	return nil
}
