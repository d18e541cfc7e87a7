package secrets

import (
	"fmt"
	"net/url"
	"os"
)

// Config identifies the vault and secret holding portal credentials.
type Config struct {
	VaultURL   string `toml:"vault_url"`
	SecretName string `toml:"secret_name"`
}

// Env maps config fields to environment variable names.
type Env struct {
	VaultURL   string
	SecretName string
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
	if overlay.VaultURL != "" {
		c.VaultURL = overlay.VaultURL
	}
	if overlay.SecretName != "" {
		c.SecretName = overlay.SecretName
	}
}

func (c *Config) loadDefaults() {
	if c.SecretName == "" {
		c.SecretName = "mail-portal-credentials"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.VaultURL != "" {
		if v := os.Getenv(env.VaultURL); v != "" {
			c.VaultURL = v
		}
	}
	if env.SecretName != "" {
		if v := os.Getenv(env.SecretName); v != "" {
			c.SecretName = v
		}
	}
}

func (c *Config) validate() error {
	if c.VaultURL == "" {
		return fmt.Errorf("vault_url required")
	}
	if _, err := url.ParseRequestURI(c.VaultURL); err != nil {
		return fmt.Errorf("invalid vault_url: %w", err)
	}
	return nil
}
