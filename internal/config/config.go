package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/JaimeStill/postbox/internal/secrets"
	"github.com/JaimeStill/postbox/pkg/browser"
	"github.com/JaimeStill/postbox/pkg/database"
	"github.com/JaimeStill/postbox/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvPostboxEnv             = "POSTBOX_ENV"
	EnvPostboxShutdownTimeout = "POSTBOX_SHUTDOWN_TIMEOUT"
	EnvPostboxVersion         = "POSTBOX_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "POSTBOX_DB_HOST",
	Port:            "POSTBOX_DB_PORT",
	Name:            "POSTBOX_DB_NAME",
	User:            "POSTBOX_DB_USER",
	Password:        "POSTBOX_DB_PASSWORD",
	SSLMode:         "POSTBOX_DB_SSL_MODE",
	MaxOpenConns:    "POSTBOX_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "POSTBOX_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "POSTBOX_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "POSTBOX_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "POSTBOX_STORAGE_CONTAINER_NAME",
	ConnectionString: "POSTBOX_STORAGE_CONNECTION_STRING",
}

var secretsEnv = &secrets.Env{
	VaultURL:   "POSTBOX_SECRETS_VAULT_URL",
	SecretName: "POSTBOX_SECRETS_SECRET_NAME",
}

var browserEnv = &browser.Env{
	StartPage: "POSTBOX_BROWSER_START_PAGE",
	Headful:   "POSTBOX_BROWSER_HEADFUL",
	Selectors: "POSTBOX_BROWSER_SELECTORS",
}

// Config is the root configuration for the Postbox service.
type Config struct {
	Server          ServerConfig         `toml:"server"`
	Database        database.Config      `toml:"database"`
	Storage         storage.Config       `toml:"storage"`
	Secrets         secrets.Config       `toml:"secrets"`
	Browser         browser.Config       `toml:"browser"`
	Agent           gaconfig.AgentConfig `toml:"agent"`
	API             APIConfig            `toml:"api"`
	Capture         CaptureConfig        `toml:"capture"`
	ShutdownTimeout string               `toml:"shutdown_timeout"`
	Version         string               `toml:"version"`
}

// Env returns the POSTBOX_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvPostboxEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Secrets.Merge(&overlay.Secrets)
	c.Browser.Merge(&overlay.Browser)
	c.Agent.Merge(&overlay.Agent)
	c.API.Merge(&overlay.API)
	c.Capture.Merge(&overlay.Capture)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Secrets.Finalize(secretsEnv); err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	if err := c.Browser.Finalize(browserEnv); err != nil {
		return fmt.Errorf("browser: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Capture.Finalize(); err != nil {
		return fmt.Errorf("capture: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvPostboxShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvPostboxVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvPostboxEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
