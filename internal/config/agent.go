package config

import (
	"fmt"
	"os"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
)

const (
	EnvAgentProviderName = "POSTBOX_AGENT_PROVIDER_NAME"
	EnvAgentBaseURL      = "POSTBOX_AGENT_BASE_URL"
	EnvAgentToken        = "POSTBOX_AGENT_TOKEN"
	EnvAgentDeployment   = "POSTBOX_AGENT_DEPLOYMENT"
	EnvAgentAPIVersion   = "POSTBOX_AGENT_API_VERSION"
	EnvAgentAuthType     = "POSTBOX_AGENT_AUTH_TYPE"
	EnvAgentModelName    = "POSTBOX_AGENT_MODEL_NAME"
)

// FinalizeAgent applies the three-phase finalize pattern to a go-agents
// AgentConfig: client and provider defaults from go-agents, environment
// variable overrides, and validation.
func FinalizeAgent(c *gaconfig.AgentConfig) error {
	loadAgentDefaults(c)
	loadAgentEnv(c)
	return validateAgent(c)
}

func loadAgentDefaults(c *gaconfig.AgentConfig) {
	if c.Name == "" {
		c.Name = "postbox-capture"
	}
	if c.Client == nil {
		c.Client = gaconfig.DefaultClientConfig()
	}
	if c.Client.Provider == nil {
		c.Client.Provider = gaconfig.DefaultProviderConfig()
	}
	if c.Client.Provider.Options == nil {
		c.Client.Provider.Options = make(map[string]any)
	}
}

func loadAgentEnv(c *gaconfig.AgentConfig) {
	provider := c.Client.Provider

	if v := os.Getenv(EnvAgentProviderName); v != "" {
		provider.Name = v
	}
	if v := os.Getenv(EnvAgentBaseURL); v != "" {
		provider.BaseURL = v
	}

	setOption := func(envVar, key string) {
		if v := os.Getenv(envVar); v != "" {
			provider.Options[key] = v
		}
	}

	setOption(EnvAgentModelName, "model")
	setOption(EnvAgentToken, "token")
	setOption(EnvAgentDeployment, "deployment")
	setOption(EnvAgentAPIVersion, "api_version")
	setOption(EnvAgentAuthType, "auth_type")
}

func validateAgent(c *gaconfig.AgentConfig) error {
	if c.Name == "" {
		return fmt.Errorf("name required")
	}
	if c.Client == nil {
		return fmt.Errorf("client required")
	}
	if c.Client.Provider == nil {
		return fmt.Errorf("provider required")
	}
	if c.Client.Provider.Name == "" {
		return fmt.Errorf("provider name required")
	}
	return nil
}
