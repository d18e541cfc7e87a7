package config_test

import (
	"testing"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/JaimeStill/postbox/internal/config"
)

func TestAgentFinalizeDefaults(t *testing.T) {
	t.Setenv(config.EnvAgentProviderName, "azure")

	cfg := gaconfig.AgentConfig{}
	if err := config.FinalizeAgent(&cfg); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Name != "postbox-capture" {
		t.Errorf("name: got %s, want postbox-capture", cfg.Name)
	}
	if cfg.Client == nil {
		t.Fatal("client not defaulted")
	}
	if cfg.Client.Provider == nil {
		t.Fatal("provider not defaulted")
	}
	if cfg.Client.Provider.Name != "azure" {
		t.Errorf("provider name: got %s, want azure", cfg.Client.Provider.Name)
	}
}

func TestAgentFinalizeEnvOverrides(t *testing.T) {
	t.Setenv(config.EnvAgentProviderName, "azure")
	t.Setenv(config.EnvAgentBaseURL, "https://inference.example.com")
	t.Setenv(config.EnvAgentModelName, "vision-large")
	t.Setenv(config.EnvAgentToken, "t0ken")
	t.Setenv(config.EnvAgentDeployment, "captures")

	cfg := gaconfig.AgentConfig{Name: "custom"}
	if err := config.FinalizeAgent(&cfg); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Name != "custom" {
		t.Errorf("name overwritten: got %s", cfg.Name)
	}

	provider := cfg.Client.Provider
	if provider.BaseURL != "https://inference.example.com" {
		t.Errorf("base_url: got %s", provider.BaseURL)
	}
	for key, want := range map[string]string{
		"model":      "vision-large",
		"token":      "t0ken",
		"deployment": "captures",
	} {
		if got := provider.Options[key]; got != want {
			t.Errorf("option %s: got %v, want %s", key, got, want)
		}
	}
}
