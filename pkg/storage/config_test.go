package storage_test

import (
	"testing"

	"github.com/JaimeStill/postbox/pkg/storage"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := storage.Config{ConnectionString: "UseDevelopmentStorage=true"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.ContainerName != "mail-captures" {
		t.Errorf("container_name: got %s, want mail-captures", cfg.ContainerName)
	}
}

func TestConfigFinalizeEnvOverride(t *testing.T) {
	t.Setenv("TEST_STORAGE_CONTAINER", "captures-dev")
	t.Setenv("TEST_STORAGE_CONNECTION", "UseDevelopmentStorage=true")

	cfg := storage.Config{}
	env := &storage.Env{
		ContainerName:    "TEST_STORAGE_CONTAINER",
		ConnectionString: "TEST_STORAGE_CONNECTION",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.ContainerName != "captures-dev" {
		t.Errorf("container_name: got %s, want captures-dev", cfg.ContainerName)
	}
	if cfg.ConnectionString != "UseDevelopmentStorage=true" {
		t.Errorf("connection_string not read from env")
	}
}

func TestConfigFinalizeMissingConnection(t *testing.T) {
	cfg := storage.Config{}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for missing connection_string")
	}
}

func TestConfigMerge(t *testing.T) {
	cfg := storage.Config{ContainerName: "base", ConnectionString: "base-conn"}
	cfg.Merge(&storage.Config{ContainerName: "overlay"})

	if cfg.ContainerName != "overlay" {
		t.Errorf("container_name: got %s, want overlay", cfg.ContainerName)
	}
	if cfg.ConnectionString != "base-conn" {
		t.Errorf("connection_string overwritten by zero value")
	}
}
