package browser_test

import (
	"testing"
	"time"

	"github.com/JaimeStill/postbox/pkg/browser"
)

func TestConfigFinalizeDefaults(t *testing.T) {
	cfg := browser.Config{StartPage: "https://portal.example.com/signin"}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.NavigateTimeout != "60s" {
		t.Errorf("navigate_timeout: got %s, want 60s", cfg.NavigateTimeout)
	}
	if cfg.ActTimeout != "90s" {
		t.Errorf("act_timeout: got %s, want 90s", cfg.ActTimeout)
	}
	if len(cfg.Selectors) != 3 {
		t.Errorf("selectors: got %v", cfg.Selectors)
	}
	if cfg.Headful {
		t.Error("headful should default to false")
	}
	if cfg.ActTimeoutDuration() != 90*time.Second {
		t.Errorf("act timeout duration: got %s", cfg.ActTimeoutDuration())
	}
}

func TestConfigFinalizeMissingStartPage(t *testing.T) {
	cfg := browser.Config{}
	if err := cfg.Finalize(nil); err == nil {
		t.Error("expected error for missing start_page")
	}
}

func TestConfigFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_BROWSER_START_PAGE", "https://portal.example.com/alt")
	t.Setenv("TEST_BROWSER_HEADFUL", "true")
	t.Setenv("TEST_BROWSER_SELECTORS", `img.preview | img[alt*="piece"]`)

	cfg := browser.Config{}
	env := &browser.Env{
		StartPage: "TEST_BROWSER_START_PAGE",
		Headful:   "TEST_BROWSER_HEADFUL",
		Selectors: "TEST_BROWSER_SELECTORS",
	}

	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.StartPage != "https://portal.example.com/alt" {
		t.Errorf("start_page: got %s", cfg.StartPage)
	}
	if !cfg.Headful {
		t.Error("headful not read from env")
	}
	want := []string{"img.preview", `img[alt*="piece"]`}
	if len(cfg.Selectors) != len(want) || cfg.Selectors[0] != want[0] || cfg.Selectors[1] != want[1] {
		t.Errorf("selectors: got %v, want %v", cfg.Selectors, want)
	}
}
