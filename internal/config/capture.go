package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvCaptureTimeBudget    = "POSTBOX_CAPTURE_TIME_BUDGET"
	EnvCaptureSafetyMargin  = "POSTBOX_CAPTURE_SAFETY_MARGIN"
	EnvCaptureSchedule      = "POSTBOX_CAPTURE_SCHEDULE"
	EnvCaptureRetentionDays = "POSTBOX_CAPTURE_RETENTION_DAYS"
	EnvCaptureUploadWorkers = "POSTBOX_CAPTURE_UPLOAD_WORKERS"
	EnvCaptureUploadLogs    = "POSTBOX_CAPTURE_UPLOAD_LOGS"
	EnvCaptureSourceTag     = "POSTBOX_CAPTURE_SOURCE_TAG"
	EnvCapturePositiveToken = "POSTBOX_CAPTURE_POSITIVE_TOKEN"
	EnvCaptureNegativeToken = "POSTBOX_CAPTURE_NEGATIVE_TOKEN"

	// ScheduleOff disables the cron trigger; runs happen only on demand.
	ScheduleOff = "off"
)

// CaptureConfig holds capture run behavior: the run time budget, scheduling,
// classification keywords, upload concurrency, and retention.
type CaptureConfig struct {
	// TimeBudget is the hard ceiling on a single capture run.
	TimeBudget string `toml:"time_budget"`
	// SafetyMargin is reserved at the end of the budget for diagnostics
	// upload and session teardown. Candidate processing stops once the
	// remaining budget drops below it.
	SafetyMargin string `toml:"safety_margin"`
	// Schedule is a cron expression evaluated in UTC, or "off".
	Schedule string `toml:"schedule"`
	// RetentionDays bounds how long date-partitioned captures are kept.
	RetentionDays int `toml:"retention_days"`
	// UploadWorkers bounds concurrent image uploads within a run.
	UploadWorkers int `toml:"upload_workers"`
	// UploadLogs controls whether diagnostic artifacts are uploaded.
	UploadLogs *bool `toml:"upload_logs"`
	// SourceTag is stamped into storage metadata on every uploaded object.
	SourceTag string `toml:"source_tag"`
	// UIKeywords mark a candidate as page chrome when found in its
	// source locator or alt text.
	UIKeywords []string `toml:"ui_keywords"`
	// AddressKeywords accept a semantic observation that lacks the
	// positive token but clearly describes an address.
	AddressKeywords []string `toml:"address_keywords"`
	// PositiveToken is the token the semantic check emits for mail
	// images that show a delivery address.
	PositiveToken string `toml:"positive_token"`
	// NegativeToken is the token the semantic check emits for anything
	// else. It is matched before the positive token and the address
	// keywords so a negative answer can never read as a keyword hit.
	NegativeToken string `toml:"negative_token"`
	// AuthMarkers confirm the portal accepted the credentials and is
	// showing an authenticated area after submit.
	AuthMarkers []string `toml:"auth_markers"`
	// MailMarkers confirm the mail section is on screen after sign-in.
	MailMarkers []string `toml:"mail_markers"`
}

// TimeBudgetDuration returns TimeBudget as a time.Duration.
func (c *CaptureConfig) TimeBudgetDuration() time.Duration {
	d, _ := time.ParseDuration(c.TimeBudget)
	return d
}

// SafetyMarginDuration returns SafetyMargin as a time.Duration.
func (c *CaptureConfig) SafetyMarginDuration() time.Duration {
	d, _ := time.ParseDuration(c.SafetyMargin)
	return d
}

// UploadLogsEnabled reports whether diagnostic upload is on. Defaults to true.
func (c *CaptureConfig) UploadLogsEnabled() bool {
	return c.UploadLogs == nil || *c.UploadLogs
}

// ScheduleEnabled reports whether the cron trigger is active.
func (c *CaptureConfig) ScheduleEnabled() bool {
	return c.Schedule != ScheduleOff
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *CaptureConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *CaptureConfig) Merge(overlay *CaptureConfig) {
	if overlay.TimeBudget != "" {
		c.TimeBudget = overlay.TimeBudget
	}
	if overlay.SafetyMargin != "" {
		c.SafetyMargin = overlay.SafetyMargin
	}
	if overlay.Schedule != "" {
		c.Schedule = overlay.Schedule
	}
	if overlay.RetentionDays != 0 {
		c.RetentionDays = overlay.RetentionDays
	}
	if overlay.UploadWorkers != 0 {
		c.UploadWorkers = overlay.UploadWorkers
	}
	if overlay.UploadLogs != nil {
		c.UploadLogs = overlay.UploadLogs
	}
	if overlay.SourceTag != "" {
		c.SourceTag = overlay.SourceTag
	}
	if overlay.UIKeywords != nil {
		c.UIKeywords = overlay.UIKeywords
	}
	if overlay.AddressKeywords != nil {
		c.AddressKeywords = overlay.AddressKeywords
	}
	if overlay.PositiveToken != "" {
		c.PositiveToken = overlay.PositiveToken
	}
	if overlay.NegativeToken != "" {
		c.NegativeToken = overlay.NegativeToken
	}
	if overlay.AuthMarkers != nil {
		c.AuthMarkers = overlay.AuthMarkers
	}
	if overlay.MailMarkers != nil {
		c.MailMarkers = overlay.MailMarkers
	}
}

func (c *CaptureConfig) loadDefaults() {
	if c.TimeBudget == "" {
		c.TimeBudget = "15m"
	}
	if c.SafetyMargin == "" {
		c.SafetyMargin = "60s"
	}
	if c.Schedule == "" {
		c.Schedule = "0 7 * * *"
	}
	if c.RetentionDays == 0 {
		c.RetentionDays = 10
	}
	if c.UploadWorkers == 0 {
		c.UploadWorkers = 4
	}
	if c.SourceTag == "" {
		c.SourceTag = "postbox"
	}
	if len(c.UIKeywords) == 0 {
		c.UIKeywords = []string{"logo", "banner", "icon", "button", "nav"}
	}
	if len(c.AddressKeywords) == 0 {
		c.AddressKeywords = []string{"ADDRESS", "RECIPIENT", "STREET", "ZIP"}
	}
	if c.PositiveToken == "" {
		c.PositiveToken = "HAS_ADDRESS"
	}
	if c.NegativeToken == "" {
		c.NegativeToken = "NO_ADDRESS"
	}
	if len(c.AuthMarkers) == 0 {
		c.AuthMarkers = []string{"welcome", "account", "sign out", "dashboard"}
	}
	if len(c.MailMarkers) == 0 {
		c.MailMarkers = []string{"mail", "delivery", "dashboard"}
	}
}

func (c *CaptureConfig) loadEnv() {
	if v := os.Getenv(EnvCaptureTimeBudget); v != "" {
		c.TimeBudget = v
	}
	if v := os.Getenv(EnvCaptureSafetyMargin); v != "" {
		c.SafetyMargin = v
	}
	if v := os.Getenv(EnvCaptureSchedule); v != "" {
		c.Schedule = v
	}
	if v := os.Getenv(EnvCaptureRetentionDays); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.RetentionDays = n
		}
	}
	if v := os.Getenv(EnvCaptureUploadWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.UploadWorkers = n
		}
	}
	if v := os.Getenv(EnvCaptureUploadLogs); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.UploadLogs = &b
		}
	}
	if v := os.Getenv(EnvCaptureSourceTag); v != "" {
		c.SourceTag = v
	}
	if v := os.Getenv(EnvCapturePositiveToken); v != "" {
		c.PositiveToken = v
	}
	if v := os.Getenv(EnvCaptureNegativeToken); v != "" {
		c.NegativeToken = v
	}
}

func (c *CaptureConfig) validate() error {
	budget, err := time.ParseDuration(c.TimeBudget)
	if err != nil {
		return fmt.Errorf("invalid time_budget: %w", err)
	}
	margin, err := time.ParseDuration(c.SafetyMargin)
	if err != nil {
		return fmt.Errorf("invalid safety_margin: %w", err)
	}
	if margin >= budget {
		return fmt.Errorf("safety_margin %s must be less than time_budget %s", c.SafetyMargin, c.TimeBudget)
	}
	if c.RetentionDays < 1 {
		return fmt.Errorf("retention_days must be positive")
	}
	if c.UploadWorkers < 1 {
		return fmt.Errorf("upload_workers must be positive")
	}
	if c.Schedule != ScheduleOff && len(strings.Fields(c.Schedule)) != 5 {
		return fmt.Errorf("invalid schedule: %q", c.Schedule)
	}
	return nil
}
