// Package formatting provides response parsing and naming helpers shared
// across the capture workflow and API surface.
package formatting

import "time"

const (
	// DateLayout is the partition layout used for storage keys and run records.
	DateLayout = "2006-01-02"

	// StampLayout is the compact timestamp appended to capture filenames.
	StampLayout = "20060102_150405"
)

// Date formats t as a YYYY-MM-DD partition value in UTC.
func Date(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// Stamp formats t as a compact capture timestamp in UTC.
func Stamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}
