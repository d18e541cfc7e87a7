// Package workflow implements the daily mail capture run. It drives an
// authenticated portal session through a 5-node state graph
// (authenticate → enumerate → classify → store → finalize) and always
// produces exactly one Report, regardless of where the run degrades.
package workflow

import "errors"

// Sentinel errors for workflow operations.
var (
	ErrAuthFailed      = errors.New("authentication failed")
	ErrEnumerateFailed = errors.New("candidate enumeration failed")
	ErrNoReport        = errors.New("run produced no report")
)
