package capability

import "errors"

// Sentinel errors for capability operations.
var (
	// ErrCapability indicates the capability failed to execute an instruction.
	ErrCapability = errors.New("capability error")
	// ErrTimeout indicates the capability did not respond within its time limit.
	ErrTimeout = errors.New("capability timeout")
	// ErrInvalidHandle indicates a handle that does not belong to the session
	// or whose session has closed.
	ErrInvalidHandle = errors.New("invalid element handle")
)
