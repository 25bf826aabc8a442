// Package primary defines the primary ports (driving adapters) for the application.
// These are the interfaces through which callers drive the application.
package primary

import "errors"

// Error kinds surfaced by primary ports. Use errors.Is to test for them.
var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrCollaborator = errors.New("collaborator failure")

	// Lifecycle no-ops. Logged as warnings, never returned to callers.
	ErrAlreadyRunning = errors.New("already running")
	ErrAlreadyStopped = errors.New("already stopped")
)
