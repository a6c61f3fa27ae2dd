// Package coreerrors holds sentinel errors shared across the runtime so
// callers can classify failures with errors.Is instead of string matching.
package coreerrors

import "errors"

var (
	// ErrInvalidConfig marks a malformed or missing configuration value.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrNotFound marks a lookup (job, workflow, session) that found nothing.
	ErrNotFound = errors.New("not found")

	// ErrUnsafeCommand marks a shell command rejected by the safety filter.
	ErrUnsafeCommand = errors.New("unsafe shell command")

	// ErrTimeout marks an operation that exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrEngineFailure marks a failure surfaced by the agent engine.
	ErrEngineFailure = errors.New("engine run failed")

	// ErrTransportFailure marks a failure delivering a message on a channel.
	ErrTransportFailure = errors.New("transport delivery failed")

	// ErrCorrupt marks persisted state that failed to parse.
	ErrCorrupt = errors.New("persisted state is corrupt")
)
