package taskpool

import "errors"

// Sentinel errors returned by Pool operations. Compare with errors.Is —
// wrapped errors (e.g. from a failed worker spawn) carry additional context
// via %w.
var (
	// ErrPoolShuttingDown is returned by Submit once Free has been called.
	// The caller retains ownership of the rejected data.
	ErrPoolShuttingDown = errors.New("taskpool: pool is shutting down")

	// ErrWorkerSpawnFailed is returned when New could not spawn its initial
	// ordinary or priority workers, or Submit could not grow the ordinary
	// worker set.
	ErrWorkerSpawnFailed = errors.New("taskpool: failed to spawn worker")

	// ErrInvalidConfig is returned by New for a configuration that can
	// never be satisfied (negative worker counts).
	ErrInvalidConfig = errors.New("taskpool: invalid configuration")
)
