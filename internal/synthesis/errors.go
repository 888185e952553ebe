package synthesis

import "errors"

// Common errors returned by the synthesis package
var (
	// ErrEngineUnavailable marks an implementation-specific recoverable
	// failure: the engine is missing or misconfigured independent of the
	// device, and the cascade should advance to the next candidate.
	ErrEngineUnavailable = errors.New("synthesis engine unavailable")

	// ErrNoCandidates is returned when the cascade is given nothing to try
	ErrNoCandidates = errors.New("no synthesis candidates")
)
