package runner

import "errors"

// Sentinel errors for discovery failure modes.
// Callers should use errors.Is() to check for these.
var (
	// ErrNoParameters indicates the candidate parameter pool was empty
	// after baseline probing, leaving nothing to discover.
	ErrNoParameters = errors.New("runner: no parameters were provided")

	// ErrInvalidBatchSize indicates a requested batch size of zero or
	// less; every probe must carry at least one parameter.
	ErrInvalidBatchSize = errors.New("runner: batch size must be positive")

	// ErrUnstableReflections indicates reflected-only mode was
	// requested but the target does not reflect parameters
	// consistently enough to trust reflection signals.
	ErrUnstableReflections = errors.New("runner: reflections are not stable")

	// ErrUnstableCode indicates the target returned a different status
	// code during stability learning, so no reliable baseline exists.
	ErrUnstableCode = errors.New("runner: status code is not stable")
)
