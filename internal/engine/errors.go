package engine

import "errors"

var (
	// ErrInsufficientData means zero source scores survived normalization.
	// The invocation produces no result; callers fall back or surface it.
	ErrInsufficientData = errors.New("engine: no valid source scores")

	// ErrConfig marks a malformed engine configuration. Raised at
	// construction only, never mid-computation.
	ErrConfig = errors.New("engine: invalid configuration")
)
