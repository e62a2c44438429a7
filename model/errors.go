package model

import "errors"

var (
	// ErrConfiguration marks parameters that can never produce a runnable model
	ErrConfiguration = errors.New("configuration error")

	// ErrInvariantViolation marks an internal consistency fault during construction
	ErrInvariantViolation = errors.New("invariant violation")
)
