package domain

import "errors"

var (
	// ErrConfiguration marks pricing rules or fleet settings that cannot be used for a calculation.
	ErrConfiguration = errors.New("configuration error")
	// ErrInputValidation marks caller input rejected before any pricing math runs.
	ErrInputValidation = errors.New("invalid input")
	// ErrNotFound is returned when an address or route cannot be resolved.
	ErrNotFound = errors.New("not found")
	// ErrProviderUnavailable marks a failed or timed out geocoding/distance provider call.
	ErrProviderUnavailable = errors.New("provider unavailable")
)
