package config

import "errors"

// Configuration validation errors returned by Config.Validate.
// Package-level sentinels so callers can use errors.Is while still getting
// readable messages.
var (
	// ErrNoEndpoint is returned when the gallery endpoint URL is empty.
	ErrNoEndpoint = errors.New("no gallery endpoint configured")

	// ErrNoIndexFile is returned when the index file path is empty.
	ErrNoIndexFile = errors.New("no index file path configured")

	// ErrNoOutputDir is returned when the mirror output directory is empty.
	ErrNoOutputDir = errors.New("no output directory configured")

	// ErrInvalidMaxAttempts is returned when the retry ceiling is negative.
	// Use 0 for unbounded retries.
	ErrInvalidMaxAttempts = errors.New("invalid max attempts: must be non-negative")

	// ErrInvalidBackoff is returned when the backoff base is not positive
	// or the cap is below the base.
	ErrInvalidBackoff = errors.New("invalid backoff: base must be positive and no greater than the cap")
)
