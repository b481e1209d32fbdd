// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates malformed client input. Never retried automatically.
	ErrValidation = errors.New("validation failed")

	// ErrMissingCredential indicates no bearer key or a key of the wrong format.
	ErrMissingCredential = errors.New("missing credential")

	// ErrInvalidCredential indicates an unknown or revoked key. Both causes share this sentinel.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrQuotaExceeded indicates the daily publication ceiling of the key's tier is reached.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrConflict indicates a unique constraint violation (e.g., email already registered).
	ErrConflict = errors.New("already exists")

	// ErrSlugTaken indicates the generated slug collided with a stored post.
	ErrSlugTaken = errors.New("slug already taken")

	// ErrStorage marks an aborted, fully rolled back store operation.
	ErrStorage = errors.New("storage failure")

	// ErrRateLimited indicates temporary rejection by the issuance limiter.
	ErrRateLimited = errors.New("rate limited")
)
