package limiter

import "errors"

// Package-level error definitions. Store and script failures are wrapped with
// their cause; use errors.Is to classify.
var (
	// ErrInvalidCapacity is returned when Limit.Capacity is zero or negative.
	ErrInvalidCapacity = errors.New("limiter: capacity must be greater than zero")

	// ErrInvalidRate is returned when Limit.Rate is zero or negative.
	ErrInvalidRate = errors.New("limiter: rate must be greater than zero")

	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached. No admission decision can be trusted while the store is down,
	// so blocking acquires propagate this instead of retrying.
	ErrStoreUnavailable = errors.New("limiter: store unavailable")

	// ErrScriptFailure is returned when the store rejects or fails the
	// decision script itself. This is not recoverable by retrying.
	ErrScriptFailure = errors.New("limiter: decision script failed")
)
