package limiter

import (
	"context"
	"time"
)

// Algorithm selects the admission algorithm applied by a Limiter.
type Algorithm string

const (
	// TokenBucket admits bursts up to Capacity while refilling continuously
	// at Rate tokens per second.
	TokenBucket Algorithm = "token_bucket"

	// FixedWindow admits up to Capacity requests per window of
	// Capacity/Rate seconds, then resets.
	FixedWindow Algorithm = "fixed_window"
)

// Limit describes one admission policy. The same two parameters drive both
// algorithms, so call sites can switch algorithms without changing limits.
type Limit struct {
	// Capacity is the maximum number of units the bucket holds, or the
	// number of requests admitted per window. Must be > 0.
	Capacity float64

	// Rate is the refill speed in units per second. Must be > 0.
	Rate float64
}

// Validate reports whether the limit parameters are usable. It is called by
// every engine before any store access.
func (l Limit) Validate() error {
	if l.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if l.Rate <= 0 {
		return ErrInvalidRate
	}
	return nil
}

// Window is the time needed to exhaust Capacity at Rate. It is the window
// length used by the fixed-window algorithm.
func (l Limit) Window() time.Duration {
	return time.Duration(l.Capacity / l.Rate * float64(time.Second))
}

// Decision is the outcome of a single admission check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is the number of whole units left after this decision.
	Remaining int64

	// RetryAfter is 0 when allowed; when denied it is the approximate
	// duration until the next unit becomes available.
	RetryAfter time.Duration

	// ResetAt is the absolute time corresponding to RetryAfter.
	ResetAt time.Time
}

// Engine computes and applies one admission decision for a key. Each call is
// a single atomic state transition: the persisted state is either updated
// consistently with the returned decision or not touched at all.
type Engine interface {
	Decide(ctx context.Context, key string, limit Limit) (Decision, error)
}
