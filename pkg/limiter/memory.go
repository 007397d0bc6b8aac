package limiter

import (
	"context"
	"math"
	"sync"
	"time"
)

// MemoryTokenBucket is an in-process token-bucket engine with the same
// semantics as RedisTokenBucket. Its state is local to the process, so it
// cannot enforce a global limit across replicas; use it for single-instance
// deployments and tests.
type MemoryTokenBucket struct {
	mu      sync.Mutex
	buckets map[string]*bucketState
	now     func() time.Time
}

type bucketState struct {
	tokens     float64
	lastRefill float64 // seconds since epoch
}

// NewMemoryTokenBucket constructs a MemoryTokenBucket with empty state.
func NewMemoryTokenBucket() *MemoryTokenBucket {
	return &MemoryTokenBucket{
		buckets: make(map[string]*bucketState),
		now:     time.Now,
	}
}

// Decide consumes one token when available.
func (e *MemoryTokenBucket) Decide(ctx context.Context, key string, limit Limit) (Decision, error) {
	return e.decide(ctx, key, limit, 1)
}

// Peek checks admission without consuming a token.
func (e *MemoryTokenBucket) Peek(ctx context.Context, key string, limit Limit) (Decision, error) {
	return e.decide(ctx, key, limit, 0)
}

func (e *MemoryTokenBucket) decide(_ context.Context, key string, limit Limit, consume int) (Decision, error) {
	if err := limit.Validate(); err != nil {
		return Decision{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	wall := e.now()
	now := float64(wall.UnixMicro()) / 1e6

	st, ok := e.buckets[key]
	if !ok {
		st = &bucketState{tokens: limit.Capacity, lastRefill: now}
		e.buckets[key] = st
	}

	elapsed := now - st.lastRefill
	if elapsed < 0 {
		elapsed = 0
	}
	st.tokens = math.Min(limit.Capacity, st.tokens+elapsed*limit.Rate)
	st.lastRefill = now

	if st.tokens >= 1 {
		st.tokens -= float64(consume)
		return Decision{
			Allowed:   true,
			Remaining: int64(st.tokens),
			ResetAt:   wall,
		}, nil
	}

	retryAfter := time.Duration((1 - st.tokens) / limit.Rate * float64(time.Second))
	return Decision{
		Allowed:    false,
		Remaining:  int64(st.tokens),
		RetryAfter: retryAfter,
		ResetAt:    wall.Add(retryAfter),
	}, nil
}

// MemoryFixedWindow is an in-process fixed-window engine with the same
// semantics as RedisFixedWindow. Old windows are dropped as soon as a key
// rolls into a new one.
type MemoryFixedWindow struct {
	mu      sync.Mutex
	windows map[string]*windowState
	now     func() time.Time
}

type windowState struct {
	start float64 // window start, seconds since epoch
	count int64
}

// NewMemoryFixedWindow constructs a MemoryFixedWindow with empty state.
func NewMemoryFixedWindow() *MemoryFixedWindow {
	return &MemoryFixedWindow{
		windows: make(map[string]*windowState),
		now:     time.Now,
	}
}

// Decide counts this request against the current window.
func (e *MemoryFixedWindow) Decide(_ context.Context, key string, limit Limit) (Decision, error) {
	if err := limit.Validate(); err != nil {
		return Decision{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	wall := e.now()
	now := float64(wall.UnixMicro()) / 1e6
	window := limit.Capacity / limit.Rate
	windowStart := math.Floor(now/window) * window

	st, ok := e.windows[key]
	if !ok || st.start != windowStart {
		st = &windowState{start: windowStart}
		e.windows[key] = st
	}

	// Overflow increments are retained, matching the Redis engine.
	st.count++

	if float64(st.count) <= limit.Capacity {
		return Decision{
			Allowed:   true,
			Remaining: int64(math.Floor(limit.Capacity - float64(st.count))),
			ResetAt:   wall,
		}, nil
	}

	retryAfter := time.Duration((windowStart + window - now) * float64(time.Second))
	return Decision{
		Allowed:    false,
		RetryAfter: retryAfter,
		ResetAt:    wall.Add(retryAfter),
	}, nil
}
