package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Limiter exposes the two public admission operations, TryAcquire and
// Acquire, over an Engine selected at construction time.
//
// The Limiter holds no per-key state in process: every decision is one atomic
// round trip to the engine's store, which is what makes the same key safe to
// contend from many processes.
type Limiter struct {
	engine   Engine
	minPoll  time.Duration
	maxPoll  time.Duration
	recorder MetricsRecorder
	tags     map[string]string
}

// New connects a Limiter to Redis with the given algorithm. It pings the
// server before returning so misconfiguration fails at startup rather than on
// the first decision.
func New(client *redis.Client, algo Algorithm, opts ...Option) (*Limiter, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	var engine Engine
	switch algo {
	case TokenBucket:
		engine = NewRedisTokenBucket(client, opts...)
	case FixedWindow:
		engine = NewRedisFixedWindow(client, opts...)
	default:
		return nil, fmt.Errorf("limiter: unknown algorithm %q", algo)
	}

	return newLimiter(engine, algo, o), nil
}

// NewWithEngine wraps an arbitrary Engine, typically one of the in-memory
// engines, with the same TryAcquire/Acquire surface.
func NewWithEngine(engine Engine, opts ...Option) *Limiter {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	algo := Algorithm("custom")
	switch engine.(type) {
	case *RedisTokenBucket, *MemoryTokenBucket:
		algo = TokenBucket
	case *RedisFixedWindow, *MemoryFixedWindow:
		algo = FixedWindow
	}
	return newLimiter(engine, algo, o)
}

func newLimiter(engine Engine, algo Algorithm, o options) *Limiter {
	return &Limiter{
		engine:   engine,
		minPoll:  o.minPoll,
		maxPoll:  o.maxPoll,
		recorder: o.recorder,
		tags:     map[string]string{"algorithm": string(algo)},
	}
}

// Decide runs a single admission decision and returns its full metadata.
func (l *Limiter) Decide(ctx context.Context, key string, limit Limit) (Decision, error) {
	start := time.Now()
	dec, err := l.engine.Decide(ctx, key, limit)
	l.recorder.Observe(metricLatency, time.Since(start).Seconds(), l.tags)
	l.recorder.Add(metricCall, 1, l.tags)
	if err != nil {
		l.recorder.Add(metricError, 1, l.tags)
		return Decision{}, err
	}
	if !dec.Allowed {
		l.recorder.Add(metricDenied, 1, l.tags)
	}
	return dec, nil
}

// TryAcquire makes a single non-blocking admission decision, consuming one
// unit when admitted.
func (l *Limiter) TryAcquire(ctx context.Context, key string, limit Limit) (bool, error) {
	dec, err := l.Decide(ctx, key, limit)
	if err != nil {
		return false, err
	}
	return dec.Allowed, nil
}

// Acquire blocks until one unit is admitted or the context ends. Denials are
// retried after the engine's retry hint, clamped to the configured poll
// bounds; store errors propagate immediately instead of being retried. There
// is no deadline of its own; wrap the context to bound the wait.
//
// Waiters poll independently, so there is no FIFO guarantee among concurrent
// callers, but each iteration consumes at most one unit.
func (l *Limiter) Acquire(ctx context.Context, key string, limit Limit) error {
	if err := limit.Validate(); err != nil {
		return err
	}

	for {
		dec, err := l.Decide(ctx, key, limit)
		if err != nil {
			return err
		}
		if dec.Allowed {
			return nil
		}

		wait := dec.RetryAfter
		if wait < l.minPoll {
			wait = l.minPoll
		}
		if wait > l.maxPoll {
			wait = l.maxPoll
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
