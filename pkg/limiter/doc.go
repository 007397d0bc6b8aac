// Package limiter provides distributed admission control backed by Redis,
// with in-memory engines for single-instance deployments and tests.
//
// The primary entry point is the Limiter:
//
//	l, err := limiter.New(client, limiter.TokenBucket)
//	ok, err := l.TryAcquire(ctx, "user:123", limiter.Limit{Capacity: 100, Rate: 100.0 / 60})
//
// TryAcquire makes one non-blocking decision; Acquire blocks until admitted
// or the context ends, retrying on the store's own retry hint.
//
// # Algorithms
//
// Two algorithms share the same Limit parameters, so call sites can switch
// between them at construction time:
//
//   - TokenBucket: a bucket holds up to Capacity tokens and refills
//     continuously at Rate tokens per second. Refill is computed lazily from
//     elapsed time at each decision; there is no background process.
//
//   - FixedWindow: a counter per window of Capacity/Rate seconds. Each window
//     is a fresh counter; the increment that exceeds capacity is retained so
//     the window remembers overflow attempts.
//
// # Atomicity
//
// Every decision against Redis is a single Lua script execution: the
// read-modify-write cycle is indivisible with respect to all other decisions
// on the same key. That server-side atomicity is the only serialization in
// the system; the client holds no locks and no cached state, which is what
// makes one key safe to contend from many processes. Scripts read the clock
// from Redis TIME, so multi-host clock skew cannot split a decision.
//
// # State and expiry
//
// Token-bucket state (token balance plus last refill timestamp) expires after
// the time the bucket would need to refill completely, clamped to [60s, 24h].
// Window counters expire with their window. Idle keys therefore clean
// themselves up; there is no explicit deletion.
//
// # Errors
//
// Parameter problems (ErrInvalidCapacity, ErrInvalidRate) are reported before
// any store access. Store connectivity problems wrap ErrStoreUnavailable and
// script failures wrap ErrScriptFailure; Acquire propagates both immediately
// rather than silently retrying, since a down store means no admission
// decision can be trusted. Context cancellation and deadlines pass through
// unwrapped.
//
// # Backends
//
// RedisTokenBucket and RedisFixedWindow enforce a single global budget per
// key across any number of processes. MemoryTokenBucket and MemoryFixedWindow
// mirror the same semantics in process memory and are intended for tests and
// single-replica deployments; wrap any of them with NewWithEngine.
package limiter
