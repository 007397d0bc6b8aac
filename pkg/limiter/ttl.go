package limiter

import (
	"math"
	"time"
)

// Bounds for the idle-state TTL. The floor keeps rapid repeat calls from
// thrashing expirations; the ceiling bounds memory for near-zero rates.
const (
	minStateTTL = 60 * time.Second
	maxStateTTL = 24 * time.Hour
)

// stateTTL derives the expiration for a key's persisted state. Once the
// bucket would have fully refilled anyway the state is indistinguishable from
// a fresh key, so it can expire after capacity/rate seconds.
func stateTTL(limit Limit) time.Duration {
	ttl := time.Duration(math.Ceil(limit.Capacity/limit.Rate)) * time.Second
	if ttl < minStateTTL {
		return minStateTTL
	}
	if ttl > maxStateTTL {
		return maxStateTTL
	}
	return ttl
}
