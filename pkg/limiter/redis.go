package limiter

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

//go:embed token_bucket.lua
var tokenBucketScript string

//go:embed fixed_window.lua
var fixedWindowScript string

// RedisTokenBucket is the distributed token-bucket engine. The whole
// read-refill-consume cycle runs as one Lua script, so many processes can
// contend on the same key with no client-side locking.
type RedisTokenBucket struct {
	client  redis.Scripter
	script  *redis.Script
	prefix  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRedisTokenBucket builds a token-bucket engine on the given client.
// Scripts run via EVALSHA with an automatic EVAL fallback, so a flushed
// script cache does not surface as an error.
func NewRedisTokenBucket(client redis.Scripter, opts ...Option) *RedisTokenBucket {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisTokenBucket{
		client:  client,
		script:  redis.NewScript(tokenBucketScript),
		prefix:  o.prefix,
		timeout: o.timeout,
		logger:  o.logger,
	}
}

// Decide consumes one token when available.
func (e *RedisTokenBucket) Decide(ctx context.Context, key string, limit Limit) (Decision, error) {
	return e.decide(ctx, key, limit, 1)
}

// Peek checks admission without consuming a token.
func (e *RedisTokenBucket) Peek(ctx context.Context, key string, limit Limit) (Decision, error) {
	return e.decide(ctx, key, limit, 0)
}

func (e *RedisTokenBucket) decide(ctx context.Context, key string, limit Limit, consume int) (Decision, error) {
	if err := limit.Validate(); err != nil {
		return Decision{}, err
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	tokensKey := e.prefix + "tb:" + key
	stampKey := tokensKey + ":ts"
	ttl := int64(stateTTL(limit) / time.Second)

	result, err := e.script.Run(ctx, e.client,
		[]string{tokensKey, stampKey},
		limit.Capacity, // ARGV[1]
		limit.Rate,     // ARGV[2]
		consume,        // ARGV[3]
		ttl,            // ARGV[4]
	).Result()
	if err != nil {
		return Decision{}, classifyStoreError(err)
	}

	dec, err := parseDecision(result)
	if err != nil {
		return Decision{}, err
	}
	e.logger.Debug().
		Str("key", key).
		Bool("allowed", dec.Allowed).
		Int64("remaining", dec.Remaining).
		Dur("retry_after", dec.RetryAfter).
		Msg("token bucket decision")
	return dec, nil
}

// RedisFixedWindow is the distributed fixed-window engine. Each window is a
// separate counter key that expires with the window; the increment that
// exceeds capacity is retained, so the count records overflow pressure.
type RedisFixedWindow struct {
	client  redis.Scripter
	script  *redis.Script
	prefix  string
	timeout time.Duration
	logger  zerolog.Logger
}

// NewRedisFixedWindow builds a fixed-window engine on the given client.
func NewRedisFixedWindow(client redis.Scripter, opts ...Option) *RedisFixedWindow {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &RedisFixedWindow{
		client:  client,
		script:  redis.NewScript(fixedWindowScript),
		prefix:  o.prefix,
		timeout: o.timeout,
		logger:  o.logger,
	}
}

// Decide counts this request against the current window.
func (e *RedisFixedWindow) Decide(ctx context.Context, key string, limit Limit) (Decision, error) {
	if err := limit.Validate(); err != nil {
		return Decision{}, err
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	result, err := e.script.Run(ctx, e.client,
		[]string{e.prefix + "fw:" + key},
		limit.Capacity, // ARGV[1]
		limit.Rate,     // ARGV[2]
	).Result()
	if err != nil {
		return Decision{}, classifyStoreError(err)
	}

	dec, err := parseDecision(result)
	if err != nil {
		return Decision{}, err
	}
	e.logger.Debug().
		Str("key", key).
		Bool("allowed", dec.Allowed).
		Int64("remaining", dec.Remaining).
		Dur("retry_after", dec.RetryAfter).
		Msg("fixed window decision")
	return dec, nil
}

// parseDecision decodes the {allowed, remaining, retry_after} reply shared by
// both scripts. Remaining and retry_after arrive as strings because Lua
// number replies lose their fractional part.
func parseDecision(result any) (Decision, error) {
	values, ok := result.([]any)
	if !ok || len(values) != 3 {
		return Decision{}, fmt.Errorf("%w: unexpected reply %T", ErrScriptFailure, result)
	}

	allowed, _ := values[0].(int64)
	remaining := asFloat(values[1])
	retryAfter := asFloat(values[2])

	now := time.Now()
	dec := Decision{
		Allowed:    allowed == 1,
		Remaining:  int64(remaining),
		RetryAfter: time.Duration(retryAfter * float64(time.Second)),
	}
	dec.ResetAt = now.Add(dec.RetryAfter)
	return dec, nil
}

func asFloat(val any) float64 {
	switch v := val.(type) {
	case int64:
		return float64(v)
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

// classifyStoreError sorts a go-redis error into the package taxonomy.
// Context errors pass through untouched so callers can match on them.
func classifyStoreError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var replyErr redis.Error
	if errors.As(err, &replyErr) {
		return fmt.Errorf("%w: %v", ErrScriptFailure, err)
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
