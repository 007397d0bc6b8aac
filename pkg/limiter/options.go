package limiter

import (
	"time"

	"github.com/rs/zerolog"
)

type options struct {
	prefix   string
	timeout  time.Duration
	minPoll  time.Duration
	maxPoll  time.Duration
	logger   zerolog.Logger
	recorder MetricsRecorder
}

func defaultOptions() options {
	return options{
		prefix:   "limiter:",
		timeout:  5 * time.Second,
		minPoll:  10 * time.Millisecond,
		maxPoll:  5 * time.Second,
		logger:   zerolog.Nop(),
		recorder: &NoOpMetricsRecorder{},
	}
}

// Option configures a Limiter or an engine.
type Option func(*options)

// WithPrefix sets the key prefix used on the store (default "limiter:").
func WithPrefix(prefix string) Option {
	return func(o *options) {
		if prefix != "" {
			o.prefix = prefix
		}
	}
}

// WithTimeout sets the per-call deadline for store round trips (default 5s).
// Zero disables the internal deadline; the caller's context still applies.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithPollInterval bounds the sleep between blocking-acquire attempts. The
// retry hint from a denial is clamped to [min, max]: the floor stops busy
// polling on tiny hints, the cap bounds tail latency when a hint is
// misconfigured or far in the future.
func WithPollInterval(min, max time.Duration) Option {
	return func(o *options) {
		if min > 0 {
			o.minPoll = min
		}
		if max >= o.minPoll {
			o.maxPoll = max
		}
	}
}

// WithLogger sets the logger for decision and poll events (default no-op).
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRecorder injects a metrics backend (default no-op).
func WithRecorder(recorder MetricsRecorder) Option {
	return func(o *options) {
		if recorder != nil {
			o.recorder = recorder
		}
	}
}
