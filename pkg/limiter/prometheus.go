package limiter

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder adapts the MetricsRecorder interface to Prometheus.
// Counter names become the "event" label on a single counter vector, so new
// metric names never require re-registration.
type PrometheusRecorder struct {
	events  *prometheus.CounterVec
	latency *prometheus.HistogramVec
}

// NewPrometheusRecorder registers the limiter metrics with reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ratelimiter_events_total",
				Help: "Rate limiter events (calls, denials, errors) by algorithm",
			},
			[]string{"event", "algorithm"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ratelimiter_decision_duration_seconds",
				Help:    "Latency of admission decisions",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"algorithm"},
		),
	}
	reg.MustRegister(r.events, r.latency)
	return r
}

func (r *PrometheusRecorder) Add(name string, value float64, tags map[string]string) {
	r.events.WithLabelValues(eventName(name), tags["algorithm"]).Add(value)
}

func (r *PrometheusRecorder) Observe(name string, value float64, tags map[string]string) {
	r.latency.WithLabelValues(tags["algorithm"]).Observe(value)
}

// eventName strips the shared "ratelimit." prefix: "ratelimit.call" -> "call".
func eventName(name string) string {
	return strings.TrimPrefix(name, "ratelimit.")
}
