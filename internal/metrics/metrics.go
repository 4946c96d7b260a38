package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pulsefeed/autopub/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	PostsPublished *prometheus.CounterVec
	PostsFailed    *prometheus.CounterVec
	PublishLatency *prometheus.HistogramVec
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PostsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_published_total",
			Help: "Total number of successfully published posts.",
		}, []string{"platform"}),

		PostsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "posts_failed_total",
			Help: "Total number of posts that failed dispatch (terminal, never retried).",
		}, []string{"platform"}),

		PublishLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "post_publish_seconds",
			Help:    "Dispatch latency from adapter invocation to platform ack.",
			Buckets: prometheus.DefBuckets,
		}, []string{"platform"}),
	}

	reg.MustRegister(
		m.PostsPublished,
		m.PostsFailed,
		m.PublishLatency,
	)

	return m
}

// SchedulerHooks returns the metric callback functions expected by
// scheduler.Hooks. Centralises the prometheus observation calls so the
// scheduler stays metrics-agnostic.
func (m *Metrics) SchedulerHooks() (
	onPublished func(domain.Platform, time.Duration),
	onFailed func(domain.Platform),
) {
	onPublished = func(p domain.Platform, latency time.Duration) {
		m.PostsPublished.WithLabelValues(string(p)).Inc()
		m.PublishLatency.WithLabelValues(string(p)).Observe(latency.Seconds())
	}
	onFailed = func(p domain.Platform) {
		m.PostsFailed.WithLabelValues(string(p)).Inc()
	}
	return
}
