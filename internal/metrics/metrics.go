package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records classification telemetry on its own registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	cacheLookups  *prometheus.CounterVec
	modelCalls    *prometheus.CounterVec
	modelLatency  *prometheus.HistogramVec
	emailsFetched prometheus.Counter
}

// New creates the metric set
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_classifier_cache_lookups_total",
				Help: "Response cache lookups by result",
			},
			[]string{"result"}, // hit, miss, error
		),
		modelCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "email_classifier_model_calls_total",
				Help: "Language model invocations by task and status",
			},
			[]string{"task", "status"},
		),
		modelLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "email_classifier_model_latency_seconds",
				Help:    "Language model invocation latency in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
			},
			[]string{"task"},
		),
		emailsFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "email_classifier_emails_fetched_total",
			Help: "Emails retrieved from the mail source",
		}),
	}
}

// CacheLookup counts one cache lookup
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// ModelCall counts one model invocation and observes its latency
func (m *Metrics) ModelCall(task, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.modelCalls.WithLabelValues(task, status).Inc()
	m.modelLatency.WithLabelValues(task).Observe(elapsed.Seconds())
}

// EmailsFetched counts retrieved emails
func (m *Metrics) EmailsFetched(n int) {
	if m == nil {
		return
	}
	m.emailsFetched.Add(float64(n))
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
