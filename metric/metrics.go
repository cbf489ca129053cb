// Package metric exposes Prometheus instrumentation for tag sync runs.
//
// A nil *Metrics is valid and turns every observation into a no-op, so
// callers that run without a metrics listener pass nil instead of guarding
// every call site.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the tagsonomy collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	tagsAdded      prometheus.Counter
	tagsRemoved    prometheus.Counter
	outcomes       *prometheus.CounterVec
	remoteDuration *prometheus.HistogramVec
}

// New creates a Metrics set with its own registry, including the standard
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		tagsAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagsonomy_tags_added_total",
			Help: "Tags created on remote securables.",
		}),
		tagsRemoved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tagsonomy_tags_removed_total",
			Help: "Tags deleted from remote securables.",
		}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tagsonomy_reconcile_outcomes_total",
			Help: "Per-securable reconciliation outcomes by status.",
		}, []string{"status"}),
		remoteDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tagsonomy_remote_call_duration_seconds",
			Help:    "Duration of remote tagging API calls.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.tagsAdded,
		m.tagsRemoved,
		m.outcomes,
		m.remoteDuration,
	)

	return m
}

// Handler returns an HTTP handler serving the registry in Prometheus
// exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TagsAdded records n created tags.
func (m *Metrics) TagsAdded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tagsAdded.Add(float64(n))
}

// TagsRemoved records n deleted tags.
func (m *Metrics) TagsRemoved(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.tagsRemoved.Add(float64(n))
}

// Outcome records a per-securable reconciliation outcome.
func (m *Metrics) Outcome(status string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(status).Inc()
}

// RemoteCall records the duration of one remote tagging API call.
func (m *Metrics) RemoteCall(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.remoteDuration.WithLabelValues(op).Observe(d.Seconds())
}
