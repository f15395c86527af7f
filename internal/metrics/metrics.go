// Package metrics exposes Prometheus instrumentation for the
// governance pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors recorded on every governed request.
type Metrics struct {
	registry *prometheus.Registry

	CallsTotal      *prometheus.CounterVec
	DetectionsTotal *prometheus.CounterVec
	ProcessingTime  prometheus.Histogram
	DeniedRequests  prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry, so
// two instances never collide the way package-level collectors would.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		CallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "govgate",
			Name:      "calls_total",
			Help:      "Governance calls by resulting action.",
		}, []string{"action"}),
		DetectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "govgate",
			Name:      "pii_detections_total",
			Help:      "Detected PII matches by type.",
		}, []string{"type"}),
		ProcessingTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "govgate",
			Name:      "processing_seconds",
			Help:      "Core pipeline processing time per call.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 12),
		}),
		DeniedRequests: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "govgate",
			Name:      "denied_requests_total",
			Help:      "Requests short-circuited with HTTP 403.",
		}),
	}

	registry.MustRegister(m.CallsTotal, m.DetectionsTotal, m.ProcessingTime, m.DeniedRequests)
	return m
}

// Registry returns the backing registry for the /metrics handler.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
