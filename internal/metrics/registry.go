package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all metrics for the application
type Registry struct {
	// HTTP Metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPRequestsInFlight  prometheus.Gauge
	HTTPResponseSizeBytes *prometheus.HistogramVec

	// Domain Metrics
	TourMutationsTotal  *prometheus.CounterVec
	AuditExportedTotal  prometheus.Counter
	AuditExportFailures prometheus.Counter

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every collector initialized. Each call
// returns an independent prometheus registry, so tests never collide.
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r.initHTTPMetrics()
	r.initDomainMetrics()
	return r
}

// GetPrometheusRegistry returns the underlying registry for promhttp.
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
