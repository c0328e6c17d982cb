package metrics

import (
	"time"
)

// RecordHTTPRequest records an HTTP request
func (r *Registry) RecordHTTPRequest(method, path, status string, duration time.Duration, responseSize int) {
	r.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
	r.HTTPResponseSizeBytes.WithLabelValues(method, path).Observe(float64(responseSize))
}

func (r *Registry) IncInFlight() {
	r.HTTPRequestsInFlight.Inc()
}

func (r *Registry) DecInFlight() {
	r.HTTPRequestsInFlight.Dec()
}

// RecordTourMutation counts a successful create, update, delete or import.
func (r *Registry) RecordTourMutation(action string, n int) {
	r.TourMutationsTotal.WithLabelValues(action).Add(float64(n))
}

// RecordAuditExport records one exporter run.
func (r *Registry) RecordAuditExport(exported int, err error) {
	if err != nil {
		r.AuditExportFailures.Inc()
		return
	}
	r.AuditExportedTotal.Add(float64(exported))
}
