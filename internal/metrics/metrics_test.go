package metrics

import (
	"errors"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)

	assert.NotNil(t, r.HTTPRequestsTotal)
	assert.NotNil(t, r.HTTPRequestDuration)
	assert.NotNil(t, r.TourMutationsTotal)
	assert.NotNil(t, r.GetPrometheusRegistry())
}

func TestRegistriesAreIndependent(t *testing.T) {
	r1 := NewRegistry()
	r2 := NewRegistry()

	r1.RecordTourMutation("CREATE", 1)

	var metric dto.Metric
	require.NoError(t, r2.TourMutationsTotal.WithLabelValues("CREATE").Write(&metric))
	assert.Zero(t, metric.GetCounter().GetValue())
}

func TestRecordHTTPRequest(t *testing.T) {
	r := NewRegistry()

	r.RecordHTTPRequest("GET", "/api/v1/tours", "200", 100*time.Millisecond, 512)
	r.RecordHTTPRequest("GET", "/api/v1/tours", "200", 50*time.Millisecond, 256)
	r.RecordHTTPRequest("GET", "/api/v1/tours/{id}", "404", 5*time.Millisecond, 64)

	counter, err := r.HTTPRequestsTotal.GetMetricWithLabelValues("GET", "/api/v1/tours", "200")
	require.NoError(t, err)

	var metric dto.Metric
	require.NoError(t, counter.Write(&metric))
	assert.Equal(t, 2.0, metric.GetCounter().GetValue())

	families, err := r.GetPrometheusRegistry().Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["natours_http_request_duration_seconds"])
	assert.True(t, names["natours_http_response_size_bytes"])
	assert.True(t, names["go_goroutines"])
}

func TestInFlight(t *testing.T) {
	r := NewRegistry()

	r.IncInFlight()
	r.IncInFlight()
	r.DecInFlight()

	var metric dto.Metric
	require.NoError(t, r.HTTPRequestsInFlight.Write(&metric))
	assert.Equal(t, 1.0, metric.GetGauge().GetValue())
}

func TestRecordAuditExport(t *testing.T) {
	r := NewRegistry()

	r.RecordAuditExport(3, nil)
	r.RecordAuditExport(0, errors.New("cursor closed"))

	var exported, failures dto.Metric
	require.NoError(t, r.AuditExportedTotal.Write(&exported))
	require.NoError(t, r.AuditExportFailures.Write(&failures))
	assert.Equal(t, 3.0, exported.GetCounter().GetValue())
	assert.Equal(t, 1.0, failures.GetCounter().GetValue())
}
