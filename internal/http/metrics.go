package http

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsCollector provides Prometheus metrics for executions and decodes.
// It is safe for concurrent use; a nil collector records nothing.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	transportErrors *prometheus.CounterVec
	decodesTotal    *prometheus.CounterVec
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return &MetricsCollector{
		requestsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restclient_requests_total",
				Help: "Total number of executed requests",
			},
			[]string{"method", "status_code"},
		),
		requestDuration: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "restclient_request_duration_seconds",
				Help:    "Duration of executed requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		transportErrors: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restclient_transport_errors_total",
				Help: "Total number of executions that failed in the transport",
			},
			[]string{"method"},
		),
		decodesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "restclient_decodes_total",
				Help: "Total number of response decodes by format and result",
			},
			[]string{"format", "result"},
		),
	}
}

// RecordRequest records a completed execution.
func (m *MetricsCollector) RecordRequest(method string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordTransportError records an execution the transport could not complete.
func (m *MetricsCollector) RecordTransportError(method string) {
	if m == nil {
		return
	}
	m.transportErrors.WithLabelValues(method).Inc()
}

// RecordDecode records one decode attempt.
func (m *MetricsCollector) RecordDecode(format string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.decodesTotal.WithLabelValues(format, result).Inc()
}
