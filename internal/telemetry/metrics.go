package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CarrierErrors   *prometheus.CounterVec
	SessionLookups  *prometheus.CounterVec
	SkippedRecords  prometheus.Counter
}

// NewMetrics creates metrics and registers them with reg. A nil reg uses
// the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delicom_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "delicom_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delicom_carrier_errors_total",
				Help: "Total carrier errors by carrier and error type",
			},
			[]string{"carrier", "error_type"},
		),
		SessionLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "delicom_session_lookups_total",
				Help: "Session cache lookups by result (hit, miss, refresh, error)",
			},
			[]string{"result"},
		),
		SkippedRecords: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "delicom_skipped_records_total",
				Help: "Parcel shop records dropped during normalization",
			},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// SessionLookup counts a session cache lookup.
func (m *Metrics) SessionLookup(result string) {
	m.SessionLookups.WithLabelValues(result).Inc()
}

// RecordsSkipped counts malformed parcel shop records.
func (m *Metrics) RecordsSkipped(n int) {
	m.SkippedRecords.Add(float64(n))
}
