package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics contains Prometheus metrics for the observation ingestion consumer.
type IngestMetrics struct {
	MessagesTotal      *prometheus.CounterVec
	ProcessingDuration *prometheus.HistogramVec
	StoreErrors        *prometheus.CounterVec
	ActiveConsumers    prometheus.Gauge
}

// NewIngestMetrics creates and registers ingestion metrics.
func NewIngestMetrics(namespace string) *IngestMetrics {
	m := &IngestMetrics{
		MessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "messages_total",
				Help:      "Total number of observation messages consumed",
			},
			[]string{"type", "status"}, // status: success, invalid, error
		),
		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "processing_duration_seconds",
				Help:      "Duration of observation message processing",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		StoreErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "store_errors_total",
				Help:      "Total number of record store write failures",
			},
			[]string{"type"},
		),
		ActiveConsumers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "ingest",
				Name:      "active_consumers",
				Help:      "Number of active observation consumers",
			},
		),
	}

	MustRegister(
		m.MessagesTotal,
		m.ProcessingDuration,
		m.StoreErrors,
		m.ActiveConsumers,
	)

	return m
}
