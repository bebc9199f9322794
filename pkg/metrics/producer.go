package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// ProducerMetrics contains Prometheus metrics for the observation generator service.
type ProducerMetrics struct {
	MessagesGenerated  *prometheus.CounterVec
	GenerationFailures *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	ActiveProducers    prometheus.Gauge
}

// NewProducerMetrics creates and registers producer metrics.
func NewProducerMetrics(namespace string) *ProducerMetrics {
	m := &ProducerMetrics{
		MessagesGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "producer",
				Name:      "messages_generated_total",
				Help:      "Total number of observation messages generated",
			},
			[]string{"type"},
		),
		GenerationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "producer",
				Name:      "generation_failures_total",
				Help:      "Total number of observation generation failures",
			},
			[]string{"type", "reason"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "producer",
				Name:      "generation_duration_seconds",
				Help:      "Duration of observation generation operations",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"type"},
		),
		ActiveProducers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "producer",
				Name:      "active_producers",
				Help:      "Number of currently active producers",
			},
		),
	}

	MustRegister(
		m.MessagesGenerated,
		m.GenerationFailures,
		m.GenerationDuration,
		m.ActiveProducers,
	)

	return m
}
