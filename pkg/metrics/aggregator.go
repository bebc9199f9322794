package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// AggregatorMetrics contains Prometheus metrics for the statistics aggregator.
type AggregatorMetrics struct {
	RunsTotal        *prometheus.CounterVec
	RunDuration      prometheus.Histogram
	RunsCoalesced    prometheus.Counter
	SnapshotPigs     prometheus.Gauge
	SnapshotDevices  prometheus.Gauge
	ChangeTriggers   prometheus.Counter
	PeriodicTriggers prometheus.Counter
}

// NewAggregatorMetrics creates and registers aggregator metrics.
func NewAggregatorMetrics(namespace string) *AggregatorMetrics {
	m := &AggregatorMetrics{
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "runs_total",
				Help:      "Total number of aggregation runs",
			},
			[]string{"status"}, // status: success, failure
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "run_duration_seconds",
				Help:      "Duration of aggregation runs",
				Buckets:   prometheus.DefBuckets,
			},
		),
		RunsCoalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "runs_coalesced_total",
				Help:      "Total number of triggers collapsed into an already-pending run",
			},
		),
		SnapshotPigs: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "snapshot_pigs",
				Help:      "Pig count in the most recent snapshot",
			},
		),
		SnapshotDevices: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "snapshot_devices",
				Help:      "Device count in the most recent snapshot",
			},
		),
		ChangeTriggers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "change_triggers_total",
				Help:      "Total number of change-event triggers received",
			},
		),
		PeriodicTriggers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "aggregator",
				Name:      "periodic_triggers_total",
				Help:      "Total number of timer triggers received",
			},
		),
	}

	MustRegister(
		m.RunsTotal,
		m.RunDuration,
		m.RunsCoalesced,
		m.SnapshotPigs,
		m.SnapshotDevices,
		m.ChangeTriggers,
		m.PeriodicTriggers,
	)

	return m
}
