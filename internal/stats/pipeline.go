package stats

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"farmsight.dev/farmsight/pkg/metrics"
)

// Broadcaster delivers one run's outputs to all connected subscribers.
// Delivery is fire-and-forget; a failed or missing client is not an error.
type Broadcaster interface {
	BroadcastStats(snapshot Snapshot)
	BroadcastDevices(devices []DeviceRow)
	BroadcastPigs(pigs []PigRow)
}

// Aggregator runs the full pipeline: read current state, compute a Snapshot,
// transform the entity lists and hand everything to the Broadcaster. A run
// that fails partway broadcasts nothing, so clients keep the last good state.
type Aggregator struct {
	source      *Source
	broadcaster Broadcaster
	logger      *slog.Logger
	metrics     *metrics.AggregatorMetrics
}

// NewAggregator creates an Aggregator.
func NewAggregator(source *Source, broadcaster Broadcaster, l *slog.Logger) *Aggregator {
	return &Aggregator{
		source:      source,
		broadcaster: broadcaster,
		logger:      l,
	}
}

// SetMetrics sets the metrics collector for this aggregator.
func (a *Aggregator) SetMetrics(m *metrics.AggregatorMetrics) {
	a.metrics = m
}

// Run executes one aggregation run.
func (a *Aggregator) Run(ctx context.Context) error {
	var timer *prometheus.Timer
	if a.metrics != nil {
		timer = prometheus.NewTimer(a.metrics.RunDuration)
		defer timer.ObserveDuration()
	}

	in, err := a.source.Collect(ctx)
	if err != nil {
		if a.metrics != nil {
			a.metrics.RunsTotal.WithLabelValues("failure").Inc()
		}
		return err
	}

	snapshot := Compute(in)
	now := time.Now()
	devices := TransformDevices(in.Devices, now)
	pigs := TransformPigs(in, now)

	a.broadcaster.BroadcastStats(snapshot)
	a.broadcaster.BroadcastDevices(devices)
	a.broadcaster.BroadcastPigs(pigs)

	if a.metrics != nil {
		a.metrics.RunsTotal.WithLabelValues("success").Inc()
		a.metrics.SnapshotPigs.Set(float64(snapshot.PigStats.TotalPigs))
		a.metrics.SnapshotDevices.Set(float64(snapshot.DeviceStats.TotalDevices))
	}

	a.logger.Debug("aggregation run complete",
		"pigs", snapshot.PigStats.TotalPigs,
		"devices", snapshot.DeviceStats.TotalDevices)
	return nil
}
