package stats

import (
	"context"
	"log/slog"
	"time"

	"farmsight.dev/farmsight/pkg/metrics"
)

// DefaultInterval is the periodic refresh interval.
const DefaultInterval = 5 * time.Second

// Runner executes one aggregation run.
type Runner interface {
	Run(ctx context.Context) error
}

// Scheduler serializes aggregation runs. A single goroutine services both the
// periodic ticker and change triggers, so at most one run is ever in flight.
// The trigger channel holds one pending notification; further notifications
// while a run is pending coalesce into it.
type Scheduler struct {
	runner   Runner
	logger   *slog.Logger
	trigger  chan struct{}
	interval time.Duration
	metrics  *metrics.AggregatorMetrics
}

// NewScheduler creates a Scheduler. A non-positive interval falls back to
// DefaultInterval.
func NewScheduler(runner Runner, interval time.Duration, l *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Scheduler{
		runner:   runner,
		logger:   l,
		trigger:  make(chan struct{}, 1),
		interval: interval,
	}
}

// SetMetrics sets the metrics collector for this scheduler.
func (s *Scheduler) SetMetrics(m *metrics.AggregatorMetrics) {
	s.metrics = m
}

// Notify schedules an immediate run. It never blocks; if a run is already
// pending the notification coalesces into it.
func (s *Scheduler) Notify() {
	select {
	case s.trigger <- struct{}{}:
		if s.metrics != nil {
			s.metrics.ChangeTriggers.Inc()
		}
	default:
		if s.metrics != nil {
			s.metrics.RunsCoalesced.Inc()
		}
	}
}

// Run services triggers until the context is canceled. An initial run fires
// immediately so subscribers do not wait a full interval for first state.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			if s.metrics != nil {
				s.metrics.PeriodicTriggers.Inc()
			}
			s.runOnce(ctx)
		case <-s.trigger:
			s.runOnce(ctx)
		}
	}
}

// runOnce executes a single run bounded by the refresh interval. A failed or
// timed-out run is logged and skipped; the next trigger starts clean.
func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.interval)
	defer cancel()

	if err := s.runner.Run(runCtx); err != nil {
		s.logger.Error("aggregation run failed", "error", err)
	}
}
