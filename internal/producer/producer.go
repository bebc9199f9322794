// Package producer generates synthetic herd observations and publishes them
// to the observation queue.
package producer

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"farmsight.dev/farmsight/internal/ingest"
	"farmsight.dev/farmsight/pkg/generator"
	"farmsight.dev/farmsight/pkg/metrics"
	"farmsight.dev/farmsight/pkg/mq"
)

var observationTypes = []string{
	ingest.TypeTemperature,
	ingest.TypeBCS,
	ingest.TypePosture,
	ingest.TypeHealthStatus,
	ingest.TypeFertilityStatus,
	ingest.TypeHeatStatus,
	ingest.TypeBreathRate,
	ingest.TypeVulvaSwelling,
}

// Producer publishes observation messages for a fixed population of pigs and
// devices.
// Note: Uses math/rand for subject selection which is acceptable for simulation data.
type Producer struct {
	MQClient  mq.ClientInterface
	PigIDs    []int64
	DeviceIDs []int64
	gen       *generator.HerdGenerator
	metrics   *metrics.ProducerMetrics
}

// NewProducer creates a producer for the given populations.
func NewProducer(mqClient mq.ClientInterface, pigIDs, deviceIDs []int64) *Producer {
	return &Producer{
		MQClient:  mqClient,
		PigIDs:    pigIDs,
		DeviceIDs: deviceIDs,
		gen:       generator.NewHerdGenerator(),
	}
}

// SetMetrics sets the metrics collector for this producer.
func (p *Producer) SetMetrics(m *metrics.ProducerMetrics) {
	p.metrics = m
}

// RandomObservation generates one observation of a random type for a random
// subject and publishes it.
func (p *Producer) RandomObservation(ctx context.Context) error {
	now := time.Now().UTC()
	obsType := observationTypes[rand.Intn(len(observationTypes))] // #nosec G404 - weak random is acceptable for simulation

	var timer *prometheus.Timer
	if p.metrics != nil {
		timer = prometheus.NewTimer(p.metrics.GenerationDuration.WithLabelValues(obsType))
		defer timer.ObserveDuration()
	}

	msg := ingest.ObservationMessage{
		Type:      obsType,
		Timestamp: now,
	}

	switch obsType {
	case ingest.TypeTemperature:
		msg.DeviceID = p.DeviceIDs[rand.Intn(len(p.DeviceIDs))] // #nosec G404
		msg.Value = p.gen.Temperature(now)
	case ingest.TypeBCS:
		msg.PigID = p.PigIDs[rand.Intn(len(p.PigIDs))] // #nosec G404
		msg.Value = p.gen.BCS(msg.PigID)
	case ingest.TypePosture:
		msg.PigID = p.PigIDs[rand.Intn(len(p.PigIDs))] // #nosec G404
		msg.Value = float64(p.gen.Posture())
	case ingest.TypeHealthStatus:
		msg.PigID = p.PigIDs[rand.Intn(len(p.PigIDs))] // #nosec G404
		msg.Status = p.gen.HealthStatus()
	case ingest.TypeFertilityStatus:
		msg.PigID = p.PigIDs[rand.Intn(len(p.PigIDs))] // #nosec G404
		msg.Status = p.gen.FertilityStatus()
	case ingest.TypeHeatStatus:
		msg.PigID = p.PigIDs[rand.Intn(len(p.PigIDs))] // #nosec G404
		msg.Status = p.gen.HeatStatus()
	case ingest.TypeBreathRate:
		msg.PigID = p.PigIDs[rand.Intn(len(p.PigIDs))] // #nosec G404
		msg.Value = p.gen.BreathRate()
	case ingest.TypeVulvaSwelling:
		msg.PigID = p.PigIDs[rand.Intn(len(p.PigIDs))] // #nosec G404
		msg.Status = p.gen.VulvaSwelling()
	}

	message, err := json.Marshal(msg)
	if err != nil {
		if p.metrics != nil {
			p.metrics.GenerationFailures.WithLabelValues(obsType, "marshal_error").Inc()
		}
		return err
	}

	if err := p.MQClient.Push(ctx, message); err != nil {
		if p.metrics != nil {
			p.metrics.GenerationFailures.WithLabelValues(obsType, "push_error").Inc()
		}
		return err
	}

	if p.metrics != nil {
		p.metrics.MessagesGenerated.WithLabelValues(obsType).Inc()
	}

	return nil
}
