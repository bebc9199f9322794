package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"

	"farmsight.dev/farmsight/internal/store"
	"farmsight.dev/farmsight/pkg/metrics"
	"farmsight.dev/farmsight/pkg/mq"
)

// Consumer consumes observation messages from RabbitMQ and persists them to
// PostgreSQL. Device and pig roster rows are touched as a side effect, which
// raises change triggers through the store notifier.
type Consumer struct {
	logger   *slog.Logger
	db       *gorm.DB
	mqClient mq.ClientInterface
	done     chan struct{}
	metrics  *metrics.IngestMetrics
}

// ConsumerConfig holds the configuration for the Consumer.
type ConsumerConfig struct {
	Logger      *slog.Logger
	DB          *gorm.DB
	RabbitMQURL string
	QueueName   string

	// MQClient overrides the RabbitMQ client, for testing. When nil a real
	// client is created from RabbitMQURL and QueueName.
	MQClient mq.ClientInterface
}

// NewConsumer creates a new Consumer instance.
func NewConsumer(cfg *ConsumerConfig) (*Consumer, error) {
	if cfg == nil {
		return nil, errors.New("consumer config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.DB == nil {
		return nil, errors.New("database cannot be nil")
	}

	mqClient := cfg.MQClient
	if mqClient == nil {
		if cfg.RabbitMQURL == "" {
			return nil, errors.New("rabbitmq URL cannot be empty")
		}
		if cfg.QueueName == "" {
			return nil, errors.New("queue name cannot be empty")
		}
		mqClient = mq.New(cfg.QueueName, cfg.RabbitMQURL, cfg.Logger)
	}

	return &Consumer{
		logger:   cfg.Logger,
		db:       cfg.DB,
		mqClient: mqClient,
		done:     make(chan struct{}),
	}, nil
}

// SetMetrics sets the metrics collector for this consumer.
func (c *Consumer) SetMetrics(m *metrics.IngestMetrics) {
	c.metrics = m
}

// Start begins consuming messages from RabbitMQ.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("starting consumer")

	// Wait for MQ client to be ready
	time.Sleep(2 * time.Second)

	deliveries, err := c.mqClient.Consume()
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consumer started, waiting for messages")

	if c.metrics != nil {
		c.metrics.ActiveConsumers.Inc()
	}

	go c.processMessages(ctx, deliveries)

	return nil
}

// processMessages processes incoming messages from the deliveries channel.
func (c *Consumer) processMessages(ctx context.Context, deliveries <-chan amqp.Delivery) {
	defer func() {
		if c.metrics != nil {
			c.metrics.ActiveConsumers.Dec()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("context canceled, stopping message processing")
			close(c.done)
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("deliveries channel closed")
				close(c.done)
				return
			}

			c.handleDelivery(ctx, delivery)
		}
	}
}

// handleDelivery processes a single message delivery. Malformed messages are
// acked and dropped; store failures nack with requeue.
func (c *Consumer) handleDelivery(ctx context.Context, delivery amqp.Delivery) {
	var msg ObservationMessage
	if err := json.Unmarshal(delivery.Body, &msg); err != nil {
		c.logger.Error("failed to unmarshal observation message",
			"error", err,
		)
		if c.metrics != nil {
			c.metrics.MessagesTotal.WithLabelValues("unknown", "malformed").Inc()
		}
		// Acknowledge message even on parse error to avoid reprocessing
		if ackErr := delivery.Ack(false); ackErr != nil {
			c.logger.Error("failed to ack message", "error", ackErr)
		}
		return
	}

	var timer *prometheus.Timer
	if c.metrics != nil {
		timer = prometheus.NewTimer(c.metrics.ProcessingDuration.WithLabelValues(msg.Type))
		defer timer.ObserveDuration()
	}

	if err := c.saveObservation(ctx, &msg); err != nil {
		c.logger.Error("failed to save observation",
			"type", msg.Type,
			"device_id", msg.DeviceID,
			"pig_id", msg.PigID,
			"error", err,
		)
		if c.metrics != nil {
			c.metrics.StoreErrors.WithLabelValues(msg.Type).Inc()
			c.metrics.MessagesTotal.WithLabelValues(msg.Type, "error").Inc()
		}
		// Nack the message so it can be reprocessed
		if nackErr := delivery.Nack(false, true); nackErr != nil {
			c.logger.Error("failed to nack message", "error", nackErr)
		}
		return
	}

	if c.metrics != nil {
		c.metrics.MessagesTotal.WithLabelValues(msg.Type, "success").Inc()
	}

	if err := delivery.Ack(false); err != nil {
		c.logger.Error("failed to ack message", "error", err)
		return
	}

	c.logger.Debug("observation saved",
		"type", msg.Type,
		"device_id", msg.DeviceID,
		"pig_id", msg.PigID,
	)
}

// saveObservation persists one observation and updates the owning roster row.
func (c *Consumer) saveObservation(ctx context.Context, msg *ObservationMessage) error {
	db := c.db.WithContext(ctx)
	ts := msg.Timestamp
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	switch msg.Type {
	case TypeTemperature:
		record := &store.TemperatureRecord{
			DeviceID:    msg.DeviceID,
			Temperature: msg.Value,
			Timestamp:   ts,
		}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create temperature record: %w", err)
		}
		return c.touchDevice(ctx, msg.DeviceID, msg.Value, ts)

	case TypeBCS:
		record := &store.BCSRecord{PigID: msg.PigID, Score: msg.Value, Timestamp: ts}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create bcs record: %w", err)
		}
		return c.touchPig(ctx, msg.PigID, map[string]any{"bcs_score": msg.Value, "last_update": ts})

	case TypePosture:
		record := &store.PostureRecord{PigID: msg.PigID, Score: int(msg.Value), Timestamp: ts}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create posture record: %w", err)
		}
		return nil

	case TypeHealthStatus:
		record := &store.HealthStatusRecord{PigID: msg.PigID, Status: msg.Status, Timestamp: ts}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create health status record: %w", err)
		}
		return c.touchPig(ctx, msg.PigID, map[string]any{"last_update": ts})

	case TypeFertilityStatus:
		record := &store.FertilityStatusRecord{PigID: msg.PigID, Status: msg.Status, Timestamp: ts}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create fertility status record: %w", err)
		}
		return c.touchPig(ctx, msg.PigID, map[string]any{"last_update": ts})

	case TypeHeatStatus:
		record := &store.HeatStatusRecord{PigID: msg.PigID, Status: msg.Status, Timestamp: ts}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create heat status record: %w", err)
		}
		return c.touchPig(ctx, msg.PigID, map[string]any{"last_update": ts})

	case TypeBreathRate:
		record := &store.BreathRateRecord{PigID: msg.PigID, Rate: msg.Value, Timestamp: ts}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create breath rate record: %w", err)
		}
		return nil

	case TypeVulvaSwelling:
		record := &store.VulvaSwellingRecord{PigID: msg.PigID, Value: msg.Status, Timestamp: ts}
		if err := db.Create(record).Error; err != nil {
			return fmt.Errorf("failed to create vulva swelling record: %w", err)
		}
		return nil

	default:
		// Unknown types are dropped, not retried.
		c.logger.Warn("unknown observation type", "type", msg.Type)
		return nil
	}
}

// touchDevice updates the device roster row for a fresh reading. A reading
// from an unknown device is kept; only the roster update is skipped.
func (c *Consumer) touchDevice(ctx context.Context, deviceID int64, temperature float64, ts time.Time) error {
	result := c.db.WithContext(ctx).Model(&store.Device{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]any{
			"status":      store.DeviceStatusOnline,
			"temperature": temperature,
			"last_update": ts,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		c.logger.Warn("reading from unknown device", "device_id", deviceID)
	}
	return nil
}

func (c *Consumer) touchPig(ctx context.Context, pigID int64, updates map[string]any) error {
	result := c.db.WithContext(ctx).Model(&store.Pig{}).
		Where("pig_id = ?", pigID).
		Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to update pig: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		c.logger.Warn("observation for unknown pig", "pig_id", pigID)
	}
	return nil
}

// Stop stops the consumer and closes the MQ client.
func (c *Consumer) Stop() error {
	c.logger.Info("stopping consumer")

	if err := c.mqClient.Close(); err != nil {
		return fmt.Errorf("failed to close mq client: %w", err)
	}

	<-c.done

	c.logger.Info("consumer stopped")
	return nil
}
