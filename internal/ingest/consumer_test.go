package ingest_test

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/gorm"

	"farmsight.dev/farmsight/internal/ingest"
	"farmsight.dev/farmsight/pkg/mq/mock"
)

var _ = Describe("Consumer", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelError,
		}))
	})

	Describe("NewConsumer", func() {
		It("should reject a nil config", func() {
			consumer, err := ingest.NewConsumer(nil)
			Expect(err).To(HaveOccurred())
			Expect(consumer).To(BeNil())
		})

		It("should reject a missing logger", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				DB:          &gorm.DB{},
				RabbitMQURL: "amqp://localhost:5672",
				QueueName:   "observations",
			})
			Expect(err).To(HaveOccurred())
			Expect(consumer).To(BeNil())
		})

		It("should reject a missing database", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:      logger,
				RabbitMQURL: "amqp://localhost:5672",
				QueueName:   "observations",
			})
			Expect(err).To(HaveOccurred())
			Expect(consumer).To(BeNil())
		})

		It("should reject a missing rabbitmq URL when no client is injected", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:    logger,
				DB:        &gorm.DB{},
				QueueName: "observations",
			})
			Expect(err).To(HaveOccurred())
			Expect(consumer).To(BeNil())
		})

		It("should reject a missing queue name when no client is injected", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:      logger,
				DB:          &gorm.DB{},
				RabbitMQURL: "amqp://localhost:5672",
			})
			Expect(err).To(HaveOccurred())
			Expect(consumer).To(BeNil())
		})

		It("should accept an injected client without connection settings", func() {
			consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
				Logger:   logger,
				DB:       &gorm.DB{},
				MQClient: mock.NewMockClient(),
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(consumer).NotTo(BeNil())
		})
	})

	Describe("ObservationMessage", func() {
		It("should round-trip a categorical observation", func() {
			msg := ingest.ObservationMessage{
				Type:      ingest.TypeFertilityStatus,
				PigID:     7,
				Status:    "Pre-Heat",
				Timestamp: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			}

			payload, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())

			var decoded ingest.ObservationMessage
			Expect(json.Unmarshal(payload, &decoded)).To(Succeed())
			Expect(decoded).To(Equal(msg))
		})

		It("should omit unset subject fields on the wire", func() {
			msg := ingest.ObservationMessage{
				Type:     ingest.TypeTemperature,
				DeviceID: 3,
				Value:    21.5,
			}

			payload, err := json.Marshal(msg)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(payload)).NotTo(ContainSubstring("pigId"))
			Expect(string(payload)).NotTo(ContainSubstring("status"))
		})
	})
})
