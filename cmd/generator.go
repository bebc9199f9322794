package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"farmsight.dev/farmsight/internal/producer"
	"farmsight.dev/farmsight/pkg/metrics"
)

var generatorCmd = &cobra.Command{
	Use:   "generator",
	Short: "Run the observation generator",
	Long: `Run the observation generator that:
- Generates synthetic herd and barn-climate observations
- Publishes observation messages to RabbitMQ
- Supports multiple concurrent producers`,
	RunE: runGenerator,
}

func init() {
	rootCmd.AddCommand(generatorCmd)

	// Generator-specific flags
	generatorCmd.Flags().String("rabbitmq-url", "amqp://localhost:5672", "RabbitMQ URL")
	generatorCmd.Flags().String("queue-name", "observations", "RabbitMQ queue name for observation messages")
	generatorCmd.Flags().Int("producer-count", 3, "Number of concurrent producers")
	generatorCmd.Flags().Duration("interval", 2*time.Second, "Interval between observation generation")
	generatorCmd.Flags().Int("pig-count", 40, "Number of pig ids to generate observations for")
	generatorCmd.Flags().Int("device-count", 40, "Number of device ids to generate observations for")

	// Bind flags to viper
	_ = viper.BindPFlag("generator.rabbitmq.url", generatorCmd.Flags().Lookup("rabbitmq-url"))
	_ = viper.BindPFlag("generator.rabbitmq.queue_name", generatorCmd.Flags().Lookup("queue-name"))
	_ = viper.BindPFlag("generator.producer_count", generatorCmd.Flags().Lookup("producer-count"))
	_ = viper.BindPFlag("generator.interval", generatorCmd.Flags().Lookup("interval"))
	_ = viper.BindPFlag("generator.pig_count", generatorCmd.Flags().Lookup("pig-count"))
	_ = viper.BindPFlag("generator.device_count", generatorCmd.Flags().Lookup("device-count"))
}

func runGenerator(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting generator service")

	// Create producer configuration from viper
	config := &producer.ServerConfig{
		Logger:        logger,
		RabbitMQURL:   viper.GetString("generator.rabbitmq.url"),
		QueueName:     viper.GetString("generator.rabbitmq.queue_name"),
		ProducerCount: viper.GetInt("generator.producer_count"),
		Interval:      viper.GetDuration("generator.interval"),
		PigCount:      viper.GetInt("generator.pig_count"),
		DeviceCount:   viper.GetInt("generator.device_count"),
		Metrics:       metrics.NewProducerMetrics("farmsight"),
		MQMetrics:     metrics.NewMQMetrics("farmsight"),
	}

	// Create and run server
	srv, err := producer.NewServer(config)
	if err != nil {
		logger.Error("failed to create generator server", "error", err)
		return err
	}

	logger.Info("generator server configuration",
		"rabbitmq_url", config.RabbitMQURL,
		"queue", config.QueueName,
		"producer_count", config.ProducerCount,
		"interval", config.Interval,
		"pig_count", config.PigCount,
		"device_count", config.DeviceCount,
	)

	if err := srv.Run(context.Background()); err != nil {
		logger.Error("generator server error", "error", err)
		return err
	}

	logger.Info("generator server stopped")
	return nil
}
