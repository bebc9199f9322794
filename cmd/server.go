package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"farmsight.dev/farmsight/internal/server"
	"farmsight.dev/farmsight/pkg/metrics"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the aggregation server",
	Long: `Run the aggregation server that:
- Recomputes herd statistics every interval and on roster changes
- Pushes statistics and table views to WebSocket subscribers
- Consumes observation messages from RabbitMQ
- Persists data to PostgreSQL
- Serves the pull API over HTTP`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// Server-specific flags
	serverCmd.Flags().String("db-host", "localhost", "PostgreSQL host")
	serverCmd.Flags().Int("db-port", 5432, "PostgreSQL port")
	serverCmd.Flags().String("db-user", "postgres", "PostgreSQL user")
	serverCmd.Flags().String("db-password", "", "PostgreSQL password")
	serverCmd.Flags().String("db-name", "farmsight", "PostgreSQL database name")
	serverCmd.Flags().String("db-sslmode", "disable", "PostgreSQL SSL mode")
	serverCmd.Flags().String("rabbitmq-url", "amqp://localhost:5672", "RabbitMQ URL")
	serverCmd.Flags().String("queue-name", "observations", "RabbitMQ queue name for observation messages")
	serverCmd.Flags().Int("http-port", 8080, "HTTP server port")
	serverCmd.Flags().Duration("interval", 5*time.Second, "Interval between aggregation runs")

	// Bind flags to viper
	_ = viper.BindPFlag("server.db.host", serverCmd.Flags().Lookup("db-host"))
	_ = viper.BindPFlag("server.db.port", serverCmd.Flags().Lookup("db-port"))
	_ = viper.BindPFlag("server.db.user", serverCmd.Flags().Lookup("db-user"))
	_ = viper.BindPFlag("server.db.password", serverCmd.Flags().Lookup("db-password"))
	_ = viper.BindPFlag("server.db.name", serverCmd.Flags().Lookup("db-name"))
	_ = viper.BindPFlag("server.db.sslmode", serverCmd.Flags().Lookup("db-sslmode"))
	_ = viper.BindPFlag("server.rabbitmq.url", serverCmd.Flags().Lookup("rabbitmq-url"))
	_ = viper.BindPFlag("server.rabbitmq.queue_name", serverCmd.Flags().Lookup("queue-name"))
	_ = viper.BindPFlag("server.http.port", serverCmd.Flags().Lookup("http-port"))
	_ = viper.BindPFlag("server.interval", serverCmd.Flags().Lookup("interval"))
}

func runServer(_ *cobra.Command, _ []string) error {
	logger := GetLogger()
	logger.Info("starting server service")

	// Create server configuration from viper
	config := &server.ServerConfig{
		Logger:            logger,
		DBHost:            viper.GetString("server.db.host"),
		DBPort:            viper.GetInt("server.db.port"),
		DBUser:            viper.GetString("server.db.user"),
		DBPassword:        viper.GetString("server.db.password"),
		DBName:            viper.GetString("server.db.name"),
		DBSSLMode:         viper.GetString("server.db.sslmode"),
		RabbitMQURL:       viper.GetString("server.rabbitmq.url"),
		QueueName:         viper.GetString("server.rabbitmq.queue_name"),
		HTTPPort:          viper.GetInt("server.http.port"),
		Interval:          viper.GetDuration("server.interval"),
		AggregatorMetrics: metrics.NewAggregatorMetrics("farmsight"),
		HubMetrics:        metrics.NewHubMetrics("farmsight"),
		IngestMetrics:     metrics.NewIngestMetrics("farmsight"),
	}

	// Create and run server
	srv, err := server.NewServer(config)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return err
	}

	logger.Info("server configuration",
		"db_host", config.DBHost,
		"db_port", config.DBPort,
		"db_name", config.DBName,
		"rabbitmq_url", config.RabbitMQURL,
		"queue", config.QueueName,
		"http_port", config.HTTPPort,
		"interval", config.Interval,
	)

	if err := srv.Run(context.Background()); err != nil {
		logger.Error("server error", "error", err)
		return err
	}

	logger.Info("server stopped")
	return nil
}
