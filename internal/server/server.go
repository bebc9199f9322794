// Package server wires the record store, aggregation pipeline, ingestion
// consumer and real-time push transport into one HTTP-fronted process.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm"

	"farmsight.dev/farmsight/internal/hub"
	"farmsight.dev/farmsight/internal/ingest"
	"farmsight.dev/farmsight/internal/stats"
	"farmsight.dev/farmsight/internal/store"
	"farmsight.dev/farmsight/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

// Server runs the aggregation service: periodic and change-triggered
// recomputation, WebSocket fan-out, the pull API and queue ingestion.
type Server struct {
	logger     *slog.Logger
	config     *ServerConfig
	db         *gorm.DB
	hub        *hub.Hub
	consumer   *ingest.Consumer
	httpServer *http.Server
}

// ServerConfig holds the configuration for the Server.
type ServerConfig struct {
	Logger *slog.Logger

	// Database configuration
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// RabbitMQ configuration
	RabbitMQURL string
	QueueName   string

	// HTTP configuration
	HTTPPort int

	// Database port
	DBPort int

	// Interval between periodic aggregation runs. Zero means the default.
	Interval time.Duration

	// Optional Prometheus metrics collectors
	AggregatorMetrics *metrics.AggregatorMetrics
	HubMetrics        *metrics.HubMetrics
	IngestMetrics     *metrics.IngestMetrics
}

// NewServer creates a new Server instance.
func NewServer(cfg *ServerConfig) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("server config cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.RabbitMQURL == "" {
		return nil, errors.New("rabbitmq URL cannot be empty")
	}

	if cfg.QueueName == "" {
		return nil, errors.New("queue name cannot be empty")
	}

	if cfg.DBHost == "" {
		return nil, errors.New("database host cannot be empty")
	}

	if cfg.DBPort <= 0 {
		return nil, errors.New("database port must be positive")
	}

	if cfg.DBUser == "" {
		return nil, errors.New("database user cannot be empty")
	}

	if cfg.DBName == "" {
		return nil, errors.New("database name cannot be empty")
	}

	if cfg.HTTPPort <= 0 {
		return nil, errors.New("HTTP port must be positive")
	}

	return &Server{
		logger: cfg.Logger,
		config: cfg,
	}, nil
}

// Run starts the server and blocks until shutdown.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)

	// Initialize database
	db, err := store.NewDB(store.DBConfig{
		Host:     s.config.DBHost,
		Port:     s.config.DBPort,
		User:     s.config.DBUser,
		Password: s.config.DBPassword,
		DBName:   s.config.DBName,
		SSLMode:  s.config.DBSSLMode,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	s.db = db

	s.logger.Info("database initialized successfully")

	// Roster changes trigger immediate recomputation.
	notifier := store.NewNotifier(s.logger.With(slog.String("component", "notifier")))
	if err := notifier.Register(db); err != nil {
		return fmt.Errorf("failed to register change notifier: %w", err)
	}

	// Fan-out hub
	s.hub = hub.New(s.logger.With(slog.String("component", "hub")))
	if s.config.HubMetrics != nil {
		s.hub.SetMetrics(s.config.HubMetrics)
	}
	go s.hub.Run(ctx)

	// Aggregation pipeline
	source := stats.NewSource(db)
	aggregator := stats.NewAggregator(source, s.hub, s.logger.With(slog.String("component", "aggregator")))
	if s.config.AggregatorMetrics != nil {
		aggregator.SetMetrics(s.config.AggregatorMetrics)
	}

	scheduler := stats.NewScheduler(aggregator, s.config.Interval, s.logger.With(slog.String("component", "scheduler")))
	if s.config.AggregatorMetrics != nil {
		scheduler.SetMetrics(s.config.AggregatorMetrics)
	}
	go scheduler.Run(ctx)

	// Forward change triggers into the scheduler.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-notifier.C():
				scheduler.Notify()
			}
		}
	}()

	// Ingestion consumer
	consumer, err := ingest.NewConsumer(&ingest.ConsumerConfig{
		Logger:      s.logger.With(slog.String("component", "consumer")),
		DB:          db,
		RabbitMQURL: s.config.RabbitMQURL,
		QueueName:   s.config.QueueName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize consumer: %w", err)
	}
	if s.config.IngestMetrics != nil {
		consumer.SetMetrics(s.config.IngestMetrics)
	}
	s.consumer = consumer

	if err := s.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	// HTTP server
	handlers := NewHandlers(db, source, s.hub, s.logger.With(slog.String("component", "http")))
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:      handlers.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	httpErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "address", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			httpErr <- fmt.Errorf("HTTP server error: %w", err)
		}
		close(httpErr)
	}()

	s.logger.Info("server started successfully")

	// Wait for shutdown signal or HTTP error
	select {
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	case <-ctx.Done():
		s.logger.Info("context canceled")
	case err := <-httpErr:
		if err != nil {
			s.logger.Error("HTTP server error", "error", err)
			cancel()
			return err
		}
	}

	return s.Shutdown()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.logger.Info("shutting down server")

	var shutdownErr error

	if s.httpServer != nil {
		s.logger.Info("stopping HTTP server")
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("failed to stop HTTP server", "error", err)
			shutdownErr = fmt.Errorf("HTTP server shutdown error: %w", err)
		}
	}

	if s.consumer != nil {
		s.logger.Info("stopping consumer")
		if err := s.consumer.Stop(); err != nil {
			s.logger.Error("failed to stop consumer", "error", err)
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%w; consumer shutdown error: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("consumer shutdown error: %w", err)
			}
		}
	}

	if s.db != nil {
		s.logger.Info("closing database connection")
		if err := store.CloseDB(s.db); err != nil {
			s.logger.Error("failed to close database", "error", err)
			if shutdownErr != nil {
				shutdownErr = fmt.Errorf("%w; database close error: %w", shutdownErr, err)
			} else {
				shutdownErr = fmt.Errorf("database close error: %w", err)
			}
		}
	}

	if shutdownErr != nil {
		s.logger.Error("server shutdown completed with errors", "error", shutdownErr)
		return shutdownErr
	}

	s.logger.Info("server shutdown completed successfully")
	return nil
}
