// Package main provides the entry point for the outbox publisher worker.
//
// The worker drains pending rows from the review_events outbox table and
// relays them to Kafka. It is deployed separately from the HTTP server so
// broker outages never slow down review traffic.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/database"
	"github.com/datasetforge/review-service/internal/events"
	"github.com/datasetforge/review-service/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if !cfg.Kafka.Enabled {
		return fmt.Errorf("kafka is disabled; the outbox worker has nothing to do")
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "worker").Logger()
	logger.Info().Msg("review-service outbox worker starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Set up metrics.
	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("review_service")
	}

	// Create the Kafka writer and the publisher.
	writer := events.NewWriter(cfg.Kafka)
	defer func() {
		if closeErr := writer.Close(); closeErr != nil {
			logger.Error().Err(closeErr).Msg("failed to close kafka writer")
		}
	}()
	logger.Info().
		Strs("brokers", cfg.Kafka.Brokers).
		Str("topic", cfg.Kafka.Topic).
		Msg("kafka writer created")

	publisher := events.NewPublisher(db, writer, cfg.Outbox, logger, metrics)

	// Poll until the shutdown signal arrives.
	if err := publisher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("outbox publisher error: %w", err)
	}

	logger.Info().Msg("review-service outbox worker shutdown complete")
	return nil
}
