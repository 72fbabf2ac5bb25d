package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/observability"
)

// MessageWriter is the subset of kafka.Writer the publisher needs.
// Satisfied by *kafka.Writer; mock it in tests.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// txBeginner is satisfied by *database.DB and by pgxmock pools.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Publisher relays pending outbox rows to Kafka.
//
// Each poll claims a batch with FOR UPDATE SKIP LOCKED inside a
// transaction, writes the messages to the broker, and marks the rows
// published or failed before committing. Multiple publisher instances can
// run concurrently without duplicating work against the table, though
// broker delivery remains at-least-once.
type Publisher struct {
	db      txBeginner
	writer  MessageWriter
	cfg     config.OutboxConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewWriter builds a kafka.Writer from configuration.
func NewWriter(cfg config.KafkaConfig) *kafka.Writer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = 100 * time.Millisecond
	}

	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: batchTimeout,
		RequiredAcks: kafka.RequireAll,
	}
}

// NewPublisher creates a new outbox publisher.
func NewPublisher(db txBeginner, writer MessageWriter, cfg config.OutboxConfig, logger zerolog.Logger, metrics *observability.Metrics) *Publisher {
	return &Publisher{
		db:      db,
		writer:  writer,
		cfg:     cfg,
		logger:  logger.With().Str("component", "outbox_publisher").Logger(),
		metrics: metrics,
	}
}

// Run polls the outbox until the context is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	interval := p.cfg.PollInterval
	if interval <= 0 {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.logger.Info().Dur("poll_interval", interval).Msg("outbox publisher started")

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("outbox publisher stopped")
			return ctx.Err()
		case <-ticker.C:
			if published, err := p.ProcessBatch(ctx); err != nil {
				p.logger.Error().Err(err).Msg("outbox batch failed")
			} else if published > 0 {
				p.logger.Debug().Int("published", published).Msg("outbox batch published")
			}
		}
	}
}

// ProcessBatch claims and relays one batch of pending events.
// Returns the number of events successfully published.
func (p *Publisher) ProcessBatch(ctx context.Context) (int, error) {
	tx, err := p.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin outbox transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repo := NewPgOutboxRepository(tx)

	events, err := repo.ClaimPending(ctx, p.cfg.BatchSize)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return 0, tx.Commit(ctx)
	}

	published := 0
	for _, event := range events {
		msg := kafka.Message{
			Key:   []byte(event.AggregateID),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: "event_id", Value: []byte(event.ID.String())},
				{Key: "event_type", Value: []byte(event.EventType)},
			},
		}

		if writeErr := p.writer.WriteMessages(ctx, msg); writeErr != nil {
			p.logger.Warn().
				Err(writeErr).
				Str("event_id", event.ID.String()).
				Str("event_type", event.EventType).
				Int("attempts", event.Attempts+1).
				Msg("event delivery failed")

			if err := repo.MarkFailed(ctx, event.ID, writeErr.Error(), p.cfg.MaxAttempts); err != nil {
				return published, err
			}
			if p.metrics != nil && event.Attempts+1 >= p.cfg.MaxAttempts {
				p.metrics.RecordOutboxFailed()
			}
			continue
		}

		now := time.Now().UTC()
		if err := repo.MarkPublished(ctx, event.ID, now); err != nil {
			return published, err
		}
		if p.metrics != nil {
			p.metrics.RecordOutboxPublished(now.Sub(event.CreatedAt).Seconds())
		}
		published++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit outbox transaction: %w", err)
	}

	return published, nil
}
