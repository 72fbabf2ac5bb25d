package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/database"
	"github.com/datasetforge/review-service/internal/domain"
)

const outboxColumns = `id, aggregate_id, event_type, payload, status, attempts, last_error, created_at, published_at`

// PgOutboxRepository persists and claims outbox rows.
type PgOutboxRepository struct {
	db database.DBTX
}

// NewPgOutboxRepository creates a new PostgreSQL outbox repository.
// Pass a transaction to insert events atomically with a state change.
func NewPgOutboxRepository(db database.DBTX) *PgOutboxRepository {
	return &PgOutboxRepository{db: db}
}

// Insert writes an outbox event row.
func (r *PgOutboxRepository) Insert(ctx context.Context, event *domain.OutboxEvent) error {
	if event == nil {
		return fmt.Errorf("event cannot be nil")
	}

	query := `
		INSERT INTO review_events (
			id, aggregate_id, event_type, payload, status, attempts, last_error, created_at, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		event.ID, event.AggregateID, event.EventType, event.Payload,
		event.Status, event.Attempts, nullableString(event.LastError),
		event.CreatedAt, event.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outbox event: %w", err)
	}

	return nil
}

// ClaimPending locks and returns up to limit pending events, oldest first.
// Must be called within a transaction; rows stay locked until it ends, so
// concurrent publishers skip each other's batches.
func (r *PgOutboxRepository) ClaimPending(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := fmt.Sprintf(`
		SELECT %s FROM review_events
		WHERE status = 'pending'
		ORDER BY created_at, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, outboxColumns)

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending events: %w", err)
	}
	defer rows.Close()

	var events []*domain.OutboxEvent
	for rows.Next() {
		var event domain.OutboxEvent
		var lastError *string
		err := rows.Scan(
			&event.ID, &event.AggregateID, &event.EventType, &event.Payload,
			&event.Status, &event.Attempts, &lastError,
			&event.CreatedAt, &event.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox event: %w", err)
		}
		if lastError != nil {
			event.LastError = *lastError
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outbox events: %w", err)
	}

	return events, nil
}

// MarkPublished records successful delivery of an event.
func (r *PgOutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	query := `
		UPDATE review_events
		SET status = 'published', published_at = $2, last_error = NULL
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, publishedAt)
	if err != nil {
		return fmt.Errorf("failed to mark event published: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("outbox event", id.String())
	}

	return nil
}

// MarkFailed records a failed delivery attempt. The event stays pending for
// retry until attempts reach maxAttempts, after which it is parked as failed.
func (r *PgOutboxRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, maxAttempts int) error {
	query := `
		UPDATE review_events
		SET attempts = attempts + 1,
			last_error = $2,
			status = CASE WHEN attempts + 1 >= $3 THEN 'failed' ELSE 'pending' END
		WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id, lastError, maxAttempts)
	if err != nil {
		return fmt.Errorf("failed to mark event failed: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("outbox event", id.String())
	}

	return nil
}

// nullableString converts an empty string to nil for nullable text columns.
func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
