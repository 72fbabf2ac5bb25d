package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/datasetforge/review-service/internal/domain"
)

// Compile-time interface verification.
var _ CounterRepository = (*PgCounterRepository)(nil)

// PgCounterRepository is a PostgreSQL implementation of CounterRepository.
type PgCounterRepository struct {
	db DBTX
}

// NewPgCounterRepository creates a new PostgreSQL counter repository.
func NewPgCounterRepository(db DBTX) *PgCounterRepository {
	return &PgCounterRepository{db: db}
}

// Next atomically increments and returns the counter for the dataset type.
func (r *PgCounterRepository) Next(ctx context.Context, datasetTypeID uuid.UUID) (int, error) {
	if datasetTypeID == uuid.Nil {
		return 0, domain.NewValidationError("dataset_type_id", "dataset type ID is required")
	}

	query := `
		INSERT INTO item_counters (dataset_type_id, current, updated_at)
		VALUES ($1, 1, $2)
		ON CONFLICT (dataset_type_id) DO UPDATE SET
			current = item_counters.current + 1,
			updated_at = EXCLUDED.updated_at
		RETURNING current`

	var current int
	if err := r.db.QueryRow(ctx, query, datasetTypeID, time.Now().UTC()).Scan(&current); err != nil {
		return 0, fmt.Errorf("failed to allocate item number: %w", err)
	}

	return current, nil
}

// Current returns the counter's current value without incrementing.
func (r *PgCounterRepository) Current(ctx context.Context, datasetTypeID uuid.UUID) (int, error) {
	if datasetTypeID == uuid.Nil {
		return 0, domain.NewValidationError("dataset_type_id", "dataset type ID is required")
	}

	var current int
	query := `SELECT current FROM item_counters WHERE dataset_type_id = $1`
	err := r.db.QueryRow(ctx, query, datasetTypeID).Scan(&current)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read item counter: %w", err)
	}

	return current, nil
}

// Set forces the counter to a specific value.
func (r *PgCounterRepository) Set(ctx context.Context, datasetTypeID uuid.UUID, value int) error {
	if datasetTypeID == uuid.Nil {
		return domain.NewValidationError("dataset_type_id", "dataset type ID is required")
	}
	if value < 0 {
		return domain.NewValidationError("value", "counter value cannot be negative")
	}

	query := `
		INSERT INTO item_counters (dataset_type_id, current, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (dataset_type_id) DO UPDATE SET
			current = EXCLUDED.current,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, datasetTypeID, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set item counter: %w", err)
	}

	return nil
}
