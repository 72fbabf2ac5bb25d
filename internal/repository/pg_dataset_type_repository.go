package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/datasetforge/review-service/internal/domain"
)

const datasetTypeColumns = `id, name, modality, payout_rate, created_at, updated_at`

// Compile-time interface verification.
var _ DatasetTypeRepository = (*PgDatasetTypeRepository)(nil)

// PgDatasetTypeRepository is a PostgreSQL implementation of DatasetTypeRepository.
type PgDatasetTypeRepository struct {
	db DBTX
}

// NewPgDatasetTypeRepository creates a new PostgreSQL dataset type repository.
func NewPgDatasetTypeRepository(db DBTX) *PgDatasetTypeRepository {
	return &PgDatasetTypeRepository{db: db}
}

// Create inserts a new dataset type.
func (r *PgDatasetTypeRepository) Create(ctx context.Context, dt *domain.DatasetType) error {
	if dt == nil {
		return domain.NewValidationError("dataset_type", "dataset type cannot be nil")
	}
	if dt.ID == uuid.Nil {
		return domain.NewValidationError("id", "dataset type ID is required")
	}
	if dt.Name == "" {
		return domain.NewValidationError("name", "dataset type name is required")
	}
	if dt.PayoutRate < 0 {
		return domain.NewValidationError("payout_rate", "payout rate cannot be negative")
	}

	query := `
		INSERT INTO dataset_types (id, name, modality, payout_rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		dt.ID, dt.Name, nullString(dt.Modality), dt.PayoutRate, dt.CreatedAt, dt.UpdatedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("dataset type", dt.Name)
		}
		return fmt.Errorf("failed to create dataset type: %w", err)
	}

	return nil
}

// Get retrieves a dataset type by ID.
func (r *PgDatasetTypeRepository) Get(ctx context.Context, id uuid.UUID) (*domain.DatasetType, error) {
	query := fmt.Sprintf(`SELECT %s FROM dataset_types WHERE id = $1`, datasetTypeColumns)

	dt, err := scanDatasetType(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("dataset type", id.String())
		}
		return nil, fmt.Errorf("failed to get dataset type: %w", err)
	}

	return dt, nil
}

// GetByName retrieves a dataset type by its unique name.
func (r *PgDatasetTypeRepository) GetByName(ctx context.Context, name string) (*domain.DatasetType, error) {
	if name == "" {
		return nil, domain.NewValidationError("name", "dataset type name is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM dataset_types WHERE name = $1`, datasetTypeColumns)

	dt, err := scanDatasetType(r.db.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("dataset type", name)
		}
		return nil, fmt.Errorf("failed to get dataset type by name: %w", err)
	}

	return dt, nil
}

// List returns all dataset types ordered by name.
func (r *PgDatasetTypeRepository) List(ctx context.Context) ([]*domain.DatasetType, error) {
	query := fmt.Sprintf(`SELECT %s FROM dataset_types ORDER BY name`, datasetTypeColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list dataset types: %w", err)
	}
	defer rows.Close()

	var types []*domain.DatasetType
	for rows.Next() {
		var dt domain.DatasetType
		var modality *string
		if err := rows.Scan(&dt.ID, &dt.Name, &modality, &dt.PayoutRate, &dt.CreatedAt, &dt.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan dataset type: %w", err)
		}
		if modality != nil {
			dt.Modality = *modality
		}
		types = append(types, &dt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating dataset types: %w", err)
	}

	return types, nil
}

// scanDatasetType scans a single pgx.Row into a DatasetType.
func scanDatasetType(row pgx.Row) (*domain.DatasetType, error) {
	var dt domain.DatasetType
	var modality *string

	err := row.Scan(&dt.ID, &dt.Name, &modality, &dt.PayoutRate, &dt.CreatedAt, &dt.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if modality != nil {
		dt.Modality = *modality
	}

	return &dt, nil
}
