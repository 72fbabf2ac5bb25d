package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/domain"
)

// DatasetTypeRepository manages dataset type schemas.
type DatasetTypeRepository interface {
	// Create inserts a new dataset type.
	// Returns domain.ErrAlreadyExists on ID or name collision.
	Create(ctx context.Context, dt *domain.DatasetType) error

	// Get retrieves a dataset type by ID.
	// Returns domain.ErrNotFound if no matching type exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.DatasetType, error)

	// GetByName retrieves a dataset type by its unique name.
	// Returns domain.ErrNotFound if no matching type exists.
	GetByName(ctx context.Context, name string) (*domain.DatasetType, error)

	// List returns all dataset types ordered by name.
	List(ctx context.Context) ([]*domain.DatasetType, error)
}
