package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/domain"
)

// PayoutRepository manages payout request lifecycle.
type PayoutRepository interface {
	// Create inserts a new payout request.
	// Returns domain.ErrAlreadyExists if a payout with the same ID exists.
	Create(ctx context.Context, payout *domain.Payout) error

	// Get retrieves a payout request by ID.
	// Returns domain.ErrNotFound if no matching payout exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.Payout, error)

	// GetForUpdate retrieves a payout request with a SELECT FOR UPDATE row
	// lock. Must be called within a transaction.
	// Returns domain.ErrNotFound if no matching payout exists.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payout, error)

	// Update persists the payout's status, note, and resolution timestamp.
	// Returns domain.ErrNotFound if no matching payout exists.
	Update(ctx context.Context, payout *domain.Payout) error

	// ListByReviewer returns the reviewer's payout requests newest first,
	// with the total count for pagination.
	ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.Payout, int64, error)

	// ListByStatus returns payout requests in the given status oldest
	// first, with the total count for pagination.
	ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.Payout, int64, error)
}
