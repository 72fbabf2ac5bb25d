package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/domain"
)

// ItemRepository handles dataset item persistence, claiming, and review
// state management.
type ItemRepository interface {
	// Create inserts a new dataset item.
	// Returns domain.ErrAlreadyExists if an item with the same ID exists,
	// or if the item number is already taken within the dataset type.
	Create(ctx context.Context, item *domain.DatasetItem) error

	// Get retrieves a dataset item by its ID.
	// Returns domain.ErrNotFound if no matching item exists.
	Get(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error)

	// GetForUpdate retrieves a dataset item with a SELECT FOR UPDATE row
	// lock. Must be called within a transaction; the lock is held until
	// the transaction commits or rolls back.
	// Returns domain.ErrNotFound if no matching item exists.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.DatasetItem, error)

	// Update persists all mutable fields of the item. Callers mutating
	// review state should hold the row lock via GetForUpdate first.
	// Returns domain.ErrNotFound if no matching item exists.
	Update(ctx context.Context, item *domain.DatasetItem) error

	// ClaimNext atomically selects and locks the next eligible item for
	// the claimer in a single statement. Eligible items are non-finalized,
	// not previously reviewed by the claimer, match the filter, and are
	// either pending or hold a lock older than the stale cutoff. Items are
	// ordered oldest first; rows locked by concurrent claimers are skipped.
	// Returns nil without error when no eligible item exists.
	ClaimNext(ctx context.Context, claim ClaimFilter) (*ClaimedItem, error)

	// Stats returns queue depth counts for non-finalized items matching
	// the filter.
	Stats(ctx context.Context, filter StatsFilter) (*domain.QueueStats, error)

	// ListFlagged returns flagged items ordered newest flag first, with
	// the total flagged count for pagination.
	ListFlagged(ctx context.Context, limit, offset int) ([]*domain.DatasetItem, int64, error)

	// ListUnnumbered returns IDs of items in the dataset type that have
	// no item number yet, ordered oldest first.
	ListUnnumbered(ctx context.Context, datasetTypeID uuid.UUID, limit int) ([]uuid.UUID, error)

	// SetItemNumber assigns a sequential number to an item.
	// Returns domain.ErrNotFound if no matching item exists, or
	// domain.ErrAlreadyExists if the number is taken within the type.
	SetItemNumber(ctx context.Context, id uuid.UUID, number int) error

	// SetModality sets the denormalized modality of an item.
	// Returns domain.ErrNotFound if no matching item exists.
	SetModality(ctx context.Context, id uuid.UUID, modality string) error
}

// ClaimFilter specifies the claimer identity and queue filters for ClaimNext.
type ClaimFilter struct {
	// ReviewerID is the claimer identity (required). Items already
	// reviewed by this identity are never returned.
	ReviewerID string

	// Languages narrows the queue to a set of language codes. Empty
	// means any language.
	Languages []string

	// DatasetTypeID narrows the queue to one dataset type (optional).
	DatasetTypeID *uuid.UUID

	// Modality narrows the queue to one modality (optional).
	Modality string

	// StaleBefore is the lock staleness cutoff. Items in review whose
	// lock predates this instant are eligible for reclamation.
	StaleBefore time.Time

	// Now is the lock acquisition timestamp recorded on the claimed row.
	Now time.Time
}

// Validate checks required fields and fills timestamp defaults.
func (f *ClaimFilter) Validate() error {
	if f.ReviewerID == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if f.Now.IsZero() {
		f.Now = time.Now().UTC()
	}
	return nil
}

// ClaimedItem is the result of a successful claim.
type ClaimedItem struct {
	Item *domain.DatasetItem

	// Reclaimed is true when the claim took over a stale lock rather
	// than a pending item.
	Reclaimed bool
}

// StatsFilter narrows queue statistics queries.
type StatsFilter struct {
	Languages     []string
	DatasetTypeID *uuid.UUID
	Modality      string
}
