package repository

import (
	"context"

	"github.com/datasetforge/review-service/internal/domain"
)

// ReviewLogRepository manages the append-only review audit log.
// Log records are never updated or deleted.
type ReviewLogRepository interface {
	// Create inserts a new review log record.
	// Returns domain.ErrAlreadyExists if a record with the same ID exists.
	Create(ctx context.Context, log *domain.ReviewLog) error

	// ListByReviewer returns the reviewer's log records newest first, with
	// the total count for pagination.
	ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.ReviewLog, int64, error)

	// StatsByReviewer aggregates the reviewer's decision history.
	// A reviewer with no recorded decisions yields zeroed stats.
	StatsByReviewer(ctx context.Context, reviewerID string) (*domain.ReviewerStats, error)
}
