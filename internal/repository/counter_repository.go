package repository

import (
	"context"

	"github.com/google/uuid"
)

// CounterRepository manages per-type sequential item numbering.
//
// Numbers are allocated by a single atomic increment so that concurrent
// allocations within one dataset type can never observe the same value.
// Allocation is not transactional with item creation: a number consumed by
// a failed creation is simply never assigned, leaving a gap.
type CounterRepository interface {
	// Next atomically increments and returns the counter for the dataset
	// type, creating it at 1 on first use.
	Next(ctx context.Context, datasetTypeID uuid.UUID) (int, error)

	// Current returns the counter's current value without incrementing.
	// Returns 0 if the counter does not exist yet.
	Current(ctx context.Context, datasetTypeID uuid.UUID) (int, error)

	// Set forces the counter to a specific value. Used when backfilling
	// numbers for pre-existing items.
	// Returns domain.ErrInvalidInput if value is negative.
	Set(ctx context.Context, datasetTypeID uuid.UUID, value int) error
}
