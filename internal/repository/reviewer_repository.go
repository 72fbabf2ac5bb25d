package repository

import (
	"context"

	"github.com/datasetforge/review-service/internal/domain"
)

// ReviewerRepository manages reviewer balances and counters.
//
// Credit and debit operations take a row lock on the reviewer for the
// duration of the enclosing transaction. Callers locking both an item and
// a reviewer must lock the item first to keep lock ordering consistent.
type ReviewerRepository interface {
	// Get retrieves a reviewer by ID.
	// Returns domain.ErrNotFound if the reviewer has never been credited.
	Get(ctx context.Context, id string) (*domain.Reviewer, error)

	// GetForUpdate retrieves a reviewer with a SELECT FOR UPDATE row lock.
	// Must be called within a transaction.
	// Returns domain.ErrNotFound if no matching reviewer exists.
	GetForUpdate(ctx context.Context, id string) (*domain.Reviewer, error)

	// CreditEarnings atomically adds amount to the reviewer's balance and
	// increments the paid decision counter, creating the reviewer row on
	// first credit.
	CreditEarnings(ctx context.Context, id string, amount float64) error

	// CreditBalance atomically adds amount to the reviewer's balance
	// without touching the decision counter. Used for payout refunds.
	CreditBalance(ctx context.Context, id string, amount float64) error

	// DebitBalance atomically subtracts amount from the reviewer's
	// balance. Returns domain.ErrInsufficientBalance if the balance would
	// go negative, or domain.ErrNotFound if no matching reviewer exists.
	DebitBalance(ctx context.Context, id string, amount float64) error
}
