package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/datasetforge/review-service/internal/domain"
)

const reviewerColumns = `id, payout_balance, reviews_done, created_at, updated_at`

// Compile-time interface verification.
var _ ReviewerRepository = (*PgReviewerRepository)(nil)

// PgReviewerRepository is a PostgreSQL implementation of ReviewerRepository.
type PgReviewerRepository struct {
	db DBTX
}

// NewPgReviewerRepository creates a new PostgreSQL reviewer repository.
func NewPgReviewerRepository(db DBTX) *PgReviewerRepository {
	return &PgReviewerRepository{db: db}
}

// Get retrieves a reviewer by ID.
func (r *PgReviewerRepository) Get(ctx context.Context, id string) (*domain.Reviewer, error) {
	if id == "" {
		return nil, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM reviewers WHERE id = $1`, reviewerColumns)

	reviewer, err := scanReviewer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("reviewer", id)
		}
		return nil, fmt.Errorf("failed to get reviewer: %w", err)
	}

	return reviewer, nil
}

// GetForUpdate retrieves a reviewer with a SELECT FOR UPDATE row lock.
func (r *PgReviewerRepository) GetForUpdate(ctx context.Context, id string) (*domain.Reviewer, error) {
	if id == "" {
		return nil, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}

	query := fmt.Sprintf(`SELECT %s FROM reviewers WHERE id = $1 FOR UPDATE`, reviewerColumns)

	reviewer, err := scanReviewer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("reviewer", id)
		}
		return nil, fmt.Errorf("failed to get reviewer for update: %w", err)
	}

	return reviewer, nil
}

// CreditEarnings atomically adds amount to the balance and increments the
// paid decision counter, inserting the reviewer row on first credit.
func (r *PgReviewerRepository) CreditEarnings(ctx context.Context, id string, amount float64) error {
	if id == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if amount < 0 {
		return domain.NewValidationError("amount", "credit amount cannot be negative")
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO reviewers (id, payout_balance, reviews_done, created_at, updated_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			payout_balance = reviewers.payout_balance + EXCLUDED.payout_balance,
			reviews_done = reviewers.reviews_done + 1,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, id, amount, now); err != nil {
		return fmt.Errorf("failed to credit reviewer earnings: %w", err)
	}

	return nil
}

// CreditBalance atomically adds amount to the balance without touching the
// decision counter.
func (r *PgReviewerRepository) CreditBalance(ctx context.Context, id string, amount float64) error {
	if id == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if amount < 0 {
		return domain.NewValidationError("amount", "credit amount cannot be negative")
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO reviewers (id, payout_balance, reviews_done, created_at, updated_at)
		VALUES ($1, $2, 0, $3, $3)
		ON CONFLICT (id) DO UPDATE SET
			payout_balance = reviewers.payout_balance + EXCLUDED.payout_balance,
			updated_at = EXCLUDED.updated_at`

	if _, err := r.db.Exec(ctx, query, id, amount, now); err != nil {
		return fmt.Errorf("failed to credit reviewer balance: %w", err)
	}

	return nil
}

// DebitBalance atomically subtracts amount from the balance, rejecting
// debits that would drive it negative.
func (r *PgReviewerRepository) DebitBalance(ctx context.Context, id string, amount float64) error {
	if id == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if amount <= 0 {
		return domain.NewValidationError("amount", "debit amount must be positive")
	}

	query := `
		UPDATE reviewers
		SET payout_balance = payout_balance - $2, updated_at = $3
		WHERE id = $1 AND payout_balance >= $2`

	result, err := r.db.Exec(ctx, query, id, amount, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to debit reviewer balance: %w", err)
	}

	if result.RowsAffected() == 0 {
		reviewer, getErr := r.Get(ctx, id)
		if getErr != nil {
			return getErr
		}
		return &domain.InsufficientBalanceError{
			ReviewerID: id,
			Available:  reviewer.PayoutBalance,
			Requested:  amount,
		}
	}

	return nil
}

// scanReviewer scans a single pgx.Row into a Reviewer.
func scanReviewer(row pgx.Row) (*domain.Reviewer, error) {
	var reviewer domain.Reviewer
	err := row.Scan(
		&reviewer.ID,
		&reviewer.PayoutBalance,
		&reviewer.ReviewsDone,
		&reviewer.CreatedAt,
		&reviewer.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &reviewer, nil
}
