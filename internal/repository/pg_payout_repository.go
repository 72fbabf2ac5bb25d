package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/datasetforge/review-service/internal/domain"
)

const payoutColumns = `id, reviewer_id, amount, payment_method, status, note, requested_at, resolved_at`

// Compile-time interface verification.
var _ PayoutRepository = (*PgPayoutRepository)(nil)

// PgPayoutRepository is a PostgreSQL implementation of PayoutRepository.
type PgPayoutRepository struct {
	db DBTX
}

// NewPgPayoutRepository creates a new PostgreSQL payout repository.
func NewPgPayoutRepository(db DBTX) *PgPayoutRepository {
	return &PgPayoutRepository{db: db}
}

// Create inserts a new payout request.
func (r *PgPayoutRepository) Create(ctx context.Context, payout *domain.Payout) error {
	if payout == nil {
		return domain.NewValidationError("payout", "payout cannot be nil")
	}
	if payout.ID == uuid.Nil {
		return domain.NewValidationError("id", "payout ID is required")
	}
	if payout.ReviewerID == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if payout.Amount <= 0 {
		return domain.NewValidationError("amount", "payout amount must be positive")
	}
	if !payout.Status.IsValid() {
		return domain.NewValidationError("status", "unknown payout status")
	}

	query := `
		INSERT INTO payouts (
			id, reviewer_id, amount, payment_method, status, note, requested_at, resolved_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.Exec(ctx, query,
		payout.ID, payout.ReviewerID, payout.Amount, payout.PaymentMethod,
		payout.Status, nullString(payout.Note), payout.RequestedAt, payout.ResolvedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("payout", payout.ID.String())
		}
		return fmt.Errorf("failed to create payout: %w", err)
	}

	return nil
}

// Get retrieves a payout request by ID.
func (r *PgPayoutRepository) Get(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	query := fmt.Sprintf(`SELECT %s FROM payouts WHERE id = $1`, payoutColumns)

	payout, err := scanPayoutRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("payout", id.String())
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}

	return payout, nil
}

// GetForUpdate retrieves a payout request with a SELECT FOR UPDATE row lock.
func (r *PgPayoutRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*domain.Payout, error) {
	query := fmt.Sprintf(`SELECT %s FROM payouts WHERE id = $1 FOR UPDATE`, payoutColumns)

	payout, err := scanPayoutRow(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("payout", id.String())
		}
		return nil, fmt.Errorf("failed to get payout for update: %w", err)
	}

	return payout, nil
}

// Update persists the payout's status, note, and resolution timestamp.
func (r *PgPayoutRepository) Update(ctx context.Context, payout *domain.Payout) error {
	if payout == nil {
		return domain.NewValidationError("payout", "payout cannot be nil")
	}
	if !payout.Status.IsValid() {
		return domain.NewValidationError("status", "unknown payout status")
	}

	query := `
		UPDATE payouts SET status = $1, note = $2, resolved_at = $3
		WHERE id = $4`

	result, err := r.db.Exec(ctx, query,
		payout.Status, nullString(payout.Note), payout.ResolvedAt, payout.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payout: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("payout", payout.ID.String())
	}

	return nil
}

// ListByReviewer returns the reviewer's payout requests newest first.
func (r *PgPayoutRepository) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.Payout, int64, error) {
	if reviewerID == "" {
		return nil, 0, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}

	return r.list(ctx,
		`reviewer_id = $1`, `requested_at DESC`, reviewerID, limit, offset)
}

// ListByStatus returns payout requests in the given status oldest first.
func (r *PgPayoutRepository) ListByStatus(ctx context.Context, status domain.PayoutStatus, limit, offset int) ([]*domain.Payout, int64, error) {
	if !status.IsValid() {
		return nil, 0, domain.NewValidationError("status", "unknown payout status")
	}

	return r.list(ctx,
		`status = $1`, `requested_at ASC`, status, limit, offset)
}

// list runs a filtered payout query with a matching total count.
func (r *PgPayoutRepository) list(ctx context.Context, where, order string, arg interface{}, limit, offset int) ([]*domain.Payout, int64, error) {
	applyPaginationDefaults(&limit, &offset)

	var total int64
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM payouts WHERE %s`, where)
	if err := r.db.QueryRow(ctx, countQuery, arg).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payouts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM payouts
		WHERE %s
		ORDER BY %s
		LIMIT $2 OFFSET $3`, payoutColumns, where, order)

	rows, err := r.db.Query(ctx, query, arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payouts: %w", err)
	}
	defer rows.Close()

	payouts := make([]*domain.Payout, 0, limit)
	for rows.Next() {
		payout, err := scanPayoutFromRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payout: %w", err)
		}
		payouts = append(payouts, payout)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating payouts: %w", err)
	}

	return payouts, total, nil
}

// payoutScanDest holds the destination pointers for scanning a Payout row.
type payoutScanDest struct {
	payout domain.Payout
	note   *string
}

func (d *payoutScanDest) destinations() []interface{} {
	return []interface{}{
		&d.payout.ID, &d.payout.ReviewerID, &d.payout.Amount, &d.payout.PaymentMethod,
		&d.payout.Status, &d.note, &d.payout.RequestedAt, &d.payout.ResolvedAt,
	}
}

func (d *payoutScanDest) finalize() *domain.Payout {
	if d.note != nil {
		d.payout.Note = *d.note
	}
	return &d.payout
}

// scanPayoutRow scans a single pgx.Row into a Payout.
func scanPayoutRow(row pgx.Row) (*domain.Payout, error) {
	var dest payoutScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}

// scanPayoutFromRows scans the current pgx.Rows position into a Payout.
func scanPayoutFromRows(rows pgx.Rows) (*domain.Payout, error) {
	var dest payoutScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize(), nil
}
