package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/datasetforge/review-service/internal/domain"
)

const reviewLogColumns = `id, reviewer_id, item_id, action, changes,
		payout_amount, skip_data_correct, skip_feedback, created_at`

// Compile-time interface verification.
var _ ReviewLogRepository = (*PgReviewLogRepository)(nil)

// PgReviewLogRepository is a PostgreSQL implementation of ReviewLogRepository.
type PgReviewLogRepository struct {
	db DBTX
}

// NewPgReviewLogRepository creates a new PostgreSQL review log repository.
func NewPgReviewLogRepository(db DBTX) *PgReviewLogRepository {
	return &PgReviewLogRepository{db: db}
}

// Create inserts a new review log record.
func (r *PgReviewLogRepository) Create(ctx context.Context, log *domain.ReviewLog) error {
	if log == nil {
		return domain.NewValidationError("log", "log cannot be nil")
	}
	if log.ID == uuid.Nil {
		return domain.NewValidationError("id", "log ID is required")
	}
	if log.ReviewerID == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if log.ItemID == uuid.Nil {
		return domain.NewValidationError("item_id", "item ID is required")
	}

	var changesJSON []byte
	if log.Changes != nil {
		var err error
		changesJSON, err = json.Marshal(log.Changes)
		if err != nil {
			return fmt.Errorf("failed to marshal changes: %w", err)
		}
	}

	query := `
		INSERT INTO review_logs (
			id, reviewer_id, item_id, action, changes,
			payout_amount, skip_data_correct, skip_feedback, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(ctx, query,
		log.ID, log.ReviewerID, log.ItemID, log.Action, changesJSON,
		log.PayoutAmount, log.SkipDataCorrect, nullString(log.SkipFeedback), log.CreatedAt,
	)

	if err != nil {
		if isPgUniqueViolation(err) {
			return domain.NewAlreadyExistsError("review log", log.ID.String())
		}
		return fmt.Errorf("failed to create review log: %w", err)
	}

	return nil
}

// ListByReviewer returns the reviewer's log records newest first.
func (r *PgReviewLogRepository) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.ReviewLog, int64, error) {
	if reviewerID == "" {
		return nil, 0, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	applyPaginationDefaults(&limit, &offset)

	var total int64
	countQuery := `SELECT COUNT(*) FROM review_logs WHERE reviewer_id = $1`
	if err := r.db.QueryRow(ctx, countQuery, reviewerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count review logs: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM review_logs
		WHERE reviewer_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, reviewLogColumns)

	rows, err := r.db.Query(ctx, query, reviewerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list review logs: %w", err)
	}
	defer rows.Close()

	logs := make([]*domain.ReviewLog, 0, limit)
	for rows.Next() {
		log, err := scanReviewLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review log: %w", err)
		}
		logs = append(logs, log)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating review logs: %w", err)
	}

	return logs, total, nil
}

// StatsByReviewer aggregates the reviewer's decision history.
func (r *PgReviewLogRepository) StatsByReviewer(ctx context.Context, reviewerID string) (*domain.ReviewerStats, error) {
	if reviewerID == "" {
		return nil, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}

	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE action IN ('approve', 'edit')),
			COUNT(*) FILTER (WHERE action = 'skip'),
			COALESCE(SUM(payout_amount), 0)
		FROM review_logs
		WHERE reviewer_id = $1`

	var stats domain.ReviewerStats
	err := r.db.QueryRow(ctx, query, reviewerID).
		Scan(&stats.TotalReviews, &stats.Approvals, &stats.Skips, &stats.TotalEarned)
	if err != nil {
		return nil, fmt.Errorf("failed to get reviewer stats: %w", err)
	}

	return &stats, nil
}

// scanReviewLog scans the current pgx.Rows position into a ReviewLog.
func scanReviewLog(rows pgx.Rows) (*domain.ReviewLog, error) {
	var log domain.ReviewLog
	var changesJSON []byte
	var skipFeedback *string

	err := rows.Scan(
		&log.ID, &log.ReviewerID, &log.ItemID, &log.Action, &changesJSON,
		&log.PayoutAmount, &log.SkipDataCorrect, &skipFeedback, &log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if skipFeedback != nil {
		log.SkipFeedback = *skipFeedback
	}
	if len(changesJSON) > 0 {
		if err := json.Unmarshal(changesJSON, &log.Changes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
		}
	}

	return &log, nil
}
