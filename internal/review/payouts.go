package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/observability"
	"github.com/datasetforge/review-service/internal/repository"
)

// PayoutService moves earned balance out of the system. Requesting a
// payout debits the reviewer's balance up front; rejecting the request
// refunds it.
type PayoutService struct {
	db      DB
	cfg     config.ReviewConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewPayoutService creates a new payout service.
func NewPayoutService(db DB, cfg config.ReviewConfig, logger zerolog.Logger, metrics *observability.Metrics) *PayoutService {
	return &PayoutService{
		db:      db,
		cfg:     cfg,
		logger:  logger.With().Str("component", "payout_service").Logger(),
		metrics: metrics,
	}
}

// Request creates a pending payout and debits the reviewer's balance.
// The debit and the payout row commit together, so a crash between them
// cannot strand money.
func (s *PayoutService) Request(ctx context.Context, reviewerID string, amount float64, paymentMethod string) (*domain.Payout, error) {
	if reviewerID == "" {
		return nil, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if paymentMethod == "" {
		return nil, domain.NewValidationError("payment_method", "payment method is required")
	}
	if min := s.minPayoutThreshold(); amount < min {
		return nil, domain.NewValidationError("amount", fmt.Sprintf("amount must be at least %.2f", min))
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin payout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := repository.NewPgReviewerRepository(tx).DebitBalance(ctx, reviewerID, amount); err != nil {
		return nil, err
	}

	payout := &domain.Payout{
		ID:            uuid.New(),
		ReviewerID:    reviewerID,
		Amount:        amount,
		PaymentMethod: paymentMethod,
		Status:        domain.PayoutStatusPending,
		RequestedAt:   time.Now().UTC(),
	}
	if err := repository.NewPgPayoutRepository(tx).Create(ctx, payout); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payout request: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPayoutRequest(string(domain.PayoutStatusPending))
	}
	reviewerLogger := observability.WithReviewerContext(s.logger, reviewerID)
	reviewerLogger.Info().
		Str("payout_id", payout.ID.String()).
		Float64("amount", amount).
		Msg("payout requested")

	return payout, nil
}

// Resolve moves a payout to its next status. Pending payouts may be
// approved or rejected, and approved payouts may be marked paid.
// Rejection refunds the debited amount to the reviewer.
func (s *PayoutService) Resolve(ctx context.Context, payoutID uuid.UUID, status domain.PayoutStatus, note string) (*domain.Payout, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", "unknown payout status")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin resolve transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	payouts := repository.NewPgPayoutRepository(tx)

	payout, err := payouts.GetForUpdate(ctx, payoutID)
	if err != nil {
		return nil, err
	}
	if !validPayoutResolution(payout.Status, status) {
		return nil, domain.NewValidationError("status", fmt.Sprintf("cannot move payout from %s to %s", payout.Status, status))
	}

	if status == domain.PayoutStatusRejected {
		if err := repository.NewPgReviewerRepository(tx).CreditBalance(ctx, payout.ReviewerID, payout.Amount); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	payout.Status = status
	payout.Note = note
	payout.ResolvedAt = &now

	if err := payouts.Update(ctx, payout); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit payout resolution: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordPayoutRequest(string(status))
	}
	reviewerLogger := observability.WithReviewerContext(s.logger, payout.ReviewerID)
	reviewerLogger.Info().
		Str("payout_id", payout.ID.String()).
		Str("status", string(status)).
		Msg("payout resolved")

	return payout, nil
}

// ListByReviewer returns a reviewer's payout history, newest first.
func (s *PayoutService) ListByReviewer(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.Payout, int64, error) {
	return repository.NewPgPayoutRepository(s.db).ListByReviewer(ctx, reviewerID, limit, offset)
}

// ListPending returns pending payouts, oldest first, for operator
// processing.
func (s *PayoutService) ListPending(ctx context.Context, limit, offset int) ([]*domain.Payout, int64, error) {
	return repository.NewPgPayoutRepository(s.db).ListByStatus(ctx, domain.PayoutStatusPending, limit, offset)
}

// GetReviewer returns a reviewer's balance record.
func (s *PayoutService) GetReviewer(ctx context.Context, reviewerID string) (*domain.Reviewer, error) {
	return repository.NewPgReviewerRepository(s.db).Get(ctx, reviewerID)
}

// ReviewerStats returns a reviewer's lifetime review statistics.
func (s *PayoutService) ReviewerStats(ctx context.Context, reviewerID string) (*domain.ReviewerStats, error) {
	return repository.NewPgReviewLogRepository(s.db).StatsByReviewer(ctx, reviewerID)
}

// ListReviews returns a reviewer's decision history, newest first.
func (s *PayoutService) ListReviews(ctx context.Context, reviewerID string, limit, offset int) ([]*domain.ReviewLog, int64, error) {
	return repository.NewPgReviewLogRepository(s.db).ListByReviewer(ctx, reviewerID, limit, offset)
}

func (s *PayoutService) minPayoutThreshold() float64 {
	if s.cfg.MinPayoutThreshold > 0 {
		return s.cfg.MinPayoutThreshold
	}
	return defaultMinPayoutThreshold
}

// validPayoutResolution reports whether a payout may move between the
// two statuses.
func validPayoutResolution(from, to domain.PayoutStatus) bool {
	switch from {
	case domain.PayoutStatusPending:
		return to == domain.PayoutStatusApproved || to == domain.PayoutStatusRejected
	case domain.PayoutStatusApproved:
		return to == domain.PayoutStatusPaid
	default:
		return false
	}
}
