package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/events"
	"github.com/datasetforge/review-service/internal/observability"
	"github.com/datasetforge/review-service/internal/repository"
)

// ClaimRequest identifies the reviewer and optional queue filters for a
// claim attempt.
type ClaimRequest struct {
	ReviewerID    string
	Languages     []string
	DatasetTypeID *uuid.UUID
	Modality      string
}

// QueueService hands out review work. Claims are atomic: two reviewers
// asking at the same instant never receive the same item, and locks older
// than the configured timeout are silently reclaimed for the next caller.
type QueueService struct {
	db      DB
	emitter *events.Emitter
	cfg     config.ReviewConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewQueueService creates a new queue service.
func NewQueueService(db DB, emitter *events.Emitter, cfg config.ReviewConfig, logger zerolog.Logger, metrics *observability.Metrics) *QueueService {
	return &QueueService{
		db:      db,
		emitter: emitter,
		cfg:     cfg,
		logger:  logger.With().Str("component", "queue_service").Logger(),
		metrics: metrics,
	}
}

// ClaimNext assigns the oldest eligible item to the reviewer and returns
// it, or nil when the queue has nothing for them. Items the reviewer has
// already decided on are never offered back.
func (s *QueueService) ClaimNext(ctx context.Context, req ClaimRequest) (*domain.DatasetItem, error) {
	start := time.Now()

	now := time.Now().UTC()
	filter := repository.ClaimFilter{
		ReviewerID:    req.ReviewerID,
		Languages:     req.Languages,
		DatasetTypeID: req.DatasetTypeID,
		Modality:      req.Modality,
		StaleBefore:   now.Add(-lockTimeout(s.cfg)),
		Now:           now,
	}

	claimed, err := repository.NewPgItemRepository(s.db).ClaimNext(ctx, filter)
	if err != nil {
		return nil, err
	}
	if claimed == nil {
		if s.metrics != nil {
			s.metrics.RecordClaimEmpty(time.Since(start).Seconds())
		}
		return nil, nil
	}

	item := claimed.Item
	if item.Modality == "" {
		s.backfillModality(ctx, item)
	}

	if s.metrics != nil {
		s.metrics.RecordClaimIssued(item.Modality, claimed.Reclaimed, time.Since(start).Seconds())
	}

	s.emitClaimed(ctx, item, req.ReviewerID, claimed.Reclaimed, now)

	itemLogger := observability.WithItemContext(s.logger, item.ID.String(), item.DatasetTypeID.String())
	itemLogger.Info().
		Str("reviewer_id", req.ReviewerID).
		Bool("reclaimed", claimed.Reclaimed).
		Msg("item claimed")

	return item, nil
}

// backfillModality copies the dataset type's modality onto items created
// before the column existed. Failures only log; the claim already
// succeeded.
func (s *QueueService) backfillModality(ctx context.Context, item *domain.DatasetItem) {
	dt, err := repository.NewPgDatasetTypeRepository(s.db).Get(ctx, item.DatasetTypeID)
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID.String()).Msg("failed to resolve modality for claimed item")
		return
	}
	if dt.Modality == "" {
		return
	}
	if err := repository.NewPgItemRepository(s.db).SetModality(ctx, item.ID, dt.Modality); err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID.String()).Msg("failed to backfill item modality")
		return
	}
	item.Modality = dt.Modality
}

// emitClaimed records an item.claimed outbox event. Claim notifications
// are advisory, so insert failures only log.
func (s *QueueService) emitClaimed(ctx context.Context, item *domain.DatasetItem, reviewerID string, reclaimed bool, now time.Time) {
	event, err := s.emitter.Emit(item.ID.String(), domain.EventTypeItemClaimed, map[string]interface{}{
		"item_id":     item.ID,
		"reviewer_id": reviewerID,
		"reclaimed":   reclaimed,
		"claimed_at":  now,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID.String()).Msg("failed to build claim event")
		return
	}
	if err := events.NewPgOutboxRepository(s.db).Insert(ctx, event); err != nil {
		s.logger.Warn().Err(err).Str("item_id", item.ID.String()).Msg("failed to record claim event")
	}
}

// Unlock releases the reviewer's lock on an item without recording a
// decision. Only the lock owner may release it.
func (s *QueueService) Unlock(ctx context.Context, itemID uuid.UUID, reviewerID string) error {
	if reviewerID == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin unlock transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := repository.NewPgItemRepository(tx)

	item, err := items.GetForUpdate(ctx, itemID)
	if err != nil {
		return err
	}
	if item.ReviewState.Finalized || item.ReviewState.Status.IsTerminal() {
		return domain.NewAlreadyFinalizedError(item.ID.String())
	}
	if item.ReviewState.LockOwner != reviewerID {
		return domain.NewValidationError("reviewer_id", "item is not locked by this reviewer")
	}

	item.ReviewState.ClearLock()
	newStatus, err := domain.ValidateTransition(item.ReviewState.Status, domain.StatusPending)
	if err != nil {
		return err
	}
	item.ReviewState.Status = newStatus

	if err := items.Update(ctx, item); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit unlock: %w", err)
	}

	s.logger.Info().Str("item_id", itemID.String()).Str("reviewer_id", reviewerID).Msg("item unlocked")
	return nil
}

// Flag marks an item for manual inspection without affecting its review
// lifecycle. Flagged items keep circulating through the queue.
func (s *QueueService) Flag(ctx context.Context, itemID uuid.UUID, reviewerID, reason, note string) error {
	if reviewerID == "" {
		return domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if reason == "" {
		return domain.NewValidationError("reason", "flag reason is required")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin flag transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := repository.NewPgItemRepository(tx)

	item, err := items.GetForUpdate(ctx, itemID)
	if err != nil {
		return err
	}

	item.Flagged = true
	item.Flags = append(item.Flags, domain.FlagRecord{
		ReviewerID: reviewerID,
		Reason:     reason,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	})

	if err := items.Update(ctx, item); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit flag: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordItemFlagged()
	}
	s.logger.Info().Str("item_id", itemID.String()).Str("reviewer_id", reviewerID).Str("reason", reason).Msg("item flagged")
	return nil
}

// Stats returns queue depth counts for the given filters.
func (s *QueueService) Stats(ctx context.Context, filter repository.StatsFilter) (*domain.QueueStats, error) {
	stats, err := repository.NewPgItemRepository(s.db).Stats(ctx, filter)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
