package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/events"
	"github.com/datasetforge/review-service/internal/observability"
	"github.com/datasetforge/review-service/internal/repository"
)

// Submission failure reasons used as metric labels.
const (
	failReasonInvalidAction    = "invalid_action"
	failReasonNotFound         = "not_found"
	failReasonAlreadyFinalized = "already_finalized"
	failReasonDuplicate        = "duplicate_review"
	failReasonInternal         = "internal"
)

// Finalization path labels.
const (
	finalizePathReviews = "reviews"
	finalizePathSkips   = "skips"
)

// Engine atomically applies reviewer decisions to claimed items.
//
// Every submission runs in one transaction: the item row is locked first,
// then counters are advanced, content merged for edits, the audit log
// written, the reviewer credited, and outbox events inserted. If any step
// fails the whole decision rolls back and the item is untouched.
type Engine struct {
	db      DB
	emitter *events.Emitter
	cfg     config.ReviewConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewEngine creates a new submission engine.
func NewEngine(db DB, emitter *events.Emitter, cfg config.ReviewConfig, logger zerolog.Logger, metrics *observability.Metrics) *Engine {
	return &Engine{
		db:      db,
		emitter: emitter,
		cfg:     cfg,
		logger:  logger.With().Str("component", "review_engine").Logger(),
		metrics: metrics,
	}
}

// Submit applies one reviewer decision to an item.
//
// Decisions against finalized items return domain.ErrAlreadyFinalized, and
// a reviewer who already holds a recorded decision on the item gets
// domain.ErrDuplicateReview regardless of which action either decision
// used. A reviewer may submit on any non-finalized item they have not yet
// decided on, whether or not they hold its lock.
func (e *Engine) Submit(ctx context.Context, sub domain.Submission) (*domain.SubmissionResult, error) {
	start := time.Now()

	if sub.ReviewerID == "" {
		return nil, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}
	if !sub.Action.IsValid() {
		e.recordFailure(failReasonInvalidAction)
		return nil, domain.NewInvalidActionError(string(sub.Action))
	}

	tx, err := e.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin submission transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	items := repository.NewPgItemRepository(tx)

	item, err := items.GetForUpdate(ctx, sub.ItemID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.recordFailure(failReasonNotFound)
		}
		return nil, err
	}

	if item.ReviewState.Finalized || item.ReviewState.Status.IsTerminal() {
		e.recordFailure(failReasonAlreadyFinalized)
		return nil, domain.NewAlreadyFinalizedError(item.ID.String())
	}
	if item.ReviewState.HasReviewed(sub.ReviewerID) {
		e.recordFailure(failReasonDuplicate)
		return nil, domain.NewDuplicateReviewError(item.ID.String(), sub.ReviewerID)
	}

	rate, err := e.resolvePayoutRate(ctx, tx, item)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var payout float64
	finalized := false
	becameGold := false

	switch sub.Action {
	case domain.ActionSkip:
		state := &item.ReviewState
		state.SkipCount++
		if sub.SkipDataCorrect {
			state.CorrectSkips++
			if !item.IsGold && state.CorrectSkips >= goldSkipCorrectThreshold(e.cfg) {
				item.IsGold = true
				becameGold = true
				finalized = true
			}
		} else {
			state.UncheckedSkips++
		}
		if sub.SkipFeedback != "" {
			item.SkipFeedback = append(item.SkipFeedback, domain.SkipFeedback{
				ReviewerID:  sub.ReviewerID,
				Feedback:    sub.SkipFeedback,
				DataCorrect: sub.SkipDataCorrect,
				CreatedAt:   now,
			})
		}
		if !finalized && state.SkipCount >= skipThreshold(e.cfg) {
			finalized = true
		}

	case domain.ActionApprove, domain.ActionEdit:
		if sub.Action == domain.ActionEdit {
			item.MergeContent(sub.Changes)
		}
		item.ReviewState.ReviewCount++
		payout = rate
		finalized = item.ReviewState.ReviewCount >= finalizeReviewCount(e.cfg)
	}

	item.ReviewState.AddReviewer(sub.ReviewerID)
	item.ReviewState.ClearLock()

	target := domain.StatusPending
	if finalized {
		target = domain.StatusFinalized
	}
	newStatus, err := domain.ValidateTransition(item.ReviewState.Status, target)
	if err != nil {
		e.recordFailure(failReasonInternal)
		return nil, err
	}
	item.ReviewState.Status = newStatus
	item.ReviewState.Finalized = finalized

	if err := items.Update(ctx, item); err != nil {
		return nil, err
	}

	logEntry := &domain.ReviewLog{
		ID:           uuid.New(),
		ReviewerID:   sub.ReviewerID,
		ItemID:       item.ID,
		Action:       sub.Action,
		PayoutAmount: payout,
		CreatedAt:    now,
	}
	switch sub.Action {
	case domain.ActionEdit:
		logEntry.Changes = sub.Changes
	case domain.ActionSkip:
		dataCorrect := sub.SkipDataCorrect
		logEntry.SkipDataCorrect = &dataCorrect
		logEntry.SkipFeedback = sub.SkipFeedback
	}
	if err := repository.NewPgReviewLogRepository(tx).Create(ctx, logEntry); err != nil {
		return nil, err
	}

	// Reviewer row is locked after the item row, never before.
	if payout > 0 {
		if err := repository.NewPgReviewerRepository(tx).CreditEarnings(ctx, sub.ReviewerID, payout); err != nil {
			return nil, err
		}
	}

	if err := e.insertEvents(ctx, tx, item, sub, payout, finalized, becameGold, now); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit submission: %w", err)
	}

	e.recordSuccess(sub.Action, payout, finalized, becameGold, time.Since(start))

	subLogger := observability.WithSubmissionContext(e.logger, item.ID.String(), sub.ReviewerID, sub.Action.String())
	subLogger.Info().
		Str("request_id", observability.RequestIDFromContext(ctx)).
		Bool("finalized", finalized).
		Bool("gold", item.IsGold).
		Float64("payout", payout).
		Msg("review recorded")

	return &domain.SubmissionResult{
		ReviewLogID:    logEntry.ID,
		Action:         sub.Action,
		PayoutAmount:   payout,
		ItemFinalized:  finalized,
		IsGold:         item.IsGold,
		ReviewCount:    item.ReviewState.ReviewCount,
		SkipCount:      item.ReviewState.SkipCount,
		CorrectSkips:   item.ReviewState.CorrectSkips,
		UncheckedSkips: item.ReviewState.UncheckedSkips,
	}, nil
}

// resolvePayoutRate returns the dataset type's rate, or the configured
// default when the type is missing or carries no rate. It also backfills
// the item's denormalized modality while the type row is at hand.
func (e *Engine) resolvePayoutRate(ctx context.Context, tx pgx.Tx, item *domain.DatasetItem) (float64, error) {
	rate := fallbackPayoutRate(e.cfg)

	dt, err := repository.NewPgDatasetTypeRepository(tx).Get(ctx, item.DatasetTypeID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return rate, nil
		}
		return 0, err
	}

	if dt.PayoutRate > 0 {
		rate = dt.PayoutRate
	}
	if item.Modality == "" {
		item.Modality = dt.Modality
	}

	return rate, nil
}

// insertEvents writes the outbox rows for this decision.
func (e *Engine) insertEvents(ctx context.Context, tx pgx.Tx, item *domain.DatasetItem, sub domain.Submission, payout float64, finalized, becameGold bool, now time.Time) error {
	outbox := events.NewPgOutboxRepository(tx)

	submitted, err := e.emitter.Emit(item.ID.String(), domain.EventTypeReviewSubmitted, domain.ReviewSubmittedPayload{
		ItemID:       item.ID,
		ReviewerID:   sub.ReviewerID,
		Action:       sub.Action,
		PayoutAmount: payout,
		Finalized:    finalized,
		IsGold:       item.IsGold,
		SubmittedAt:  now,
	})
	if err != nil {
		return err
	}
	if err := outbox.Insert(ctx, submitted); err != nil {
		return err
	}

	if finalized {
		event, err := e.emitter.Emit(item.ID.String(), domain.EventTypeItemFinalized, map[string]interface{}{
			"item_id":      item.ID,
			"review_count": item.ReviewState.ReviewCount,
			"skip_count":   item.ReviewState.SkipCount,
			"is_gold":      item.IsGold,
		})
		if err != nil {
			return err
		}
		if err := outbox.Insert(ctx, event); err != nil {
			return err
		}
	}

	if becameGold {
		event, err := e.emitter.Emit(item.ID.String(), domain.EventTypeItemGold, map[string]interface{}{
			"item_id":       item.ID,
			"correct_skips": item.ReviewState.CorrectSkips,
		})
		if err != nil {
			return err
		}
		if err := outbox.Insert(ctx, event); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) recordFailure(reason string) {
	if e.metrics != nil {
		e.metrics.RecordSubmissionFailed(reason)
	}
}

func (e *Engine) recordSuccess(action domain.ReviewAction, payout float64, finalized, becameGold bool, elapsed time.Duration) {
	if e.metrics == nil {
		return
	}
	e.metrics.RecordSubmission(action.String(), elapsed.Seconds())
	if finalized {
		path := finalizePathReviews
		if action == domain.ActionSkip {
			path = finalizePathSkips
		}
		e.metrics.RecordItemFinalized(path)
	}
	if becameGold {
		e.metrics.RecordItemGold()
	}
	if payout > 0 {
		e.metrics.RecordPayoutCredited(payout)
	}
}
