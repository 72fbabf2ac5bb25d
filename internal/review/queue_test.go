package review

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datasetforge/review-service/internal/config"
	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/events"
	"github.com/datasetforge/review-service/internal/repository"
)

func newTestQueue(t *testing.T, cfg config.ReviewConfig) (*QueueService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	svc := NewQueueService(mock, events.NewEmitter("review-service"), cfg, zerolog.Nop(), nil)
	return svc, mock
}

// claimRows builds claim result rows including the prev_status column.
func claimRows(item *domain.DatasetItem, prevStatus string) *pgxmock.Rows {
	contentJSON, _ := json.Marshal(item.Content)
	metaJSON, _ := json.Marshal(item.Meta)
	flagsJSON, _ := json.Marshal(item.Flags)
	feedbackJSON, _ := json.Marshal(item.SkipFeedback)

	var itemNumber *int
	if item.ItemNumber != 0 {
		itemNumber = &item.ItemNumber
	}
	var modality, lockOwner *string
	if item.Modality != "" {
		modality = &item.Modality
	}
	if item.ReviewState.LockOwner != "" {
		lockOwner = &item.ReviewState.LockOwner
	}

	return pgxmock.NewRows([]string{
		"id", "item_number", "dataset_type_id", "language", "modality",
		"content", "meta", "status",
		"review_count", "skip_count", "correct_skips", "unchecked_skips",
		"finalized", "reviewed_by", "lock_owner", "lock_time",
		"is_gold", "flagged", "flags", "skip_feedback",
		"created_at", "updated_at", "prev_status",
	}).AddRow(
		item.ID, itemNumber, item.DatasetTypeID, item.Language, modality,
		contentJSON, metaJSON, string(item.ReviewState.Status),
		item.ReviewState.ReviewCount, item.ReviewState.SkipCount,
		item.ReviewState.CorrectSkips, item.ReviewState.UncheckedSkips,
		item.ReviewState.Finalized, item.ReviewState.ReviewedBy,
		lockOwner, item.ReviewState.LockTime,
		item.IsGold, item.Flagged, flagsJSON, feedbackJSON,
		item.CreatedAt, item.UpdatedAt, prevStatus,
	)
}

func TestQueueService_ClaimNext(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("claims and records the event", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})
		item := newQueueItem()
		item.ReviewState.Status = domain.StatusInReview
		item.ReviewState.LockOwner = "reviewer-1"
		item.ReviewState.LockTime = &now

		mock.ExpectQuery("WITH candidate AS").
			WithArgs("reviewer-1", []string{"en"}, pgxmock.AnyArg(), "", pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(claimRows(item, "pending"))
		mock.ExpectExec("INSERT INTO review_events").
			WithArgs(anyArgs(outboxInsertArgs)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		got, err := svc.ClaimNext(ctx, ClaimRequest{ReviewerID: "reviewer-1", Languages: []string{"en"}})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, item.ID, got.ID)
		assert.Equal(t, "reviewer-1", got.ReviewState.LockOwner)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns nil on empty queue", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})

		mock.ExpectQuery("WITH candidate AS").
			WithArgs(anyArgs(claimArgs)...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}))

		got, err := svc.ClaimNext(ctx, ClaimRequest{ReviewerID: "reviewer-1"})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("backfills missing modality from the dataset type", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})
		item := newQueueItem()
		item.Modality = ""
		item.ReviewState.Status = domain.StatusInReview
		item.ReviewState.LockOwner = "reviewer-1"
		item.ReviewState.LockTime = &now
		dt := newTestType(item.DatasetTypeID, 0.005)

		mock.ExpectQuery("WITH candidate AS").
			WithArgs(anyArgs(claimArgs)...).
			WillReturnRows(claimRows(item, "pending"))
		mock.ExpectQuery("SELECT .* FROM dataset_types WHERE id = \\$1").
			WithArgs(item.DatasetTypeID).
			WillReturnRows(typeRows(dt))
		mock.ExpectExec("UPDATE dataset_items SET modality").
			WithArgs("text", pgxmock.AnyArg(), item.ID).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec("INSERT INTO review_events").
			WithArgs(anyArgs(outboxInsertArgs)...).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		got, err := svc.ClaimNext(ctx, ClaimRequest{ReviewerID: "reviewer-1"})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "text", got.Modality)
	})

	t.Run("succeeds even when the claim event insert fails", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})
		item := newQueueItem()
		item.ReviewState.Status = domain.StatusInReview
		item.ReviewState.LockOwner = "reviewer-1"
		item.ReviewState.LockTime = &now

		mock.ExpectQuery("WITH candidate AS").
			WithArgs(anyArgs(claimArgs)...).
			WillReturnRows(claimRows(item, "pending"))
		mock.ExpectExec("INSERT INTO review_events").
			WithArgs(anyArgs(outboxInsertArgs)...).
			WillReturnError(assert.AnError)

		got, err := svc.ClaimNext(ctx, ClaimRequest{ReviewerID: "reviewer-1"})
		require.NoError(t, err)
		require.NotNil(t, got)
	})
}

func TestQueueService_Unlock(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("releases the owner's lock", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})
		item := newQueueItem()
		item.ReviewState.Status = domain.StatusInReview
		item.ReviewState.LockOwner = "reviewer-1"
		item.ReviewState.LockTime = &now

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM dataset_items WHERE id = \\$1 FOR UPDATE").
			WithArgs(item.ID).
			WillReturnRows(itemRows(item))
		mock.ExpectExec("UPDATE dataset_items SET").
			WithArgs(anyArgs(itemUpdateArgs)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := svc.Unlock(ctx, item.ID, "reviewer-1")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a non-owner", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})
		item := newQueueItem()
		item.ReviewState.Status = domain.StatusInReview
		item.ReviewState.LockOwner = "reviewer-1"
		item.ReviewState.LockTime = &now

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM dataset_items WHERE id = \\$1 FOR UPDATE").
			WithArgs(item.ID).
			WillReturnRows(itemRows(item))
		mock.ExpectRollback()

		err := svc.Unlock(ctx, item.ID, "reviewer-2")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects a finalized item", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})
		item := newQueueItem()
		item.ReviewState.Finalized = true
		item.ReviewState.Status = domain.StatusFinalized

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM dataset_items WHERE id = \\$1 FOR UPDATE").
			WithArgs(item.ID).
			WillReturnRows(itemRows(item))
		mock.ExpectRollback()

		err := svc.Unlock(ctx, item.ID, "reviewer-1")
		assert.ErrorIs(t, err, domain.ErrAlreadyFinalized)
	})
}

func TestQueueService_Flag(t *testing.T) {
	ctx := context.Background()

	t.Run("flags without touching the lifecycle", func(t *testing.T) {
		svc, mock := newTestQueue(t, config.ReviewConfig{})
		item := newQueueItem()

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT .* FROM dataset_items WHERE id = \\$1 FOR UPDATE").
			WithArgs(item.ID).
			WillReturnRows(itemRows(item))
		mock.ExpectExec("UPDATE dataset_items SET").
			WithArgs(anyArgs(itemUpdateArgs)...).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err := svc.Flag(ctx, item.ID, "reviewer-1", "pii", "contains a phone number")
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires a reason", func(t *testing.T) {
		svc, _ := newTestQueue(t, config.ReviewConfig{})

		err := svc.Flag(ctx, uuid.New(), "reviewer-1", "", "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestQueueService_Stats(t *testing.T) {
	ctx := context.Background()

	svc, mock := newTestQueue(t, config.ReviewConfig{})

	mock.ExpectQuery("SELECT COUNT\\(\\*\\)").
		WithArgs([]string{"en"}, pgxmock.AnyArg(), "").
		WillReturnRows(pgxmock.NewRows([]string{"total", "pending", "in_review"}).
			AddRow(int64(20), int64(15), int64(5)))

	stats, err := svc.Stats(ctx, repository.StatsFilter{Languages: []string{"en"}})
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.Total)
	assert.Equal(t, int64(15), stats.Pending)
	assert.Equal(t, int64(5), stats.InReview)
}
