package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewStateHasReviewed(t *testing.T) {
	state := ReviewState{ReviewedBy: []string{"alice", "bob"}}

	assert.True(t, state.HasReviewed("alice"))
	assert.True(t, state.HasReviewed("bob"))
	assert.False(t, state.HasReviewed("carol"))
}

func TestReviewStateAddReviewer(t *testing.T) {
	state := ReviewState{}

	state.AddReviewer("alice")
	state.AddReviewer("alice")
	state.AddReviewer("bob")

	assert.Equal(t, []string{"alice", "bob"}, state.ReviewedBy)
}

func TestReviewStateClearLock(t *testing.T) {
	now := time.Now().UTC()
	state := ReviewState{
		Status:    StatusInReview,
		LockOwner: "alice",
		LockTime:  &now,
	}

	state.ClearLock()

	assert.Empty(t, state.LockOwner)
	assert.Nil(t, state.LockTime)
}

func TestDatasetItemMergeContent(t *testing.T) {
	item := NewDatasetItem(uuid.New(), "en", map[string]interface{}{
		"headline": "Breaking News",
		"body":     "Story...",
	})

	item.MergeContent(map[string]interface{}{
		"headline": "Corrected Headline",
		"source":   "wire",
	})

	assert.Equal(t, "Corrected Headline", item.Content["headline"])
	assert.Equal(t, "Story...", item.Content["body"])
	assert.Equal(t, "wire", item.Content["source"])
}

func TestDatasetItemMergeContentNilContent(t *testing.T) {
	item := &DatasetItem{}

	item.MergeContent(map[string]interface{}{"field": "value"})

	require.NotNil(t, item.Content)
	assert.Equal(t, "value", item.Content["field"])
}

func TestNewDatasetItemDefaults(t *testing.T) {
	typeID := uuid.New()
	item := NewDatasetItem(typeID, "hi", map[string]interface{}{"text": "sample"})

	assert.NotEqual(t, uuid.Nil, item.ID)
	assert.Equal(t, typeID, item.DatasetTypeID)
	assert.Equal(t, "hi", item.Language)
	assert.Equal(t, StatusPending, item.ReviewState.Status)
	assert.Zero(t, item.ReviewState.ReviewCount)
	assert.Zero(t, item.ReviewState.SkipCount)
	assert.False(t, item.ReviewState.Finalized)
	assert.Empty(t, item.ReviewState.ReviewedBy)
	assert.False(t, item.IsGold)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestReviewActionIsValid(t *testing.T) {
	assert.True(t, ActionApprove.IsValid())
	assert.True(t, ActionEdit.IsValid())
	assert.True(t, ActionSkip.IsValid())
	assert.False(t, ReviewAction("reject").IsValid())
	assert.False(t, ReviewAction("").IsValid())
}

func TestErrorUnwrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "not found",
			err:      NewNotFoundError("item", "abc"),
			sentinel: ErrNotFound,
		},
		{
			name:     "already finalized",
			err:      NewAlreadyFinalizedError("abc"),
			sentinel: ErrAlreadyFinalized,
		},
		{
			name:     "duplicate review",
			err:      NewDuplicateReviewError("abc", "alice"),
			sentinel: ErrDuplicateReview,
		},
		{
			name:     "invalid transition",
			err:      NewInvalidTransitionError(StatusFinalized, StatusPending),
			sentinel: ErrInvalidTransition,
		},
		{
			name:     "invalid action",
			err:      NewInvalidActionError("reject"),
			sentinel: ErrInvalidAction,
		},
		{
			name:     "validation",
			err:      NewValidationError("amount", "must be positive"),
			sentinel: ErrInvalidInput,
		},
		{
			name:     "insufficient balance",
			err:      &InsufficientBalanceError{ReviewerID: "alice", Available: 1, Requested: 5},
			sentinel: ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}
