package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewState is the embedded review-state sub-record of a DatasetItem.
// Counters are monotonically non-decreasing except on explicit unlock.
type ReviewState struct {
	// Status is the review lifecycle status.
	Status ItemStatus `json:"status"`

	// ReviewCount is the number of approve/edit decisions recorded.
	ReviewCount int `json:"review_count"`

	// SkipCount is the number of skip decisions recorded.
	SkipCount int `json:"skip_count"`

	// CorrectSkips counts skips submitted with the data-is-correct flag.
	CorrectSkips int `json:"correct_skips"`

	// UncheckedSkips counts skips submitted without the data-is-correct flag.
	UncheckedSkips int `json:"unchecked_skips"`

	// Finalized marks the item terminal. Once true, no further mutation of
	// review state, content, or counters is permitted.
	Finalized bool `json:"finalized"`

	// ReviewedBy lists reviewer identities that have already submitted a
	// decision on this item. Used for at-most-one-decision-per-reviewer
	// enforcement.
	ReviewedBy []string `json:"reviewed_by"`

	// LockOwner is the reviewer currently holding the item, empty when
	// unlocked. Non-empty if and only if Status == in_review.
	LockOwner string `json:"lock_owner,omitempty"`

	// LockTime is when the current lock was acquired, nil when unlocked.
	// A lock older than the configured timeout is stale and eligible for
	// reclamation by any claimer.
	LockTime *time.Time `json:"lock_time,omitempty"`
}

// HasReviewed reports whether the reviewer already appears in ReviewedBy.
func (s *ReviewState) HasReviewed(reviewerID string) bool {
	for _, r := range s.ReviewedBy {
		if r == reviewerID {
			return true
		}
	}
	return false
}

// AddReviewer appends the reviewer to ReviewedBy if not already present.
func (s *ReviewState) AddReviewer(reviewerID string) {
	if !s.HasReviewed(reviewerID) {
		s.ReviewedBy = append(s.ReviewedBy, reviewerID)
	}
}

// ClearLock releases the advisory reservation on the item.
func (s *ReviewState) ClearLock() {
	s.LockOwner = ""
	s.LockTime = nil
}

// FlagRecord is a reviewer-submitted flag attached to an item.
// Informational only; flags do not affect review-state transitions.
type FlagRecord struct {
	ReviewerID string    `json:"reviewer_id"`
	Reason     string    `json:"reason"`
	Note       string    `json:"note,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SkipFeedback is a free-text feedback record attached on skip.
type SkipFeedback struct {
	ReviewerID  string    `json:"reviewer_id"`
	Feedback    string    `json:"feedback"`
	DataCorrect bool      `json:"data_correct"`
	CreatedAt   time.Time `json:"created_at"`
}

// DatasetItem is a reviewable item with embedded review state.
type DatasetItem struct {
	ID uuid.UUID `json:"id"`

	// ItemNumber is a sequential integer, unique within a dataset type,
	// assigned once at creation and never reused. Zero means unassigned
	// (pre-existing items awaiting backfill).
	ItemNumber int `json:"item_number,omitempty"`

	// DatasetTypeID references the owning dataset type schema.
	DatasetTypeID uuid.UUID `json:"dataset_type_id"`

	// Language is the item's language code, used for queue filtering.
	Language string `json:"language"`

	// Modality is denormalized from the owning dataset type.
	Modality string `json:"modality,omitempty"`

	// Content is the schema-defined field-key -> value mapping. Mutated
	// only by edit actions, which merge field-level changes.
	Content map[string]interface{} `json:"content"`

	// Meta holds free-form item metadata.
	Meta map[string]interface{} `json:"meta,omitempty"`

	// ReviewState is the embedded review-state sub-record.
	ReviewState ReviewState `json:"review_state"`

	// IsGold is set true only when the correct-skip threshold is reached.
	IsGold bool `json:"is_gold"`

	// Flagged marks the item as having at least one reviewer flag.
	Flagged bool `json:"flagged"`

	// Flags lists reviewer-submitted flag records.
	Flags []FlagRecord `json:"flags,omitempty"`

	// SkipFeedback lists feedback records attached on skip.
	SkipFeedback []SkipFeedback `json:"skip_feedback,omitempty"`

	// CreatedAt is the immutable creation timestamp, used for FIFO
	// ordering.
	CreatedAt time.Time `json:"created_at"`

	UpdatedAt time.Time `json:"updated_at"`
}

// MergeContent applies field-level overwrites from changes into Content.
// Fields not present in changes are untouched.
func (i *DatasetItem) MergeContent(changes map[string]interface{}) {
	if len(changes) == 0 {
		return
	}
	if i.Content == nil {
		i.Content = make(map[string]interface{}, len(changes))
	}
	for k, v := range changes {
		i.Content[k] = v
	}
}

// NewDatasetItem constructs a pending item with zeroed counters.
func NewDatasetItem(datasetTypeID uuid.UUID, language string, content map[string]interface{}) *DatasetItem {
	now := time.Now().UTC()
	return &DatasetItem{
		ID:            uuid.New(),
		DatasetTypeID: datasetTypeID,
		Language:      language,
		Content:       content,
		ReviewState: ReviewState{
			Status:     StatusPending,
			ReviewedBy: []string{},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DatasetType is the owning schema record for items. Only the fields the
// review core consumes are modeled here.
type DatasetType struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Modality   string    `json:"modality"`
	PayoutRate float64   `json:"payout_rate"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// QueueStats is a snapshot of non-finalized queue depth.
type QueueStats struct {
	Total    int64 `json:"total_items"`
	Pending  int64 `json:"pending_items"`
	InReview int64 `json:"in_review"`
}
