package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReviewAction is a reviewer decision on a claimed item.
type ReviewAction string

// Review action values.
const (
	ActionApprove ReviewAction = "approve"
	ActionEdit    ReviewAction = "edit"
	ActionSkip    ReviewAction = "skip"
)

// IsValid returns true if the action is one of approve/edit/skip.
func (a ReviewAction) IsValid() bool {
	switch a {
	case ActionApprove, ActionEdit, ActionSkip:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (a ReviewAction) String() string {
	return string(a)
}

// Submission is one reviewer action handed to the submission engine.
type Submission struct {
	ItemID     uuid.UUID
	ReviewerID string
	Action     ReviewAction

	// Changes holds field-level content overwrites, edit only.
	Changes map[string]interface{}

	// SkipDataCorrect marks a skip as confirming the data is correct.
	SkipDataCorrect bool

	// SkipFeedback is optional free-text feedback attached on skip.
	SkipFeedback string
}

// SubmissionResult reports the outcome of one submitted decision.
type SubmissionResult struct {
	ReviewLogID    uuid.UUID    `json:"review_log_id"`
	Action         ReviewAction `json:"action"`
	PayoutAmount   float64      `json:"payout_amount"`
	ItemFinalized  bool         `json:"item_finalized"`
	IsGold         bool         `json:"is_gold"`
	ReviewCount    int          `json:"review_count"`
	SkipCount      int          `json:"skip_count"`
	CorrectSkips   int          `json:"correct_skips"`
	UncheckedSkips int          `json:"unchecked_skips"`
}

// ReviewLog is an append-only audit record of one submitted decision.
// Never mutated after creation.
type ReviewLog struct {
	ID         uuid.UUID    `json:"id"`
	ReviewerID string       `json:"reviewer_id"`
	ItemID     uuid.UUID    `json:"item_id"`
	Action     ReviewAction `json:"action"`

	// Changes records the content overwrites applied, edit only.
	Changes map[string]interface{} `json:"changes,omitempty"`

	// PayoutAmount is the credit applied for this decision, zero for skip.
	PayoutAmount float64 `json:"payout_amount"`

	// SkipDataCorrect is set for skip actions only.
	SkipDataCorrect *bool `json:"skip_data_correct,omitempty"`

	// SkipFeedback is set for skip actions only.
	SkipFeedback string `json:"skip_feedback,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// ReviewerStats aggregates a reviewer's decision history from review logs.
type ReviewerStats struct {
	TotalReviews int     `json:"total_reviews"`
	Approvals    int     `json:"approvals"`
	Skips        int     `json:"skips"`
	TotalEarned  float64 `json:"total_earned"`
}
