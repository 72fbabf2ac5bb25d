package domain

import (
	"time"

	"github.com/google/uuid"
)

// Outbox event types emitted by the review core.
const (
	EventTypeItemClaimed     = "item.claimed"
	EventTypeReviewSubmitted = "review.submitted"
	EventTypeItemFinalized   = "item.finalized"
	EventTypeItemGold        = "item.gold"
)

// OutboxStatus is the delivery status of an outbox event.
type OutboxStatus string

// Outbox event statuses.
const (
	OutboxStatusPending   OutboxStatus = "pending"
	OutboxStatusPublished OutboxStatus = "published"
	OutboxStatusFailed    OutboxStatus = "failed"
)

// OutboxEvent is a transactional outbox row. Events are inserted in the
// same transaction as the state change they describe and published
// asynchronously by the worker.
type OutboxEvent struct {
	ID          uuid.UUID    `json:"id"`
	AggregateID string       `json:"aggregate_id"`
	EventType   string       `json:"event_type"`
	Payload     []byte       `json:"payload"`
	Status      OutboxStatus `json:"status"`
	Attempts    int          `json:"attempts"`
	LastError   string       `json:"last_error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	PublishedAt *time.Time   `json:"published_at,omitempty"`
}

// ReviewSubmittedPayload is the payload for review.submitted events.
type ReviewSubmittedPayload struct {
	ItemID       uuid.UUID    `json:"item_id"`
	ReviewerID   string       `json:"reviewer_id"`
	Action       ReviewAction `json:"action"`
	PayoutAmount float64      `json:"payout_amount"`
	Finalized    bool         `json:"finalized"`
	IsGold       bool         `json:"is_gold"`
	SubmittedAt  time.Time    `json:"submitted_at"`
}
