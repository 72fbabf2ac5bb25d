package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reviewer is the subset of the user entity the review core mutates.
type Reviewer struct {
	// ID is the opaque authenticated identity supplied by the caller.
	// The core does not authenticate, only records and credits it.
	ID string `json:"id"`

	// PayoutBalance is increased by submission credits and decreased by
	// payout requests.
	PayoutBalance float64 `json:"payout_balance"`

	// ReviewsDone counts paid decisions.
	ReviewsDone int `json:"reviews_done"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PayoutStatus is the lifecycle status of a payout request.
type PayoutStatus string

// Payout status values.
const (
	PayoutStatusPending  PayoutStatus = "pending"
	PayoutStatusApproved PayoutStatus = "approved"
	PayoutStatusRejected PayoutStatus = "rejected"
	PayoutStatusPaid     PayoutStatus = "paid"
)

// IsValid returns true if the status is one of the known values.
func (s PayoutStatus) IsValid() bool {
	switch s {
	case PayoutStatusPending, PayoutStatusApproved, PayoutStatusRejected, PayoutStatusPaid:
		return true
	}
	return false
}

// Payout is a reviewer's request to withdraw from their balance.
type Payout struct {
	ID            uuid.UUID    `json:"id"`
	ReviewerID    string       `json:"reviewer_id"`
	Amount        float64      `json:"amount"`
	PaymentMethod string       `json:"payment_method"`
	Status        PayoutStatus `json:"status"`
	Note          string       `json:"note,omitempty"`
	RequestedAt   time.Time    `json:"requested_at"`
	ResolvedAt    *time.Time   `json:"resolved_at,omitempty"`
}
