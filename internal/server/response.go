package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/datasetforge/review-service/internal/domain"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Headers already sent; nothing useful to do.
		_ = err
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeDomainError maps domain sentinel errors to HTTP status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyFinalized):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrDuplicateReview):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrInsufficientBalance):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrInvalidAction), errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// Response types for JSON serialization.

type itemResponse struct {
	ID             string                 `json:"id"`
	ItemNumber     int                    `json:"item_number,omitempty"`
	DatasetTypeID  string                 `json:"dataset_type_id"`
	Language       string                 `json:"language"`
	Modality       string                 `json:"modality,omitempty"`
	Content        map[string]interface{} `json:"content"`
	Meta           map[string]interface{} `json:"meta,omitempty"`
	Status         string                 `json:"status"`
	ReviewCount    int                    `json:"review_count"`
	SkipCount      int                    `json:"skip_count"`
	CorrectSkips   int                    `json:"correct_skips"`
	UncheckedSkips int                    `json:"unchecked_skips"`
	Finalized      bool                   `json:"finalized"`
	IsGold         bool                   `json:"is_gold"`
	Flagged        bool                   `json:"flagged"`
	LockOwner      string                 `json:"lock_owner,omitempty"`
	LockTime       *time.Time             `json:"lock_time,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

type submissionResponse struct {
	ReviewLogID    string  `json:"review_log_id"`
	Action         string  `json:"action"`
	PayoutAmount   float64 `json:"payout_amount"`
	ItemFinalized  bool    `json:"item_finalized"`
	IsGold         bool    `json:"is_gold"`
	ReviewCount    int     `json:"review_count"`
	SkipCount      int     `json:"skip_count"`
	CorrectSkips   int     `json:"correct_skips"`
	UncheckedSkips int     `json:"unchecked_skips"`
}

type queueStatsResponse struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	InReview int64 `json:"in_review"`
}

type reviewerStatsResponse struct {
	TotalReviews int     `json:"total_reviews"`
	Approvals    int     `json:"approvals"`
	Skips        int     `json:"skips"`
	TotalEarned  float64 `json:"total_earned"`
}

type reviewerResponse struct {
	ID            string    `json:"id"`
	PayoutBalance float64   `json:"payout_balance"`
	ReviewsDone   int       `json:"reviews_done"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type reviewLogResponse struct {
	ID           string                 `json:"id"`
	ItemID       string                 `json:"item_id"`
	Action       string                 `json:"action"`
	Changes      map[string]interface{} `json:"changes,omitempty"`
	PayoutAmount float64                `json:"payout_amount"`
	SkipFeedback string                 `json:"skip_feedback,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type payoutResponse struct {
	ID            string     `json:"id"`
	ReviewerID    string     `json:"reviewer_id"`
	Amount        float64    `json:"amount"`
	PaymentMethod string     `json:"payment_method"`
	Status        string     `json:"status"`
	Note          string     `json:"note,omitempty"`
	RequestedAt   time.Time  `json:"requested_at"`
	ResolvedAt    *time.Time `json:"resolved_at,omitempty"`
}

type datasetTypeResponse struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Modality   string    `json:"modality"`
	PayoutRate float64   `json:"payout_rate"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type listResponse struct {
	Items      interface{} `json:"items"`
	TotalCount int64       `json:"total_count"`
}

type bulkCreateResponse struct {
	Created []itemResponse      `json:"created"`
	Errors  []bulkErrorResponse `json:"errors,omitempty"`
}

type bulkErrorResponse struct {
	Index int    `json:"index"`
	Error string `json:"error"`
}

// Converters

func itemToResponse(item *domain.DatasetItem) itemResponse {
	return itemResponse{
		ID:             item.ID.String(),
		ItemNumber:     item.ItemNumber,
		DatasetTypeID:  item.DatasetTypeID.String(),
		Language:       item.Language,
		Modality:       item.Modality,
		Content:        item.Content,
		Meta:           item.Meta,
		Status:         string(item.ReviewState.Status),
		ReviewCount:    item.ReviewState.ReviewCount,
		SkipCount:      item.ReviewState.SkipCount,
		CorrectSkips:   item.ReviewState.CorrectSkips,
		UncheckedSkips: item.ReviewState.UncheckedSkips,
		Finalized:      item.ReviewState.Finalized,
		IsGold:         item.IsGold,
		Flagged:        item.Flagged,
		LockOwner:      item.ReviewState.LockOwner,
		LockTime:       item.ReviewState.LockTime,
		CreatedAt:      item.CreatedAt,
		UpdatedAt:      item.UpdatedAt,
	}
}

func submissionToResponse(res *domain.SubmissionResult) submissionResponse {
	return submissionResponse{
		ReviewLogID:    res.ReviewLogID.String(),
		Action:         string(res.Action),
		PayoutAmount:   res.PayoutAmount,
		ItemFinalized:  res.ItemFinalized,
		IsGold:         res.IsGold,
		ReviewCount:    res.ReviewCount,
		SkipCount:      res.SkipCount,
		CorrectSkips:   res.CorrectSkips,
		UncheckedSkips: res.UncheckedSkips,
	}
}

func reviewLogToResponse(log *domain.ReviewLog) reviewLogResponse {
	return reviewLogResponse{
		ID:           log.ID.String(),
		ItemID:       log.ItemID.String(),
		Action:       string(log.Action),
		Changes:      log.Changes,
		PayoutAmount: log.PayoutAmount,
		SkipFeedback: log.SkipFeedback,
		CreatedAt:    log.CreatedAt,
	}
}

func payoutToResponse(p *domain.Payout) payoutResponse {
	return payoutResponse{
		ID:            p.ID.String(),
		ReviewerID:    p.ReviewerID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		Status:        string(p.Status),
		Note:          p.Note,
		RequestedAt:   p.RequestedAt,
		ResolvedAt:    p.ResolvedAt,
	}
}

func datasetTypeToResponse(dt *domain.DatasetType) datasetTypeResponse {
	return datasetTypeResponse{
		ID:         dt.ID.String(),
		Name:       dt.Name,
		Modality:   dt.Modality,
		PayoutRate: dt.PayoutRate,
		CreatedAt:  dt.CreatedAt,
		UpdatedAt:  dt.UpdatedAt,
	}
}
