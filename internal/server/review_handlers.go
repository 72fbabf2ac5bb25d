package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/observability"
)

// maxRequestBodySize limits request bodies to 1 MB.
const maxRequestBodySize = 1 << 20

// submitReviewRequest is the JSON body for POST /api/v1/reviews.
type submitReviewRequest struct {
	ItemID          string                 `json:"item_id" validate:"required,uuid"`
	Action          string                 `json:"action" validate:"required,oneof=approve edit skip"`
	Changes         map[string]interface{} `json:"changes,omitempty"`
	SkipDataCorrect bool                   `json:"skip_data_correct,omitempty"`
	SkipFeedback    string                 `json:"skip_feedback,omitempty" validate:"max=4000"`
}

// flagRequest is the JSON body for POST /api/v1/reviews/flag.
type flagRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
	Reason string `json:"reason" validate:"required,max=200"`
	Note   string `json:"note,omitempty" validate:"max=4000"`
}

// unlockRequest is the JSON body for POST /api/v1/reviews/unlock.
type unlockRequest struct {
	ItemID string `json:"item_id" validate:"required,uuid"`
}

// decodeBody decodes and validates a JSON request body.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// submitReview handles POST /api/v1/reviews.
func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)

	var req submitReviewRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "item_id must be a valid UUID")
		return
	}

	result, err := s.engine.Submit(ctx, domain.Submission{
		ItemID:          itemID,
		ReviewerID:      reviewerID,
		Action:          domain.ReviewAction(req.Action),
		Changes:         req.Changes,
		SkipDataCorrect: req.SkipDataCorrect,
		SkipFeedback:    req.SkipFeedback,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, submissionToResponse(result))
}

// flagItem handles POST /api/v1/reviews/flag.
func (s *Server) flagItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)

	var req flagRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "item_id must be a valid UUID")
		return
	}

	if err := s.queue.Flag(ctx, itemID, reviewerID, req.Reason, req.Note); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "flagged"})
}

// unlockItem handles POST /api/v1/reviews/unlock.
func (s *Server) unlockItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)

	var req unlockRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "item_id must be a valid UUID")
		return
	}

	if err := s.queue.Unlock(ctx, itemID, reviewerID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unlocked"})
}

// reviewerStats handles GET /api/v1/reviews/stats.
func (s *Server) reviewerStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)

	stats, err := s.payouts.ReviewerStats(ctx, reviewerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reviewerStatsResponse{
		TotalReviews: stats.TotalReviews,
		Approvals:    stats.Approvals,
		Skips:        stats.Skips,
		TotalEarned:  stats.TotalEarned,
	})
}

// listReviews handles GET /api/v1/reviews.
func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)
	limit, offset := parsePagination(r)

	logs, total, err := s.payouts.ListReviews(ctx, reviewerID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]reviewLogResponse, len(logs))
	for i, log := range logs {
		out[i] = reviewLogToResponse(log)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: out, TotalCount: total})
}
