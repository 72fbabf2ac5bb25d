package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/domain"
	"github.com/datasetforge/review-service/internal/observability"
)

// requestPayoutRequest is the JSON body for POST /api/v1/payouts.
type requestPayoutRequest struct {
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" validate:"required,max=100"`
}

// resolvePayoutRequest is the JSON body for POST /api/v1/payouts/{payoutID}/resolve.
type resolvePayoutRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected paid"`
	Note   string `json:"note,omitempty" validate:"max=4000"`
}

// requestPayout handles POST /api/v1/payouts.
func (s *Server) requestPayout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)

	var req requestPayoutRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	payout, err := s.payouts.Request(ctx, reviewerID, req.Amount, req.PaymentMethod)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, payoutToResponse(payout))
}

// listPayouts handles GET /api/v1/payouts for the calling reviewer.
func (s *Server) listPayouts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)
	limit, offset := parsePagination(r)

	payouts, total, err := s.payouts.ListByReviewer(ctx, reviewerID, limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]payoutResponse, len(payouts))
	for i, p := range payouts {
		out[i] = payoutToResponse(p)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: out, TotalCount: total})
}

// listPendingPayouts handles GET /api/v1/payouts/pending for operators.
func (s *Server) listPendingPayouts(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	payouts, total, err := s.payouts.ListPending(r.Context(), limit, offset)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	out := make([]payoutResponse, len(payouts))
	for i, p := range payouts {
		out[i] = payoutToResponse(p)
	}
	writeJSON(w, http.StatusOK, listResponse{Items: out, TotalCount: total})
}

// resolvePayout handles POST /api/v1/payouts/{payoutID}/resolve.
func (s *Server) resolvePayout(w http.ResponseWriter, r *http.Request) {
	payoutID, err := uuid.Parse(chi.URLParam(r, "payoutID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "payout ID must be a valid UUID")
		return
	}

	var req resolvePayoutRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	payout, err := s.payouts.Resolve(r.Context(), payoutID, domain.PayoutStatus(req.Status), req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, payoutToResponse(payout))
}

// getReviewer handles GET /api/v1/reviewers/me.
func (s *Server) getReviewer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)

	reviewer, err := s.payouts.GetReviewer(ctx, reviewerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, reviewerResponse{
		ID:            reviewer.ID,
		PayoutBalance: reviewer.PayoutBalance,
		ReviewsDone:   reviewer.ReviewsDone,
		CreatedAt:     reviewer.CreatedAt,
		UpdatedAt:     reviewer.UpdatedAt,
	})
}
