package server

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/datasetforge/review-service/internal/observability"
	"github.com/datasetforge/review-service/internal/repository"
	"github.com/datasetforge/review-service/internal/review"
)

// claimNext handles GET /api/v1/queue/next.
// Filters: languages (comma separated), dataset_type (uuid), modality.
// Responds 204 when the queue has nothing for this reviewer.
func (s *Server) claimNext(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	reviewerID := observability.ReviewerIDFromContext(ctx)

	req := review.ClaimRequest{
		ReviewerID: reviewerID,
		Languages:  splitQueryList(r.URL.Query().Get("languages")),
		Modality:   r.URL.Query().Get("modality"),
	}

	if raw := r.URL.Query().Get("dataset_type"); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dataset_type must be a valid UUID")
			return
		}
		req.DatasetTypeID = &typeID
	}

	item, err := s.queue.ClaimNext(ctx, req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if item == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, itemToResponse(item))
}

// queueStats handles GET /api/v1/queue/stats.
func (s *Server) queueStats(w http.ResponseWriter, r *http.Request) {
	filter := repository.StatsFilter{
		Languages: splitQueryList(r.URL.Query().Get("languages")),
		Modality:  r.URL.Query().Get("modality"),
	}
	if raw := r.URL.Query().Get("dataset_type"); raw != "" {
		typeID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "dataset_type must be a valid UUID")
			return
		}
		filter.DatasetTypeID = &typeID
	}

	stats, err := s.queue.Stats(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queueStatsResponse{
		Total:    stats.Total,
		Pending:  stats.Pending,
		InReview: stats.InReview,
	})
}

// splitQueryList splits a comma separated query value, dropping empties.
func splitQueryList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
