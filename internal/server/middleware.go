package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/time/rate"

	"github.com/datasetforge/review-service/internal/observability"
)

// reviewerIDHeader carries the caller's reviewer identity.
const reviewerIDHeader = "X-Reviewer-ID"

// reviewerIDMiddleware extracts the reviewer identity from the request
// header and stores it in the request context. Routes behind it require
// the header.
func reviewerIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reviewerID := strings.TrimSpace(r.Header.Get(reviewerIDHeader))
		if reviewerID == "" {
			writeError(w, http.StatusUnauthorized, "X-Reviewer-ID header is required")
			return
		}
		ctx := observability.WithReviewerID(r.Context(), reviewerID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requestLogger logs each request with its status and duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		// Propagate the request ID so service-layer logs can carry it.
		ctx := observability.WithRequestID(r.Context(), middleware.GetReqID(r.Context()))

		next.ServeHTTP(ww, r.WithContext(ctx))

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// claimLimiter applies a per-reviewer token bucket to claim requests so
// one client cannot starve the queue endpoint.
type claimLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

func newClaimLimiter(perSecond float64, burst int) *claimLimiter {
	if perSecond <= 0 {
		perSecond = 5
	}
	if burst <= 0 {
		burst = 10
	}
	return &claimLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(perSecond),
		burst:    burst,
	}
}

func (l *claimLimiter) limiterFor(reviewerID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, ok := l.limiters[reviewerID]
	if !ok {
		limiter = rate.NewLimiter(l.limit, l.burst)
		l.limiters[reviewerID] = limiter
	}
	return limiter
}

func (l *claimLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reviewerID := observability.ReviewerIDFromContext(r.Context())
		if reviewerID == "" {
			writeError(w, http.StatusUnauthorized, "X-Reviewer-ID header is required")
			return
		}
		if !l.limiterFor(reviewerID).Allow() {
			writeError(w, http.StatusTooManyRequests, "claim rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}
