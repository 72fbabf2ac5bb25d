// Package observability provides logging and metrics support for the
// review queue service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for claims, submissions, items, payouts, and the
//     outbox publisher
//   - Context helpers for propagating request and reviewer identity
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "stdout",
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("item_id", itemID).Msg("item claimed")
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("review_queue")
//
// Record metrics:
//
//	metrics.RecordClaimIssued("text", false, elapsed.Seconds())
//	metrics.RecordSubmission("approve", elapsed.Seconds())
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	ctx = observability.WithReviewerID(ctx, reviewerID)
//
//	reqID := observability.RequestIDFromContext(ctx)
//	reviewerID := observability.ReviewerIDFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - reviewer_id: Reviewer identity submitted with each request
//   - item_id: Dataset item identifier
//   - dataset_type_id: Dataset type identifier
//   - action: Review action (approve, edit, skip)
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
