package observability

import (
	"context"
)

// Context keys for observability data.
type contextKey string

const (
	requestIDKey  contextKey = "request_id"
	reviewerIDKey contextKey = "reviewer_id"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns empty string if not present.
func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithReviewerID adds the reviewer identity to the context.
func WithReviewerID(ctx context.Context, reviewerID string) context.Context {
	return context.WithValue(ctx, reviewerIDKey, reviewerID)
}

// ReviewerIDFromContext retrieves the reviewer identity from context.
// Returns empty string if not present.
func ReviewerIDFromContext(ctx context.Context) string {
	if v := ctx.Value(reviewerIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}
