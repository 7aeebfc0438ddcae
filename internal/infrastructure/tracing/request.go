package tracing

import (
	"context"

	"github.com/promptdeck/promptdeck/backend/internal/shared/id"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID returns a context carrying the request id.
func WithRequestID(ctx context.Context, rid id.RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

// FromContext returns the request id bound to ctx, or "" when absent.
func FromContext(ctx context.Context) id.RequestID {
	if rid, ok := ctx.Value(requestIDKey).(id.RequestID); ok {
		return rid
	}
	return ""
}
