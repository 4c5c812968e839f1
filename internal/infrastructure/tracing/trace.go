package tracing

import (
	"context"

	"github.com/danielricci/mead-framework/internal/shared/id"
)

// contextKey keeps trace values out of collision with other packages.
type contextKey string

const traceIDKey contextKey = "trace_id"

// Header carries the trace id on inspector requests and responses.
const Header = "X-Trace-ID"

// NewTraceID generates a fresh req_-prefixed trace id.
func NewTraceID() id.TraceID {
	return id.NewTraceID()
}

// WithTraceID returns a context carrying the trace id.
func WithTraceID(ctx context.Context, traceID id.TraceID) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID retrieves the trace id from the context, or "" when absent.
func TraceID(ctx context.Context) id.TraceID {
	if traceID, ok := ctx.Value(traceIDKey).(id.TraceID); ok {
		return traceID
	}
	return ""
}
