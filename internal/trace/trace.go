package trace

import (
	"context"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
)

// Context key type is unexported so callers cannot collide with it.
type ctxKey string

const ctxKeyTrace ctxKey = "trace_info"

// Info carries tracing state for one user interaction (a chat send, an
// upload, a session operation). RequestID is unique per interaction;
// spanSeq increments for every outbound backend call made on its behalf.
type Info struct {
	RequestID string
	spanSeq   int64
}

// GenerateID returns a fresh random id for tracing.
func GenerateID() string {
	return uuid.NewString()
}

// WithRequest stores a new trace Info on the context with the given
// request id and a span sequence starting at zero.
func WithRequest(ctx context.Context, requestID string) context.Context {
	info := &Info{RequestID: requestID}
	return context.WithValue(ctx, ctxKeyTrace, info)
}

// NewRequest is shorthand for WithRequest with a generated id.
func NewRequest(ctx context.Context) context.Context {
	return WithRequest(ctx, GenerateID())
}

func infoFromContext(ctx context.Context) *Info {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(ctxKeyTrace).(*Info)
	return v
}

// RequestIDFromContext returns the request id stored on the context,
// or the empty string when the context carries no trace info.
func RequestIDFromContext(ctx context.Context) string {
	info := infoFromContext(ctx)
	if info == nil {
		return ""
	}
	return info.RequestID
}

// NextSpanID increments the span sequence and returns (requestID,
// spanID). Several backend calls inside one interaction get span ids
// 1, 2, 3, ... in order.
func NextSpanID(ctx context.Context) (string, string) {
	info := infoFromContext(ctx)
	if info == nil {
		// Fallback for calls made outside an interaction scope.
		return GenerateID(), "1"
	}
	val := atomic.AddInt64(&info.spanSeq, 1)
	if val <= 0 {
		val = 1
	}
	return info.RequestID, strconv.FormatInt(val, 10)
}
