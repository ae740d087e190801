package platform

import (
	"context"
	"time"
)

var storeTimeout = GetAsDuration("CONTEXT_TIMEOUT", "5s")

// ContextTimeout bounds a single store round trip. Longer operations
// (advisor calls, streamed responses) pass their own deadline through
// ContextTimeoutVal instead.
func ContextTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, storeTimeout)
}

func ContextTimeoutVal(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}
