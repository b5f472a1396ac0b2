package ctxutil

import (
	"context"
	"time"
)

// DefaultDetachedTimeout bounds work that must finish even if the caller's
// context is already cancelled, such as a compensating write.
const DefaultDetachedTimeout = 5 * time.Second

// WithDetached derives a context that keeps the parent's values (trace id,
// user) but not its cancellation, bounded by timeout.
func WithDetached(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = DefaultDetachedTimeout
	}
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}
