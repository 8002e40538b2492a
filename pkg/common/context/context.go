// Package context holds small helpers for bounding token waits.
package context

import (
	"context"
	"errors"
	"time"
)

// WithTimeoutOrCancel derives a context that is canceled when the parent is,
// or when timeout elapses. A non-positive timeout adds no deadline and only
// returns a cancelable child.
func WithTimeoutOrCancel(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, timeout)
}

// IsCanceled returns true if the context has been canceled
func IsCanceled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// IsTimedOut returns true if the context was canceled due to a deadline
func IsTimedOut(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}
