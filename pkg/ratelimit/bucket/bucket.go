package bucket

import (
	"context"
	"fmt"
	"math"
	"time"

	gferrors "github.com/vnykmshr/admit/pkg/common/errors"
)

// TryAcquire takes n tokens if they are available now and reports whether
// it did. It never blocks and never takes a partial amount. A request larger
// than the capacity always fails. TryAcquire(0) succeeds without side effects.
func (tb *TokenBucket) TryAcquire(n int) bool {
	if n == 0 {
		return true
	}
	if n < 0 || n > tb.capacity {
		return false
	}

	_, ok := tb.take(n)
	return ok
}

// Acquire takes n tokens, waiting for them to refill if necessary.
//
// Each time the bucket is short, Acquire sleeps once for exactly the time the
// missing tokens need to refill and then re-checks. It returns ctx.Err() if
// ctx is done first; a canceled Acquire leaves the bucket untouched because
// tokens are only debited after a wait resumes.
//
// A request larger than the capacity can never be satisfied and fails
// immediately with a ValidationError.
func (tb *TokenBucket) Acquire(ctx context.Context, n int) error {
	if n == 0 {
		return nil
	}
	if err := tb.checkRequest(n); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		wait, ok := tb.take(n)
		if ok {
			return nil
		}

		select {
		case <-tb.clock.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// WaitTime reports how long a caller would have to wait before n tokens are
// available. It returns false if n exceeds the capacity (or is negative),
// since no wait is long enough.
func (tb *TokenBucket) WaitTime(n int) (time.Duration, bool) {
	if n < 0 || n > tb.capacity {
		return 0, false
	}
	if n == 0 {
		return 0, true
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	if tb.tokens >= float64(n) {
		return 0, true
	}
	return tb.waitFor(n), true
}

// Tokens returns the number of tokens currently available.
func (tb *TokenBucket) Tokens() float64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	return tb.tokens
}

// Capacity returns the maximum number of tokens the bucket holds.
func (tb *TokenBucket) Capacity() int {
	return tb.capacity
}

// RefillPeriod returns the time an empty bucket takes to refill completely.
func (tb *TokenBucket) RefillPeriod() time.Duration {
	return tb.period
}

// RefillRate returns the refill rate in tokens per second.
func (tb *TokenBucket) RefillRate() float64 {
	return tb.rate
}

// take refills and debits n tokens in one critical section. When the bucket
// is short it returns the time until n tokens will be available instead.
func (tb *TokenBucket) take(n int) (time.Duration, bool) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(tb.clock.Now())
	if tb.tokens >= float64(n) {
		tb.tokens -= float64(n)
		return 0, true
	}
	return tb.waitFor(n), false
}

// refill adds tokens for the time elapsed since the last refill, capped at capacity.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill)
	if elapsed <= 0 {
		return
	}

	tb.tokens = math.Min(tb.tokens+elapsed.Seconds()*tb.rate, float64(tb.capacity))
	tb.lastRefill = now
}

// waitFor converts the token shortfall for n into a duration, rounded up so
// the refill after the wait covers the shortfall.
func (tb *TokenBucket) waitFor(n int) time.Duration {
	missing := float64(n) - tb.tokens
	if missing <= 0 {
		return 0
	}
	return time.Duration(math.Ceil(missing / tb.rate * float64(time.Second)))
}

func (tb *TokenBucket) checkRequest(n int) error {
	if n < 0 {
		return gferrors.NewValidationError(module, "tokens", n, "cannot be negative").
			WithHint("request at least 0 tokens")
	}
	if n > tb.capacity {
		return gferrors.NewValidationError(module, "tokens", n, "requested token count exceeds capacity").
			WithHint(fmt.Sprintf("capacity is %d; no amount of waiting can satisfy this request", tb.capacity))
	}
	return nil
}
