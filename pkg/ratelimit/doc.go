/*
Package ratelimit groups the admission-control packages of admit.

  - bucket: Token bucket state machine, the algorithm underneath everything else
  - limiter: RateLimiter, a named bucket sized as "N requests per window"
  - intercept: Suspending and blocking call wrappers plus an http.RoundTripper
  - monitor: Periodic status reports for a limiter.Set

A RateLimiter starts with a full burst of MaxRequests tokens and refills at
MaxRequests/Window tokens per second:

	rl, err := limiter.New(100, time.Minute, "example_api")
	if err != nil {
		return err
	}
	if err := rl.Acquire(ctx, 1); err != nil {
		return err // ctx ended before a token was available
	}

Call paths that accept a context wait for tokens. Call paths that cannot wait
use TryAcquire, or intercept.Blocking, which lets the call through and records
an over-admission when the limiter is empty.

Waiters are not served in FIFO order. All types are safe for concurrent use.
*/
package ratelimit
