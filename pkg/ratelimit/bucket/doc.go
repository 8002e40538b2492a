/*
Package bucket provides the token bucket that backs every admit limiter.

A TokenBucket starts full with Capacity tokens and refills continuously at
Capacity/RefillPeriod tokens per second, never exceeding Capacity:

	tb, err := bucket.NewSafe(100, time.Minute) // 100 calls per minute, bursts of 100
	if err != nil {
		return err
	}

	if tb.TryAcquire(1) {
		// proceed without waiting
	}

	if err := tb.Acquire(ctx, 1); err != nil {
		return err // ctx done; no tokens were taken
	}

Token counts are float64 and debits are exact, so repeated partial
consumption does not drift. Refill, check and debit run under one mutex in
every operation. Acquire sleeps on a single timer sized to the shortfall
rather than polling, and waiters are not served in arrival order.

Requests larger than Capacity are programmer errors: TryAcquire reports
false, WaitTime reports false, and Acquire returns a ValidationError that
wraps errors.ErrInvalidConfiguration.
*/
package bucket
