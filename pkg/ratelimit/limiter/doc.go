/*
Package limiter provides RateLimiter, the named façade callers use to stay
within a provider's quota.

A limiter is configured in the provider's own terms, a number of requests per
window, and maps them 1:1 onto a token bucket:

	lim, err := limiter.New(100, time.Minute, "geocoding", limiter.WithLogger(log))
	if err != nil {
		return err
	}

	// immediately before each outbound call
	if err := lim.Acquire(ctx, 1); err != nil {
		return err
	}

Throttling is latency, not failure: Acquire waits and only returns an error
when ctx ends or the request can never fit (n > MaxRequests). Status
exposes the configuration and current token count for health endpoints.

Limiters are owned values. Create one per throttled resource at client
construction and inject it; Set groups several by name.
*/
package limiter
