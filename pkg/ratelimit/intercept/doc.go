/*
Package intercept rate-limits existing operations without touching their bodies.

An Accessor tells the wrapper which limiter governs a call's owner, so one
limiter can back many operations or each owner can carry its own:

	type GeoClient struct {
		lim *limiter.RateLimiter
		// ...
	}

	lookup := intercept.Suspending(
		func(c *GeoClient) *limiter.RateLimiter { return c.lim },
		func(ctx context.Context, c *GeoClient) (Place, error) { return c.lookup(ctx) },
	)

	place, err := lookup(ctx, client)

Two adapters exist because operations come in two shapes. Suspending is for
operations that take a context: the call waits for a token and can be
canceled. Blocking is for operations without one: the call never waits,
and when no token is available it proceeds anyway, logging a warning and
counting an over-admission on the limiter. Prefer context-aware operations;
blocking call sites may exceed the configured rate.

Wrap picks the adapter from the target's signature at wrap time, and
Transport applies the suspending adapter to an http.RoundTripper.
*/
package intercept
