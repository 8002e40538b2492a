/*
Package admit throttles calls to quota-limited external resources from inside
a single process.

Rate Limiting (pkg/ratelimit):
  - bucket: Token bucket with continuous refill and context-aware waits
  - limiter: Named limiter with status, wait logging and metrics
  - intercept: Call wrappers that take a token before each call
  - monitor: Cron-scheduled status reporting

Support:
  - config: YAML/env configuration of limiters, logging and metrics
  - metrics: Prometheus instrumentation

Example usage:

	import (
		"github.com/vnykmshr/admit/pkg/ratelimit/intercept"
		"github.com/vnykmshr/admit/pkg/ratelimit/limiter"
	)

	rl, _ := limiter.New(100, time.Minute, "example_api")
	client := &http.Client{Transport: intercept.Transport(nil, rl)}

	if err := rl.Acquire(ctx, 1); err != nil {
		return err
	}

A limiter only paces calls that go through it: share one RateLimiter between
every call site that consumes the same quota.
*/
package admit
