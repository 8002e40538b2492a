// Package metrics provides Prometheus instrumentation for admit limiters.
//
// A Registry is created once and handed to each limiter that should be
// observed:
//
//	reg := metrics.New(metrics.Config{Enabled: true, Registry: prometheus.NewRegistry()})
//	lim, err := limiter.New(60, time.Minute, "search_api", limiter.WithMetrics(reg))
//
// # Available Metrics
//
//   - admit_ratelimit_requests_total: tokens requested
//   - admit_ratelimit_allowed_total: tokens granted
//   - admit_ratelimit_denied_total: tokens refused by TryAcquire or abandoned by a canceled Acquire
//   - admit_ratelimit_over_admitted_total: calls a blocking call path let through without a token
//   - admit_ratelimit_wait_duration_seconds: time spent waiting in Acquire
//   - admit_ratelimit_tokens_available: tokens available at the last observation
//
// All series carry a limiter_name label. The tokens gauge is updated when a
// limiter is used and by the monitor package's periodic reporter; refill is
// time-driven, so between those points the gauge lags the bucket.
//
// A nil *Registry is valid and records nothing, which is what New returns
// for a disabled Config.
package metrics
