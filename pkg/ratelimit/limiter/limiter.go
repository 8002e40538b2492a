package limiter

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/admit/pkg/common/validation"
	"github.com/vnykmshr/admit/pkg/metrics"
	"github.com/vnykmshr/admit/pkg/ratelimit/bucket"
)

const module = "limiter"

// DefaultName is used when a limiter is created without a name.
const DefaultName = "default"

// RateLimiter admits at most MaxRequests calls per Window to one external
// resource. It owns a single token bucket and adds a name, status
// introspection, wait logging and optional metrics. It is safe for
// concurrent use and is meant to be shared by every call site that talks to
// the same resource.
type RateLimiter struct {
	name        string
	maxRequests int
	window      time.Duration
	bucket      *bucket.TokenBucket
	logger      zerolog.Logger
	metrics     *metrics.Registry
	clock       bucket.Clock

	overAdmitted atomic.Uint64
}

// Option configures a RateLimiter.
type Option func(*RateLimiter)

// WithLogger sets the logger used for diagnostic events.
func WithLogger(logger zerolog.Logger) Option {
	return func(rl *RateLimiter) {
		rl.logger = logger
	}
}

// WithClock replaces the system clock, mainly for tests.
func WithClock(clock bucket.Clock) Option {
	return func(rl *RateLimiter) {
		rl.clock = clock
	}
}

// WithMetrics records admissions into reg. A nil registry disables metrics.
func WithMetrics(reg *metrics.Registry) Option {
	return func(rl *RateLimiter) {
		rl.metrics = reg
	}
}

// New creates a limiter named name that allows maxRequests calls per window,
// all of which may be used in an initial burst.
func New(maxRequests int, window time.Duration, name string, opts ...Option) (*RateLimiter, error) {
	if err := validation.ValidatePositive(module, "max_requests", maxRequests); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration(module, "window", window); err != nil {
		return nil, err
	}
	if name == "" {
		name = DefaultName
	}

	rl := &RateLimiter{
		name:        name,
		maxRequests: maxRequests,
		window:      window,
		logger:      zerolog.Nop(),
		clock:       bucket.SystemClock{},
	}
	for _, opt := range opts {
		opt(rl)
	}
	if rl.clock == nil {
		rl.clock = bucket.SystemClock{}
	}

	tb, err := bucket.NewWithConfigSafe(bucket.Config{
		Capacity:     maxRequests,
		RefillPeriod: window,
		Clock:        rl.clock,
	})
	if err != nil {
		return nil, err
	}
	rl.bucket = tb
	rl.logger = rl.logger.With().Str("component", "ratelimit").Str("limiter", name).Logger()

	rl.logger.Debug().
		Int("capacity", maxRequests).
		Dur("window", window).
		Float64("rate_per_second", tb.RefillRate()).
		Msg("rate limiter created")
	rl.metrics.SetTokens(name, tb.Tokens())

	return rl, nil
}

// Acquire takes n tokens, waiting for them if necessary. When a wait is
// needed one debug event with the expected wait is logged first.
//
// It returns ctx.Err() if ctx ends before the tokens are available (no tokens
// are taken in that case) and a ValidationError if n exceeds MaxRequests.
func (rl *RateLimiter) Acquire(ctx context.Context, n int) error {
	if wait, ok := rl.bucket.WaitTime(n); ok && wait > 0 {
		rl.logger.Debug().
			Dur("wait", wait).
			Float64("tokens", rl.bucket.Tokens()).
			Int("requested", n).
			Msg("rate limit reached, waiting")
	}

	rl.metrics.Requested(rl.name, n)
	start := rl.clock.Now()

	err := rl.bucket.Acquire(ctx, n)

	rl.metrics.ObserveWait(rl.name, rl.clock.Now().Sub(start))
	if err != nil {
		rl.metrics.Denied(rl.name, n)
	} else {
		rl.metrics.Allowed(rl.name, n)
	}
	rl.metrics.SetTokens(rl.name, rl.bucket.Tokens())

	return err
}

// TryAcquire takes n tokens if they are available now and reports whether it did.
func (rl *RateLimiter) TryAcquire(n int) bool {
	allowed := rl.bucket.TryAcquire(n)

	rl.metrics.Requested(rl.name, n)
	if allowed {
		rl.metrics.Allowed(rl.name, n)
	} else {
		rl.metrics.Denied(rl.name, n)
	}
	rl.metrics.SetTokens(rl.name, rl.bucket.Tokens())

	return allowed
}

// WaitTime reports how long Acquire(n) would currently wait. It returns
// false when n exceeds MaxRequests.
func (rl *RateLimiter) WaitTime(n int) (time.Duration, bool) {
	return rl.bucket.WaitTime(n)
}

// AvailableTokens returns the number of tokens currently available.
func (rl *RateLimiter) AvailableTokens() float64 {
	return rl.bucket.Tokens()
}

// RecordOverAdmission notes that a call proceeded without a token. Blocking
// call paths use it when they choose liveness over strict enforcement.
func (rl *RateLimiter) RecordOverAdmission() {
	rl.overAdmitted.Add(1)
	rl.metrics.OverAdmitted(rl.name)
}

// OverAdmissions returns how many calls proceeded without a token.
func (rl *RateLimiter) OverAdmissions() uint64 {
	return rl.overAdmitted.Load()
}

// Name returns the limiter name.
func (rl *RateLimiter) Name() string { return rl.name }

// MaxRequests returns the number of calls allowed per window.
func (rl *RateLimiter) MaxRequests() int { return rl.maxRequests }

// Window returns the quota window.
func (rl *RateLimiter) Window() time.Duration { return rl.window }

// Logger returns the limiter's logger, already tagged with its name.
func (rl *RateLimiter) Logger() zerolog.Logger { return rl.logger }

// Status is a point-in-time view of a limiter.
type Status struct {
	Name              string  `json:"name"`
	AvailableTokens   float64 `json:"available_tokens"`
	MaxTokens         int     `json:"max_tokens"`
	WindowSeconds     float64 `json:"window_seconds"`
	RequestsPerSecond float64 `json:"requests_per_second"`
}

// Status returns the limiter's configuration and current token count.
// RequestsPerSecond is rounded to four decimal places.
func (rl *RateLimiter) Status() Status {
	return Status{
		Name:              rl.name,
		AvailableTokens:   rl.bucket.Tokens(),
		MaxTokens:         rl.maxRequests,
		WindowSeconds:     rl.window.Seconds(),
		RequestsPerSecond: round(rl.bucket.RefillRate(), 4),
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
