package intercept

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	ctxutil "github.com/vnykmshr/admit/pkg/common/context"
	gferrors "github.com/vnykmshr/admit/pkg/common/errors"
	"github.com/vnykmshr/admit/pkg/ratelimit/limiter"
)

const module = "intercept"

// Option configures a wrapped operation.
type Option func(*options)

type options struct {
	logger       *zerolog.Logger
	maxWait      time.Duration
	warnInterval time.Duration
	tokens       int
}

// WithLogger sets the logger for over-admission warnings. By default the
// limiter's own logger is used.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithMaxWait bounds how long a suspending call waits for a token. When the
// bound is hit the call fails with an error wrapping errors.ErrTimeout and
// the operation is not invoked. Zero means wait as long as ctx allows.
func WithMaxWait(d time.Duration) Option {
	return func(o *options) {
		o.maxWait = d
	}
}

// WithWarnInterval logs at most one over-admission warning per interval for
// the wrapped operation. Every over-admission is still counted.
func WithWarnInterval(d time.Duration) Option {
	return func(o *options) {
		o.warnInterval = d
	}
}

// WithTokens sets the number of tokens each call consumes. The default is 1.
func WithTokens(n int) Option {
	return func(o *options) {
		o.tokens = n
	}
}

func newOptions(opts []Option) *options {
	o := &options{tokens: 1}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// acquire waits for tokens on rl, honoring maxWait.
func (o *options) acquire(ctx context.Context, rl *limiter.RateLimiter) error {
	if o.maxWait <= 0 {
		return rl.Acquire(ctx, o.tokens)
	}

	waitCtx, cancel := ctxutil.WithTimeoutOrCancel(ctx, o.maxWait)
	defer cancel()

	err := rl.Acquire(waitCtx, o.tokens)
	if err != nil && ctx.Err() == nil && ctxutil.IsTimedOut(waitCtx) {
		return gferrors.NewOperationError(module, "Acquire", gferrors.ErrTimeout).
			WithContext(fmt.Sprintf("limiter %s: no token within %v", rl.Name(), o.maxWait))
	}
	return err
}

// overAdmitWarner logs the warning emitted when a blocking call proceeds
// without a token.
type overAdmitWarner struct {
	opts      *options
	sometimes *rate.Sometimes
}

func newOverAdmitWarner(o *options) *overAdmitWarner {
	w := &overAdmitWarner{opts: o}
	if o.warnInterval > 0 {
		w.sometimes = &rate.Sometimes{Interval: o.warnInterval}
	}
	return w
}

func (w *overAdmitWarner) warn(rl *limiter.RateLimiter) {
	if w.sometimes == nil {
		w.log(rl)
		return
	}
	w.sometimes.Do(func() { w.log(rl) })
}

func (w *overAdmitWarner) log(rl *limiter.RateLimiter) {
	logger := rl.Logger()
	ev := logger.Warn()
	if w.opts.logger != nil {
		ev = w.opts.logger.Warn().Str("limiter", rl.Name())
	}

	ev.Int("tokens", w.opts.tokens).
		Float64("available_tokens", rl.AvailableTokens()).
		Uint64("over_admissions", rl.OverAdmissions()).
		Msg("rate limit reached in blocking call; proceeding without waiting; prefer a suspending call path")
}
