package intercept

import (
	"context"
	"fmt"

	gferrors "github.com/vnykmshr/admit/pkg/common/errors"
	"github.com/vnykmshr/admit/pkg/common/validation"
	"github.com/vnykmshr/admit/pkg/ratelimit/limiter"
)

// Accessor extracts the limiter that governs owner. Returning nil leaves the
// call unthrottled.
type Accessor[O any] func(owner O) *limiter.RateLimiter

// ContextFunc is an operation that accepts a context and may therefore be
// suspended while it waits for a token.
type ContextFunc[O, R any] func(ctx context.Context, owner O) (R, error)

// BlockingFunc is an operation without a context. Waiting inside it would
// stall its caller without any way to cancel.
type BlockingFunc[O, R any] func(owner O) (R, error)

// Suspending wraps target so that each call first waits for a token from the
// owner's limiter. Only the calling goroutine waits. If the wait fails
// (ctx done, WithMaxWait exceeded, oversized request) the error is returned
// and target is not invoked.
func Suspending[O, R any](acc Accessor[O], target ContextFunc[O, R], opts ...Option) ContextFunc[O, R] {
	o := newOptions(opts)

	return func(ctx context.Context, owner O) (R, error) {
		if rl := acc(owner); rl != nil {
			if err := o.acquire(ctx, rl); err != nil {
				var zero R
				return zero, err
			}
		}
		return target(ctx, owner)
	}
}

// Blocking wraps target so that each call tries once to take a token without
// waiting. If none is available the call proceeds anyway: the over-admission
// is logged as a warning and counted on the limiter. Blocking call paths thus
// trade strict enforcement for liveness and may exceed the configured rate.
func Blocking[O, R any](acc Accessor[O], target BlockingFunc[O, R], opts ...Option) BlockingFunc[O, R] {
	o := newOptions(opts)
	w := newOverAdmitWarner(o)

	return func(owner O) (R, error) {
		if rl := acc(owner); rl != nil && !rl.TryAcquire(o.tokens) {
			rl.RecordOverAdmission()
			w.warn(rl)
		}
		return target(owner)
	}
}

// Wrap selects the adapter for target once, by its shape:
//
//   - func(context.Context, O) (R, error) or ContextFunc[O, R] is wrapped with Suspending
//   - func(O) (R, error) or BlockingFunc[O, R] is wrapped with Blocking
//
// The result always has the ContextFunc shape; for blocking targets the
// context is ignored. Any other target is a configuration error.
func Wrap[O, R any](acc Accessor[O], target any, opts ...Option) (ContextFunc[O, R], error) {
	if err := validation.ValidateNotNil(module, "accessor", acc); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotNil(module, "target", target); err != nil {
		return nil, err
	}

	switch fn := target.(type) {
	case ContextFunc[O, R]:
		return Suspending(acc, fn, opts...), nil
	case func(context.Context, O) (R, error):
		return Suspending(acc, ContextFunc[O, R](fn), opts...), nil
	case BlockingFunc[O, R]:
		return ignoreContext(Blocking(acc, fn, opts...)), nil
	case func(O) (R, error):
		return ignoreContext(Blocking(acc, BlockingFunc[O, R](fn), opts...)), nil
	}

	return nil, gferrors.NewValidationError(module, "target", fmt.Sprintf("%T", target), "unsupported operation signature").
		WithHint("use func(context.Context, O) (R, error) or func(O) (R, error)")
}

func ignoreContext[O, R any](fn BlockingFunc[O, R]) ContextFunc[O, R] {
	return func(_ context.Context, owner O) (R, error) {
		return fn(owner)
	}
}
