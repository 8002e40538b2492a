package intercept

import (
	"context"
	"net/http"

	"github.com/vnykmshr/admit/pkg/ratelimit/limiter"
)

// Transport returns an http.RoundTripper that waits for a token from rl,
// using the request's context, before handing each request to base. A nil
// base uses http.DefaultTransport.
func Transport(base http.RoundTripper, rl *limiter.RateLimiter, opts ...Option) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}

	send := Suspending(
		func(*http.Request) *limiter.RateLimiter { return rl },
		func(_ context.Context, req *http.Request) (*http.Response, error) {
			return base.RoundTrip(req)
		},
		opts...,
	)

	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return send(req.Context(), req)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
