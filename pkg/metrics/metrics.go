package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const labelLimiter = "limiter_name"

// Registry holds the metric instances shared by admit limiters. Series are
// labelled with the limiter name.
type Registry struct {
	RateLimitRequests     *prometheus.CounterVec
	RateLimitAllowed      *prometheus.CounterVec
	RateLimitDenied       *prometheus.CounterVec
	RateLimitOverAdmitted *prometheus.CounterVec
	RateLimitWaitTime     *prometheus.HistogramVec
	RateLimitTokens       *prometheus.GaugeVec
}

// NewRegistry creates a Registry in the default namespace on reg.
// Registering two registries on the same registerer panics.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return newRegistry(reg, DefaultNamespace, nil)
}

func newRegistry(reg prometheus.Registerer, namespace string, constLabels prometheus.Labels) *Registry {
	factory := promauto.With(reg)
	labels := []string{labelLimiter}

	return &Registry{
		RateLimitRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "ratelimit",
				Name:        "requests_total",
				Help:        "Total number of tokens requested",
				ConstLabels: constLabels,
			},
			labels,
		),

		RateLimitAllowed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "ratelimit",
				Name:        "allowed_total",
				Help:        "Total number of tokens granted",
				ConstLabels: constLabels,
			},
			labels,
		),

		RateLimitDenied: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "ratelimit",
				Name:        "denied_total",
				Help:        "Total number of tokens refused or abandoned",
				ConstLabels: constLabels,
			},
			labels,
		),

		RateLimitOverAdmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   namespace,
				Subsystem:   "ratelimit",
				Name:        "over_admitted_total",
				Help:        "Total number of calls let through without a token by blocking call paths",
				ConstLabels: constLabels,
			},
			labels,
		),

		RateLimitWaitTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   namespace,
				Subsystem:   "ratelimit",
				Name:        "wait_duration_seconds",
				Help:        "Time spent waiting for tokens",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: constLabels,
			},
			labels,
		),

		RateLimitTokens: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Subsystem:   "ratelimit",
				Name:        "tokens_available",
				Help:        "Number of tokens currently available",
				ConstLabels: constLabels,
			},
			labels,
		),
	}
}

// Requested counts n requested tokens for limiter name.
func (r *Registry) Requested(name string, n int) {
	if r == nil {
		return
	}
	r.RateLimitRequests.WithLabelValues(name).Add(float64(n))
}

// Allowed counts n granted tokens for limiter name.
func (r *Registry) Allowed(name string, n int) {
	if r == nil {
		return
	}
	r.RateLimitAllowed.WithLabelValues(name).Add(float64(n))
}

// Denied counts n refused tokens for limiter name.
func (r *Registry) Denied(name string, n int) {
	if r == nil {
		return
	}
	r.RateLimitDenied.WithLabelValues(name).Add(float64(n))
}

// OverAdmitted counts one call admitted without a token.
func (r *Registry) OverAdmitted(name string) {
	if r == nil {
		return
	}
	r.RateLimitOverAdmitted.WithLabelValues(name).Inc()
}

// ObserveWait records time spent in a blocking acquire.
func (r *Registry) ObserveWait(name string, d time.Duration) {
	if r == nil {
		return
	}
	r.RateLimitWaitTime.WithLabelValues(name).Observe(d.Seconds())
}

// SetTokens publishes the current token count.
func (r *Registry) SetTokens(name string, tokens float64) {
	if r == nil {
		return
	}
	r.RateLimitTokens.WithLabelValues(name).Set(tokens)
}
