package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	assert.Nil(t, New(Config{}))
}

func TestRegistry_Records(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := New(Config{Enabled: true, Registry: promReg, Labels: prometheus.Labels{"service": "test"}})
	require.NotNil(t, reg)

	reg.Requested("api", 4)
	reg.Allowed("api", 3)
	reg.Denied("api", 1)
	reg.OverAdmitted("api")
	reg.OverAdmitted("api")
	reg.ObserveWait("api", 250*time.Millisecond)
	reg.SetTokens("api", 7.5)

	assert.Equal(t, 4.0, testutil.ToFloat64(reg.RateLimitRequests.WithLabelValues("api")))
	assert.Equal(t, 3.0, testutil.ToFloat64(reg.RateLimitAllowed.WithLabelValues("api")))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.RateLimitDenied.WithLabelValues("api")))
	assert.Equal(t, 2.0, testutil.ToFloat64(reg.RateLimitOverAdmitted.WithLabelValues("api")))
	assert.Equal(t, 7.5, testutil.ToFloat64(reg.RateLimitTokens.WithLabelValues("api")))
	assert.Equal(t, 1, testutil.CollectAndCount(reg.RateLimitWaitTime))

	expected := `
# HELP admit_ratelimit_over_admitted_total Total number of calls let through without a token by blocking call paths
# TYPE admit_ratelimit_over_admitted_total counter
admit_ratelimit_over_admitted_total{limiter_name="api",service="test"} 2
`
	require.NoError(t, testutil.GatherAndCompare(promReg, strings.NewReader(expected), "admit_ratelimit_over_admitted_total"))
}

func TestRegistry_CustomNamespace(t *testing.T) {
	promReg := prometheus.NewRegistry()
	reg := New(Config{Enabled: true, Registry: promReg, Namespace: "billing"})
	reg.Allowed("invoices", 1)

	families, err := promReg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)
	assert.Equal(t, "billing_ratelimit_allowed_total", families[0].GetName())
}

func TestRegistry_NilReceiverIsNoop(t *testing.T) {
	var reg *Registry
	assert.NotPanics(t, func() {
		reg.Requested("x", 1)
		reg.Allowed("x", 1)
		reg.Denied("x", 1)
		reg.OverAdmitted("x")
		reg.ObserveWait("x", time.Second)
		reg.SetTokens("x", 1)
	})
}
