// Package integration contains integration tests that verify cross-package functionality.
// These tests wire configuration, limiters, interception and reporting together.
package integration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnykmshr/admit/internal/testutil"
	"github.com/vnykmshr/admit/pkg/config"
	"github.com/vnykmshr/admit/pkg/ratelimit/intercept"
	"github.com/vnykmshr/admit/pkg/ratelimit/limiter"
	"github.com/vnykmshr/admit/pkg/ratelimit/monitor"
)

const limitsYAML = `
log:
  level: debug
metrics:
  namespace: itest
limits:
  upstream:
    max_requests: 5
    window: 1s
`

// TestConfiguredTransportThrottles drives a burst of HTTP calls through a
// limiter built from a config file and checks both pacing and metrics.
func TestConfiguredTransportThrottles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "admit.yaml")
	require.NoError(t, os.WriteFile(path, []byte(limitsYAML), 0o600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	reg := cfg.NewMetrics(prometheus.NewRegistry())
	set, err := cfg.BuildSet(zerolog.Nop(), reg)
	require.NoError(t, err)
	rl, ok := set.Get("upstream")
	require.True(t, ok)

	var served atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
	}))
	defer srv.Close()

	client := &http.Client{Transport: intercept.Transport(nil, rl)}

	ctx, cancel := testutil.WithTimeout(t)
	defer cancel()

	// burst of 5 then 2 more at 5/s: the last one lands after ~400ms
	const numRequests = 7
	start := time.Now()

	var wg conc.WaitGroup
	for i := 0; i < numRequests; i++ {
		wg.Go(func() {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
			if !assert.NoError(t, err) {
				return
			}
			resp, err := client.Do(req)
			if assert.NoError(t, err) {
				resp.Body.Close()
			}
		})
	}
	wg.Wait()
	elapsed := time.Since(start)

	assert.Equal(t, int32(numRequests), served.Load())
	assert.GreaterOrEqual(t, elapsed, 350*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)

	assert.Equal(t, float64(numRequests), promtest.ToFloat64(reg.RateLimitAllowed.WithLabelValues("upstream")))
	assert.Equal(t, 0.0, promtest.ToFloat64(reg.RateLimitDenied.WithLabelValues("upstream")))
}

// TestBlockingPathReportedByMonitor checks that over-admissions made by a
// blocking call path show up in metrics and that the reporter sees the
// drained limiter.
func TestBlockingPathReportedByMonitor(t *testing.T) {
	cfg := &config.Config{
		Log:     config.LogConfig{Level: "info", Format: "json"},
		Metrics: config.MetricsConfig{Enabled: true},
		Limits:  map[string]config.Limit{"slow_api": {MaxRequests: 2, Window: time.Hour}},
	}
	require.NoError(t, cfg.Validate())

	reg := cfg.NewMetrics(prometheus.NewRegistry())
	set, err := cfg.BuildSet(zerolog.Nop(), reg)
	require.NoError(t, err)
	rl, _ := set.Get("slow_api")

	var calls atomic.Int32
	lookup, err := intercept.Wrap[string, int](
		func(string) *limiter.RateLimiter { return rl },
		func(key string) (int, error) { return int(calls.Add(1)), nil },
	)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		_, err := lookup(context.Background(), "key")
		require.NoError(t, err)
	}

	assert.Equal(t, int32(5), calls.Load())
	assert.Equal(t, uint64(3), rl.OverAdmissions())
	assert.Equal(t, 3.0, promtest.ToFloat64(reg.RateLimitOverAdmitted.WithLabelValues("slow_api")))

	reporter, err := monitor.New(set, "@hourly", monitor.WithMetrics(reg))
	require.NoError(t, err)
	reporter.ReportNow()
	assert.Less(t, promtest.ToFloat64(reg.RateLimitTokens.WithLabelValues("slow_api")), 0.01)
}
