package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	gferrors "github.com/vnykmshr/admit/pkg/common/errors"
	"github.com/vnykmshr/admit/pkg/common/validation"
	"github.com/vnykmshr/admit/pkg/metrics"
	"github.com/vnykmshr/admit/pkg/ratelimit/limiter"
)

const module = "monitor"

// parser accepts standard five-field expressions, an optional leading
// seconds field and descriptors such as "@every 30s" or "@hourly".
var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Reporter periodically logs the status of every limiter in a Set and
// refreshes the token gauges. Token counts change with the passage of time
// alone, so without a reporter the gauges only move when a limiter is used.
type Reporter struct {
	set      *limiter.Set
	schedule string
	logger   zerolog.Logger
	metrics  *metrics.Registry

	cron    *cron.Cron
	entryID cron.EntryID

	mu      sync.Mutex
	running bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithLogger sets the logger that receives status reports.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// WithMetrics refreshes the token gauges of reg on every report.
func WithMetrics(reg *metrics.Registry) Option {
	return func(r *Reporter) {
		r.metrics = reg
	}
}

// New creates a Reporter for set that runs on schedule. The reporter is idle
// until Start is called.
func New(set *limiter.Set, schedule string, opts ...Option) (*Reporter, error) {
	if err := validation.ValidateNotNil(module, "set", set); err != nil {
		return nil, err
	}
	if err := validation.ValidateNotEmpty(module, "schedule", schedule); err != nil {
		return nil, err
	}
	if _, err := parser.Parse(schedule); err != nil {
		return nil, gferrors.NewValidationError(module, "schedule", schedule, err.Error()).
			WithHint(`use a cron expression or a descriptor such as "@every 30s"`)
	}

	r := &Reporter{
		set:      set,
		schedule: schedule,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", module).Logger()

	r.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cronLogger{logger: r.logger}),
		cron.WithChain(cron.Recover(cronLogger{logger: r.logger}), cron.SkipIfStillRunning(cronLogger{logger: r.logger})),
	)
	id, err := r.cron.AddFunc(schedule, r.ReportNow)
	if err != nil {
		return nil, gferrors.NewOperationError(module, "New", err)
	}
	r.entryID = id

	return r, nil
}

// Start begins scheduled reporting. Calling Start on a running reporter is
// a no-op.
func (r *Reporter) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.running = true
	r.cron.Start()
	r.logger.Info().Str("schedule", r.schedule).Int("limiters", r.set.Len()).Msg("status reporter started")
}

// Stop halts scheduled reporting. The returned context is done once a
// report already in progress has finished.
func (r *Reporter) Stop() context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx := r.cron.Stop()
	if r.running {
		r.running = false
		r.logger.Info().Msg("status reporter stopped")
	}
	return ctx
}

// Next returns the time of the next scheduled report, or the zero time if
// the reporter is not running.
func (r *Reporter) Next() time.Time {
	return r.cron.Entry(r.entryID).Next
}

// ReportNow logs one status event per limiter and refreshes the gauges.
func (r *Reporter) ReportNow() {
	for _, st := range r.set.Statuses() {
		r.metrics.SetTokens(st.Name, st.AvailableTokens)
		r.logger.Info().
			Str("limiter", st.Name).
			Float64("available_tokens", st.AvailableTokens).
			Int("max_tokens", st.MaxTokens).
			Float64("window_seconds", st.WindowSeconds).
			Float64("requests_per_second", st.RequestsPerSecond).
			Msg("rate limiter status")
	}
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
