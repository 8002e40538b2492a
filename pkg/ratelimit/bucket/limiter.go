package bucket

import (
	"sync"
	"time"

	"github.com/vnykmshr/admit/pkg/common/validation"
)

const module = "bucket"

// Clock provides the current time and timer waits. It can be mocked for testing.
//
// Now must return readings that carry Go's monotonic clock (as time.Now does)
// so that elapsed time is immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time

	// After waits for d to elapse and then sends the current time on the
	// returned channel.
	After(d time.Duration) <-chan time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// After waits for d using a runtime timer.
func (SystemClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Config holds configuration options for creating a TokenBucket.
type Config struct {
	// Capacity is the maximum number of tokens the bucket holds. It bounds
	// the burst size and is the largest request that can ever succeed.
	Capacity int

	// RefillPeriod is the time it takes an empty bucket to refill completely.
	RefillPeriod time.Duration

	// Clock provides the current time. If nil, SystemClock is used.
	Clock Clock
}

// TokenBucket approximates a sliding-window quota: Capacity tokens are
// available at once and they refill continuously at Capacity/RefillPeriod
// tokens per second. It is safe for concurrent use.
//
// Waiters are not queued. When several goroutines wait on one bucket,
// whichever re-checks first after its timer fires wins, so a later request
// may be admitted before an earlier one.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   int
	period     time.Duration
	rate       float64
	tokens     float64
	lastRefill time.Time
	clock      Clock
}

// NewSafe creates a full bucket holding capacity tokens that refills
// completely every refillPeriod.
func NewSafe(capacity int, refillPeriod time.Duration) (*TokenBucket, error) {
	return NewWithConfigSafe(Config{
		Capacity:     capacity,
		RefillPeriod: refillPeriod,
		Clock:        SystemClock{},
	})
}

// NewWithConfigSafe creates a full bucket from config, returning a
// ValidationError for a non-positive capacity or refill period.
func NewWithConfigSafe(config Config) (*TokenBucket, error) {
	if err := validation.ValidatePositive(module, "capacity", config.Capacity); err != nil {
		return nil, err
	}
	if err := validation.ValidatePositiveDuration(module, "refill_period", config.RefillPeriod); err != nil {
		return nil, err
	}
	if config.Clock == nil {
		config.Clock = SystemClock{}
	}

	return &TokenBucket{
		capacity:   config.Capacity,
		period:     config.RefillPeriod,
		rate:       float64(config.Capacity) / config.RefillPeriod.Seconds(),
		tokens:     float64(config.Capacity),
		lastRefill: config.Clock.Now(),
		clock:      config.Clock,
	}, nil
}
