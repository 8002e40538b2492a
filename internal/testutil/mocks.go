package testutil

import (
	"sync"
	"time"
)

// MockClock implements bucket.Clock with controllable time.
//
// In auto mode (NewMockClock) every After call advances the clock by the
// requested duration and fires immediately, so blocking waits complete
// without real delays. In manual mode (NewManualClock) After channels fire
// only when Advance moves the clock past their deadline.
type MockClock struct {
	mu      sync.Mutex
	now     time.Time
	auto    bool
	sleeps  []time.Duration
	waiters []mockWaiter
}

type mockWaiter struct {
	deadline time.Time
	ch       chan time.Time
}

// NewMockClock creates an auto-advancing MockClock starting at the given time.
// If zero time is provided, uses current time.
func NewMockClock(start time.Time) *MockClock {
	if start.IsZero() {
		start = time.Now()
	}
	return &MockClock{now: start, auto: true}
}

// NewManualClock creates a MockClock whose timers fire only on Advance.
func NewManualClock(start time.Time) *MockClock {
	c := NewMockClock(start)
	c.auto = false
	return c
}

// Now returns the current mock time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After records the requested wait and returns a channel that receives the
// mock time once the wait has elapsed.
func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sleeps = append(m.sleeps, d)
	ch := make(chan time.Time, 1)

	if m.auto {
		if d > 0 {
			m.now = m.now.Add(d)
		}
		ch <- m.now
		return ch
	}

	if d <= 0 {
		ch <- m.now
		return ch
	}
	m.waiters = append(m.waiters, mockWaiter{deadline: m.now.Add(d), ch: ch})
	return ch
}

// Advance moves the mock clock forward by the given duration and fires
// every pending timer whose deadline has been reached.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)

	pending := m.waiters[:0]
	for _, w := range m.waiters {
		if !w.deadline.After(m.now) {
			w.ch <- m.now
			continue
		}
		pending = append(pending, w)
	}
	m.waiters = pending
}

// Set sets the mock clock to a specific time without firing timers.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = t
}

// Sleeps returns every duration passed to After, in call order.
func (m *MockClock) Sleeps() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.sleeps))
	copy(out, m.sleeps)
	return out
}

// Pending returns the number of manual-mode timers that have not fired.
func (m *MockClock) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.waiters)
}
