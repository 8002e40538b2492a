package limiter

import (
	"sort"
	"sync"

	gferrors "github.com/vnykmshr/admit/pkg/common/errors"
	"github.com/vnykmshr/admit/pkg/common/validation"
)

// Set is a collection of limiters keyed by name. It is built once at
// startup and passed to the clients that need it.
type Set struct {
	mu       sync.RWMutex
	limiters map[string]*RateLimiter
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{limiters: make(map[string]*RateLimiter)}
}

// Add registers rl under its name. Names must be unique.
func (s *Set) Add(rl *RateLimiter) error {
	if err := validation.ValidateNotNil(module, "limiter", rl); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.limiters[rl.Name()]; exists {
		return gferrors.NewValidationError(module, "name", rl.Name(), "duplicate limiter name").
			WithHint("each throttled resource needs its own name")
	}
	s.limiters[rl.Name()] = rl
	return nil
}

// Get returns the limiter registered under name.
func (s *Set) Get(name string) (*RateLimiter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rl, ok := s.limiters[name]
	return rl, ok
}

// Len returns the number of limiters in the set.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.limiters)
}

// Names returns the registered names in sorted order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.limiters))
	for name := range s.limiters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Statuses returns the status of every limiter, ordered by name.
func (s *Set) Statuses() []Status {
	names := s.Names()
	statuses := make([]Status, 0, len(names))
	for _, name := range names {
		if rl, ok := s.Get(name); ok {
			statuses = append(statuses, rl.Status())
		}
	}
	return statuses
}
