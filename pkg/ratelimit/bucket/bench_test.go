package bucket

import (
	"context"
	"testing"
	"time"
)

// mustNewSafe creates a new bucket or panics on error (for benchmarks only)
func mustNewSafe(capacity int, period time.Duration) *TokenBucket {
	tb, err := NewSafe(capacity, period)
	if err != nil {
		panic(err)
	}
	return tb
}

// BenchmarkTryAcquire measures contended TryAcquire calls
func BenchmarkTryAcquire(b *testing.B) {
	tb := mustNewSafe(1000, time.Millisecond) // refills fast enough to rarely deny

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tb.TryAcquire(1)
		}
	})
}

// BenchmarkAcquireUncontended measures the fast path of Acquire
func BenchmarkAcquireUncontended(b *testing.B) {
	tb := mustNewSafe(1000, time.Millisecond)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = tb.Acquire(ctx, 1)
	}
}

// BenchmarkTokens measures read-only queries
func BenchmarkTokens(b *testing.B) {
	tb := mustNewSafe(1000, time.Second)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			tb.Tokens()
		}
	})
}
