package ratelimit

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pgregory.net/rapid"
)

// =============================================================================
// Generators for property-based testing
// =============================================================================

// usernameGenerator generates login keys
func usernameGenerator() *rapid.Generator[string] {
	return rapid.StringMatching(`[a-z0-9_]{3,24}`)
}

// =============================================================================
// Property: Attempts within burst succeed
// =============================================================================

func testRateLimiter_AttemptsWithinBurst(t *rapid.T) {
	burst := rapid.IntRange(2, 100).Draw(t, "burst")
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: burst, CleanupInterval: time.Hour})
	defer rl.Stop()

	key := usernameGenerator().Draw(t, "key")
	attempts := rapid.IntRange(1, burst).Draw(t, "attempts")

	for i := 0; i < attempts; i++ {
		if !rl.Allow(key) {
			t.Fatalf("attempt %d of %d should have been allowed (burst %d)", i+1, attempts, burst)
		}
	}
}

func TestRateLimiter_AttemptsWithinBurst(t *testing.T) {
	rapid.Check(t, testRateLimiter_AttemptsWithinBurst)
}

func FuzzRateLimiter_AttemptsWithinBurst(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testRateLimiter_AttemptsWithinBurst))
}

// =============================================================================
// Property: Attempts beyond burst are blocked, independently per key
// =============================================================================

func testRateLimiter_ExceedingBurstBlockedPerKey(t *rapid.T) {
	burst := rapid.IntRange(1, 10).Draw(t, "burst")
	rl := NewRateLimiter(Config{RPS: 0.001, Burst: burst, CleanupInterval: time.Hour})
	defer rl.Stop()

	key1 := usernameGenerator().Draw(t, "key1")
	key2 := usernameGenerator().Filter(func(s string) bool { return s != key1 }).Draw(t, "key2")

	for i := 0; i < burst; i++ {
		rl.Allow(key1)
	}
	if rl.Allow(key1) {
		t.Fatalf("attempt beyond burst %d should have been blocked", burst)
	}
	if !rl.Allow(key2) {
		t.Fatal("a second key must have its own budget")
	}
}

func TestRateLimiter_ExceedingBurstBlockedPerKey(t *testing.T) {
	rapid.Check(t, testRateLimiter_ExceedingBurstBlockedPerKey)
}

func FuzzRateLimiter_ExceedingBurstBlockedPerKey(f *testing.F) {
	f.Add([]byte{0x00})
	f.Fuzz(rapid.MakeFuzz(testRateLimiter_ExceedingBurstBlockedPerKey))
}

// =============================================================================
// Property: Idle limiters are cleaned up, the same key returns the same limiter
// =============================================================================

func testRateLimiter_IdleLimiterCleanup(t *rapid.T) {
	cleanupInterval := 10 * time.Millisecond
	rl := NewRateLimiter(Config{RPS: 100, Burst: 200, CleanupInterval: cleanupInterval})
	defer rl.Stop()

	numKeys := rapid.IntRange(1, 10).Draw(t, "numKeys")
	for i := 0; i < numKeys; i++ {
		rl.Allow(usernameGenerator().Draw(t, "key"))
	}
	if rl.Len() == 0 {
		t.Fatal("expected limiters to be created")
	}

	time.Sleep(cleanupInterval + 5*time.Millisecond)
	rl.Cleanup()

	if rl.Len() != 0 {
		t.Fatalf("expected idle limiters to be removed, %d remain", rl.Len())
	}
}

func TestRateLimiter_IdleLimiterCleanup(t *testing.T) {
	rapid.Check(t, testRateLimiter_IdleLimiterCleanup)
}

func TestRateLimiter_GetLimiterConsistency(t *testing.T) {
	rl := NewRateLimiter(DefaultConfig)
	defer rl.Stop()

	first := rl.GetLimiter("alice")
	second := rl.GetLimiter("alice")
	if first != second {
		t.Fatal("GetLimiter should return the same limiter for the same key")
	}
	if rl.Len() != 1 {
		t.Fatalf("Len = %d, want 1", rl.Len())
	}
}

// =============================================================================
// Property: Limiter is thread-safe (concurrent access)
// =============================================================================

func TestRateLimiter_ConcurrentAccess(t *testing.T) {
	rl := NewRateLimiter(Config{RPS: 1000, Burst: 2000, CleanupInterval: time.Hour})
	defer rl.Stop()

	keys := []string{"alice", "bob", "carol", "dave"}
	const goroutines, perGoroutine = 8, 50

	var wg sync.WaitGroup
	var total atomic.Int64
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for r := 0; r < perGoroutine; r++ {
				rl.Allow(keys[(id+r)%len(keys)])
				total.Add(1)
			}
		}(g)
	}
	wg.Wait()

	if total.Load() != goroutines*perGoroutine {
		t.Fatalf("lost attempts: %d", total.Load())
	}
	if rl.Len() != len(keys) {
		t.Fatalf("Len = %d, want %d", rl.Len(), len(keys))
	}
}
