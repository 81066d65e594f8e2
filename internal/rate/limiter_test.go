package rate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	limiter := New(rdb, Config{
		CounterPrefix: "flow:counter:",
		BlockPrefix:   "flow:block:",
	})

	return limiter, mr
}

func TestAllowOnce(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()
	const key = "verify:email:limit:register:10.0.0.1"

	allowed, err := limiter.AllowOnce(ctx, key, 60*time.Second)
	if err != nil {
		t.Fatalf("AllowOnce failed: %v", err)
	}
	if !allowed {
		t.Fatal("first call should be allowed")
	}

	allowed, err = limiter.AllowOnce(ctx, key, 60*time.Second)
	if err != nil {
		t.Fatalf("AllowOnce failed: %v", err)
	}
	if allowed {
		t.Fatal("second call within the cooldown should be denied")
	}

	mr.FastForward(61 * time.Second)

	allowed, err = limiter.AllowOnce(ctx, key, 60*time.Second)
	if err != nil {
		t.Fatalf("AllowOnce failed: %v", err)
	}
	if !allowed {
		t.Fatal("call after the cooldown expired should be allowed")
	}
}

func TestAllowOnceDistinctKeys(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		allowed, err := limiter.AllowOnce(ctx, key, time.Minute)
		if err != nil {
			t.Fatalf("AllowOnce(%q) failed: %v", key, err)
		}
		if !allowed {
			t.Errorf("AllowOnce(%q) denied, keys must not interfere", key)
		}
	}
}

func TestAllowWindowedCeilingAndBlock(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()
	const ip = "10.0.0.1"
	const (
		maxCount = 10
		window   = 3 * time.Second
		block    = 30 * time.Second
	)

	// 11 rapid requests: the first 10 pass, the 11th trips the block.
	for i := 1; i <= maxCount; i++ {
		allowed, err := limiter.AllowWindowed(ctx, ip, maxCount, window, block)
		if err != nil {
			t.Fatalf("AllowWindowed #%d failed: %v", i, err)
		}
		if !allowed {
			t.Fatalf("request %d of %d should be allowed", i, maxCount)
		}
	}

	allowed, err := limiter.AllowWindowed(ctx, ip, maxCount, window, block)
	if err != nil {
		t.Fatalf("AllowWindowed failed: %v", err)
	}
	if allowed {
		t.Fatal("request over the ceiling should be denied")
	}

	// Even after the counting window has long reset, the punitive block
	// keeps denying.
	mr.FastForward(5 * time.Second)
	allowed, err = limiter.AllowWindowed(ctx, ip, maxCount, window, block)
	if err != nil {
		t.Fatalf("AllowWindowed failed: %v", err)
	}
	if allowed {
		t.Fatal("request during the block period should be denied")
	}

	mr.FastForward(31 * time.Second)
	allowed, err = limiter.AllowWindowed(ctx, ip, maxCount, window, block)
	if err != nil {
		t.Fatalf("AllowWindowed failed: %v", err)
	}
	if !allowed {
		t.Fatal("request after the block expired should be allowed")
	}
}

func TestAllowWindowedWindowReset(t *testing.T) {
	limiter, mr := newTestLimiter(t)
	ctx := context.Background()
	const ip = "10.0.0.2"

	for i := 0; i < 5; i++ {
		if allowed, err := limiter.AllowWindowed(ctx, ip, 5, 3*time.Second, 30*time.Second); err != nil || !allowed {
			t.Fatalf("request %d: allowed=%v err=%v", i, allowed, err)
		}
	}

	// Staying at the ceiling without exceeding it never sets the block, so
	// a fresh window starts clean.
	mr.FastForward(4 * time.Second)

	for i := 0; i < 5; i++ {
		if allowed, err := limiter.AllowWindowed(ctx, ip, 5, 3*time.Second, 30*time.Second); err != nil || !allowed {
			t.Fatalf("request %d in new window: allowed=%v err=%v", i, allowed, err)
		}
	}
}

func TestAllowWindowedIsolatesClients(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if allowed, _ := limiter.AllowWindowed(ctx, "10.0.0.3", 2, time.Minute, time.Minute); i == 2 && allowed {
			t.Fatal("third request for the saturated client should be denied")
		}
	}

	allowed, err := limiter.AllowWindowed(ctx, "10.0.0.4", 2, time.Minute, time.Minute)
	if err != nil {
		t.Fatalf("AllowWindowed failed: %v", err)
	}
	if !allowed {
		t.Fatal("an unrelated client must not be affected")
	}
}

func TestAllowWindowedConcurrent(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()
	const (
		callers  = 25
		maxCount = 10
	)

	var wg sync.WaitGroup
	results := make(chan bool, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			allowed, err := limiter.AllowWindowed(ctx, "10.0.0.5", maxCount, time.Minute, time.Minute)
			if err != nil {
				t.Errorf("AllowWindowed failed: %v", err)
				return
			}
			results <- allowed
		}()
	}
	wg.Wait()
	close(results)

	allowed := 0
	for ok := range results {
		if ok {
			allowed++
		}
	}

	// The INCR is atomic, so exactly maxCount callers win regardless of
	// interleaving.
	if allowed != maxCount {
		t.Errorf("allowed %d concurrent callers, want exactly %d", allowed, maxCount)
	}
}

func TestCountAndReset(t *testing.T) {
	limiter, _ := newTestLimiter(t)
	ctx := context.Background()

	count, err := limiter.Count(ctx, "10.0.0.6")
	if err != nil || count != 0 {
		t.Fatalf("Count on missing key = %d, %v; want 0, nil", count, err)
	}

	for i := 0; i < 3; i++ {
		if _, err := limiter.AllowWindowed(ctx, "10.0.0.6", 10, time.Minute, time.Minute); err != nil {
			t.Fatalf("AllowWindowed failed: %v", err)
		}
	}

	count, err = limiter.Count(ctx, "10.0.0.6")
	if err != nil || count != 3 {
		t.Fatalf("Count = %d, %v; want 3, nil", count, err)
	}

	if err := limiter.Reset(ctx, "10.0.0.6"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}

	count, err = limiter.Count(ctx, "10.0.0.6")
	if err != nil || count != 0 {
		t.Fatalf("Count after Reset = %d, %v; want 0, nil", count, err)
	}
}
