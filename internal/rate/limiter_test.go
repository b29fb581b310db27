package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, cfg), mr
}

func TestLimiterBlocksAfterBudget(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxFailures: 3, Window: time.Minute})
	ctx := context.Background()

	for i := 1; i <= 2; i++ {
		if err := l.Fail(ctx, "admin", ""); err != nil {
			t.Fatalf("failure %d: %v", i, err)
		}
		if err := l.Check(ctx, "admin", ""); err != nil {
			t.Fatalf("check after %d failures: %v", i, err)
		}
	}
	if err := l.Fail(ctx, "admin", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on last failure, got %v", err)
	}
	if err := l.Check(ctx, "admin", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.Check(ctx, "editor", ""); err != nil {
		t.Fatalf("other users must not be throttled: %v", err)
	}
}

func TestLimiterWindowExpires(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxFailures: 1, Window: time.Minute})
	ctx := context.Background()

	_ = l.Fail(ctx, "admin", "")
	if err := l.Check(ctx, "admin", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	mr.FastForward(2 * time.Minute)
	if err := l.Check(ctx, "admin", ""); err != nil {
		t.Fatalf("window should have expired: %v", err)
	}
}

func TestLimiterResetAndFailures(t *testing.T) {
	l, mr := newLimiter(t, Config{Prefix: "t", MaxFailures: 5, EnableIPThrottle: true})
	ctx := context.Background()

	_ = l.Fail(ctx, "admin", "10.0.0.1")
	_ = l.Fail(ctx, "admin", "10.0.0.1")
	if n, err := l.Failures(ctx, "admin"); err != nil || n != 2 {
		t.Fatalf("Failures = %d, %v", n, err)
	}
	if !mr.Exists("t:login:ip:10.0.0.1") {
		t.Fatalf("ip counter missing")
	}

	if err := l.Reset(ctx, "admin", "10.0.0.1"); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if n, _ := l.Failures(ctx, "admin"); n != 0 {
		t.Fatalf("Failures after reset = %d", n)
	}
	if mr.Exists("t:login:ip:10.0.0.1") {
		t.Fatalf("ip counter should be cleared")
	}
}

func TestLimiterIPThrottle(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxFailures: 2, EnableIPThrottle: true})
	ctx := context.Background()

	_ = l.Fail(ctx, "a", "1.2.3.4")
	_ = l.Fail(ctx, "b", "1.2.3.4")
	if err := l.Check(ctx, "c", "1.2.3.4"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ip throttle, got %v", err)
	}
}

func TestLimiterRedisDown(t *testing.T) {
	l, mr := newLimiter(t, DefaultConfig())
	mr.Close()

	if err := l.Check(context.Background(), "admin", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
