package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l, err := New(rdb, "rl:login", limit, window)
	if err != nil {
		t.Fatalf("new limiter: %v", err)
	}
	return l, mr
}

func TestAllowUpToLimit(t *testing.T) {
	l, _ := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatalf("allow %d: %v", i, err)
		}
		if !ok {
			t.Fatalf("expected request %d allowed", i)
		}
	}

	ok, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatalf("allow over limit: %v", err)
	}
	if ok {
		t.Fatalf("expected rejection over limit")
	}

	// Independent key gets its own window.
	if ok, _ := l.Allow(ctx, "5.6.7.8"); !ok {
		t.Fatalf("expected separate key allowed")
	}
}

func TestWindowResets(t *testing.T) {
	l, mr := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if ok, _ := l.Allow(ctx, "ip"); !ok {
		t.Fatalf("expected first request allowed")
	}
	if ok, _ := l.Allow(ctx, "ip"); ok {
		t.Fatalf("expected second request rejected")
	}

	mr.FastForward(2 * time.Minute)

	if ok, _ := l.Allow(ctx, "ip"); !ok {
		t.Fatalf("expected allow after window reset")
	}
}

func TestNewRejectsInvalidArgs(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	if _, err := New(nil, "p", 1, time.Second); err == nil {
		t.Fatalf("expected error for nil client")
	}
	if _, err := New(rdb, "p", 0, time.Second); err == nil {
		t.Fatalf("expected error for zero limit")
	}
	if _, err := New(rdb, "p", 1, 0); err == nil {
		t.Fatalf("expected error for zero window")
	}
}
