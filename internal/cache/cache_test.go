package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return New(rdb, time.Hour, time.Second), mr
}

type snapshot struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func TestKey(t *testing.T) {
	if got := Key("courses", "id", "42"); got != "courses:id:42" {
		t.Fatalf("unexpected key %q", got)
	}
}

func TestGetAfterSetReturnsValue(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	want := snapshot{ID: 1, Title: "intro"}
	c.Set(ctx, "courses:id:1", want, time.Minute)

	var got snapshot
	if !c.Get(ctx, "courses:id:1", &got) {
		t.Fatalf("expected hit")
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestGetMissAfterTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", snapshot{ID: 2}, time.Minute)
	mr.FastForward(2 * time.Minute)

	var got snapshot
	if c.Get(ctx, "k", &got) {
		t.Fatalf("expected miss after TTL")
	}
}

func TestZeroTTLMeansDoNotCache(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", snapshot{ID: 3}, 0)

	var got snapshot
	if c.Get(ctx, "k", &got) {
		t.Fatalf("expected miss: ttl 0 must not cache")
	}
}

func TestGetTreatsTransportErrorAsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", snapshot{ID: 4}, time.Minute)
	mr.Close()

	var got snapshot
	if c.Get(ctx, "k", &got) {
		t.Fatalf("expected miss when cache store is down")
	}
}

func TestGetTreatsCorruptEntryAsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if err := mr.Set("k", "{not json"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	var got snapshot
	if c.Get(ctx, "k", &got) {
		t.Fatalf("expected miss on corrupt entry")
	}
}

func TestDeleteRemovesKey(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "k", snapshot{ID: 5}, time.Minute)
	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var got snapshot
	if c.Get(ctx, "k", &got) {
		t.Fatalf("expected miss after delete")
	}
}

func TestDeleteByPrefix(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, "courses:all", snapshot{ID: 1}, time.Minute)
	c.Set(ctx, "courses:id:1", snapshot{ID: 1}, time.Minute)
	c.Set(ctx, "users:all", snapshot{ID: 9}, time.Minute)

	if err := c.DeleteByPrefix(ctx, "courses:"); err != nil {
		t.Fatalf("delete by prefix: %v", err)
	}

	var got snapshot
	if c.Get(ctx, "courses:all", &got) || c.Get(ctx, "courses:id:1", &got) {
		t.Fatalf("expected courses keys gone")
	}
	if !c.Get(ctx, "users:all", &got) {
		t.Fatalf("expected unrelated prefix untouched")
	}
}

func TestDeleteFailureIsReturned(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	mr.Close()

	if err := c.Delete(ctx, "k"); !errors.Is(err, ErrInvalidation) {
		t.Fatalf("expected ErrInvalidation, got %v", err)
	}
	if err := c.DeleteByPrefix(ctx, "courses:"); !errors.Is(err, ErrInvalidation) {
		t.Fatalf("expected ErrInvalidation, got %v", err)
	}
}
