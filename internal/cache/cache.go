package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"edunova-platform/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// ErrInvalidation wraps a failed cache delete during a write. Callers must
// not acknowledge the write as successful while this error stands; a missed
// invalidation is a consistency violation, not a performance hiccup.
var ErrInvalidation = errors.New("cache invalidation failed")

// Cache is a read-through, write-invalidate layer over redis.
//
// It is never the source of truth: every Get miss (including transport
// errors) must be satisfiable by falling through to the authoritative store,
// so a total cache outage degrades latency, not correctness.
type Cache struct {
	rdb        *redis.Client
	defaultTTL time.Duration
	timeout    time.Duration
}

func New(rdb *redis.Client, defaultTTL, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Cache{rdb: rdb, defaultTTL: defaultTTL, timeout: timeout}
}

// DefaultTTL is the configured staleness bound for cached reads.
func (c *Cache) DefaultTTL() time.Duration { return c.defaultTTL }

// Key builds a deterministic cache key from resource type and identifying
// parts, e.g. Key("courses", "id", "42") -> "courses:id:42".
func Key(parts ...string) string {
	return strings.Join(parts, ":")
}

// Get loads key into dest and reports whether it was a hit. Transport and
// decode failures are misses; the caller falls through to the store.
func (c *Cache) Get(ctx context.Context, key string, dest any) bool {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := c.rdb.Get(opCtx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.From(ctx).Warn("cache get failed", "key", key, "err", err)
		}
		return false
	}
	if err := json.Unmarshal(data, dest); err != nil {
		logger.From(ctx).Warn("cache entry corrupt", "key", key, "err", err)
		return false
	}
	return true
}

// Set stores val under key. ttl <= 0 means "do not cache", never "cache
// forever". Set failures are logged, not returned: a missing entry only
// costs the next reader a store round-trip.
func (c *Cache) Set(ctx context.Context, key string, val any, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	data, err := json.Marshal(val)
	if err != nil {
		logger.From(ctx).Warn("cache encode failed", "key", key, "err", err)
		return
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rdb.Set(opCtx, key, data, ttl).Err(); err != nil {
		logger.From(ctx).Warn("cache set failed", "key", key, "err", err)
	}
}

// Delete removes exact keys. Unlike Set, failures are returned: deletes back
// writes, and a write must not be acked while stale entries may survive.
func (c *Cache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.rdb.Del(opCtx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidation, err)
	}
	return nil
}

// DeleteByPrefix removes every key under prefix. Used for list-style keys
// (paginated/filtered reads) whose exact combinations cannot be enumerated.
func (c *Cache) DeleteByPrefix(ctx context.Context, prefix string) error {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(opCtx, cursor, prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidation, err)
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(opCtx, keys...).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrInvalidation, err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
