package session

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrUnavailable wraps registry transport failures. Callers must treat it as
// fail-closed: an unreachable registry can never mean "trust the token".
var ErrUnavailable = errors.New("session registry unavailable")

const keyPrefix = "session:"

// Store records which token is currently trusted per subject, giving
// server-side revocability to otherwise stateless tokens.
//
// Keying is per subject id: activating a session overwrites any prior one,
// so the last login wins and older tokens fail IsActive even while still
// cryptographically valid.
type Store struct {
	rdb     *redis.Client
	timeout time.Duration
}

func NewStore(rdb *redis.Client, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Store{rdb: rdb, timeout: timeout}
}

// Fingerprint is the stored session value. Only a hash of the token goes into
// redis so a registry dump never leaks usable credentials.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Activate records token as the subject's current session. Last write wins.
// The ttl should mirror the token's own expiry.
func (s *Store) Activate(ctx context.Context, userID int64, token string, ttl time.Duration) error {
	if userID == 0 || token == "" {
		return errors.New("user id and token required")
	}
	if ttl <= 0 {
		return errors.New("ttl must be positive")
	}

	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.rdb.Set(opCtx, key(userID), Fingerprint(token), ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// IsActive reports whether the presented token is the subject's current
// session. A missing record is a plain false; a transport error is returned
// so the caller rejects rather than silently bypassing revocation.
func (s *Store) IsActive(ctx context.Context, userID int64, token string) (bool, error) {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	stored, err := s.rdb.Get(opCtx, key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	fp := Fingerprint(token)
	return subtle.ConstantTimeCompare([]byte(stored), []byte(fp)) == 1, nil
}

// Deactivate deletes the subject's session record. Idempotent; used by
// logout and by administrative account changes.
func (s *Store) Deactivate(ctx context.Context, userID int64) error {
	opCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.rdb.Del(opCtx, key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
