package history

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// callTimeout bounds every history call so an unreachable Redis degrades the
// batch instead of hanging it.
const callTimeout = 5 * time.Second

// RedisStore implements Store on Redis. Each fingerprint maps to a key holding
// its last-seen timestamp, expiring after the retention period.
type RedisStore struct {
	rdb       *redis.Client
	retention time.Duration // must cover the longest dedup window in use
	now       func() time.Time
}

// NewRedisStore creates a Redis-backed history store. retention should be at
// least as long as the largest dedup window any caller will query with.
func NewRedisStore(rdb *redis.Client, retention time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, retention: retention, now: time.Now}
}

func seenKey(fingerprint string) string {
	return fmt.Sprintf("curator:seen:%s", fingerprint)
}

func (s *RedisStore) Exists(ctx context.Context, fingerprint string, window time.Duration) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	res, err := s.rdb.Get(ctx, seenKey(fingerprint)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	at, err := time.Parse(time.RFC3339, res)
	if err != nil {
		// unparseable record: treat as seen, same conservative posture as an
		// unreachable store
		return true, nil
	}
	return s.now().Sub(at) <= window, nil
}

func (s *RedisStore) Record(ctx context.Context, fingerprint string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	key := seenKey(fingerprint)
	res, err := s.rdb.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err == nil {
		// last-seen only moves forward; a stale timestamp still refreshes
		// the retention TTL
		if prev, perr := time.Parse(time.RFC3339, res); perr == nil && !at.After(prev) {
			if err := s.rdb.Expire(ctx, key, s.retention).Err(); err != nil {
				return fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			return nil
		}
	}
	val := at.UTC().Format(time.RFC3339)
	if err := s.rdb.Set(ctx, key, val, s.retention).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
