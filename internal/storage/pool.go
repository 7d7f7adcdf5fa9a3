package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"postsync-curator/internal/model"

	"github.com/redis/go-redis/v9"
)

// candidateTTL controls how long raw candidates stay in the pool.
const candidateTTL = 7 * 24 * time.Hour

// Pool is the Redis-backed candidate pool that decouples source collectors
// from digest builders. Collectors append discovered candidates under a
// per-source day key; builders read a day's batch back for ranking.
type Pool struct {
	rdb *redis.Client
}

// NewPool creates a candidate pool on the given Redis client.
func NewPool(rdb *redis.Client) *Pool {
	return &Pool{rdb: rdb}
}

func dayZKey(source, day string) string {
	return fmt.Sprintf("curator:pool:%s:%s", source, day)
}

func candidateKey(source, id string) string {
	return fmt.Sprintf("curator:candidate:%s:%s", source, id)
}

func publishedKey(channel, period string) string {
	return fmt.Sprintf("curator:published:%s:%s", channel, period)
}

// Add stores/updates a candidate and indexes it in the source's day set,
// ordered by publication time.
func (p *Pool) Add(ctx context.Context, source, day string, c model.ContentCandidate) error {
	b, err := json.Marshal(c)
	if err != nil {
		return err
	}
	if err := p.rdb.Set(ctx, candidateKey(source, c.ID), b, candidateTTL).Err(); err != nil {
		return err
	}
	z := redis.Z{Score: float64(c.PublishedAt.Unix()), Member: c.ID}
	if err := p.rdb.ZAdd(ctx, dayZKey(source, day), z).Err(); err != nil {
		return err
	}
	return p.rdb.Expire(ctx, dayZKey(source, day), candidateTTL).Err()
}

// Candidates returns up to limit of the day's candidates for each of the given
// sources, newest first. Candidates whose payload has already expired are
// skipped.
func (p *Pool) Candidates(ctx context.Context, sources []string, day string, limit int) ([]model.ContentCandidate, error) {
	out := make([]model.ContentCandidate, 0, limit)
	for _, source := range sources {
		ids, err := p.rdb.ZRevRange(ctx, dayZKey(source, day), 0, int64(limit-1)).Result()
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			b, err := p.rdb.Get(ctx, candidateKey(source, id)).Bytes()
			if err == redis.Nil {
				continue
			}
			if err != nil {
				return nil, err
			}
			var c model.ContentCandidate
			if err := json.Unmarshal(b, &c); err != nil {
				return nil, err
			}
			out = append(out, c)
		}
	}
	return out, nil
}

// IsPublished reports whether a digest was already produced for the channel
// in the given period.
func (p *Pool) IsPublished(ctx context.Context, channel, period string) (bool, error) {
	res, err := p.rdb.Get(ctx, publishedKey(channel, period)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res == "1", nil
}

// MarkPublished records that the channel's digest for the period was written.
func (p *Pool) MarkPublished(ctx context.Context, channel, period string) error {
	return p.rdb.Set(ctx, publishedKey(channel, period), "1", 30*24*time.Hour).Err()
}
