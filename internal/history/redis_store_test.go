package history

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func testRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisStore(rdb, 30*24*time.Hour), mr
}

func TestRedisStoreRoundTrip(t *testing.T) {
	s, _ := testRedisStore(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	ok, err := s.Exists(ctx, "fp1", 14*24*time.Hour)
	if err != nil {
		t.Fatalf("exists before record: %v", err)
	}
	if ok {
		t.Fatal("fingerprint should not exist before recording")
	}

	if err := s.Record(ctx, "fp1", now.Add(-3*24*time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}

	ok, err = s.Exists(ctx, "fp1", 14*24*time.Hour)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Error("recorded fingerprint should exist within the window")
	}

	ok, err = s.Exists(ctx, "fp1", 24*time.Hour)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Error("3-day-old fingerprint should not exist within a 1-day window")
	}
}

func TestRedisStoreRecordKeepsLatestTimestamp(t *testing.T) {
	s, _ := testRedisStore(t)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	ctx := context.Background()
	if err := s.Record(ctx, "fp1", now.Add(-time.Hour)); err != nil {
		t.Fatalf("record: %v", err)
	}
	// a late replay with an older timestamp must not roll last-seen backwards
	if err := s.Record(ctx, "fp1", now.Add(-10*24*time.Hour)); err != nil {
		t.Fatalf("record stale: %v", err)
	}

	ok, err := s.Exists(ctx, "fp1", 24*time.Hour)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Error("last-seen should still be the newer timestamp")
	}

	if err := s.Record(ctx, "fp1", now); err != nil {
		t.Fatalf("record newer: %v", err)
	}
	ok, err = s.Exists(ctx, "fp1", 30*time.Minute)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if !ok {
		t.Error("newer timestamp should advance last-seen")
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	s, mr := testRedisStore(t)
	mr.Close()

	_, err := s.Exists(context.Background(), "fp", 24*time.Hour)
	if err == nil {
		t.Fatal("expected error from unreachable store")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error should wrap ErrUnavailable, got: %v", err)
	}

	if err := s.Record(context.Background(), "fp", time.Now()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("record error should wrap ErrUnavailable, got: %v", err)
	}
}

func TestRedisStoreRetentionTTL(t *testing.T) {
	s, mr := testRedisStore(t)
	now := time.Now().UTC()

	if err := s.Record(context.Background(), "fp", now); err != nil {
		t.Fatalf("record: %v", err)
	}
	// key expires once the retention period has passed
	mr.FastForward(31 * 24 * time.Hour)
	ok, err := s.Exists(context.Background(), "fp", 60*24*time.Hour)
	if err != nil {
		t.Fatalf("exists: %v", err)
	}
	if ok {
		t.Error("fingerprint should expire with the retention TTL")
	}
}
