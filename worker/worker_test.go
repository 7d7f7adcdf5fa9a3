package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"postsync-curator/internal/model"
	"postsync-curator/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeSource struct {
	name  string
	items []model.ContentCandidate
	err   error
}

func (s *fakeSource) Name() string { return s.name }
func (s *fakeSource) Fetch(ctx context.Context) ([]model.ContentCandidate, error) {
	return s.items, s.err
}

func testPool(t *testing.T) *storage.Pool {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return storage.NewPool(rdb)
}

func TestCollectorStoresValidDropsInvalid(t *testing.T) {
	now := time.Now().UTC()
	src := &fakeSource{
		name: "testsource",
		items: []model.ContentCandidate{
			{ID: "ok-1", Title: "A story", SourceURL: "https://example.com/a", Upvotes: 10, PublishedAt: now.Add(-time.Hour)},
			{ID: "bad-future", Title: "From tomorrow", SourceURL: "https://example.com/b", PublishedAt: now.Add(2 * time.Hour)},
			{ID: "bad-empty", PublishedAt: now.Add(-time.Hour)},
			{ID: "ok-2", Title: "Another story", SourceURL: "https://example.com/c", Upvotes: 3, PublishedAt: now.Add(-2 * time.Hour)},
		},
	}
	pool := testPool(t)
	w := &Collector{Source: src, Pool: pool}

	ctx := context.Background()
	w.runOnce(ctx)

	day := periodKey("daily", now)
	got, err := pool.Candidates(ctx, []string{"testsource"}, day, 10)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("stored %d candidates, want 2", len(got))
	}
	for _, c := range got {
		if c.ID != "ok-1" && c.ID != "ok-2" {
			t.Errorf("unexpected candidate stored: %s", c.ID)
		}
	}
}

func TestCollectorFetchErrorStoresNothing(t *testing.T) {
	src := &fakeSource{name: "testsource", err: errors.New("upstream down")}
	pool := testPool(t)
	w := &Collector{Source: src, Pool: pool}

	ctx := context.Background()
	w.runOnce(ctx)

	got, err := pool.Candidates(ctx, []string{"testsource"}, periodKey("daily", time.Now().UTC()), 10)
	if err != nil {
		t.Fatalf("Candidates: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("stored %d candidates after fetch error, want 0", len(got))
	}
}

func TestPeriodKey(t *testing.T) {
	ts := time.Date(2024, 3, 6, 15, 0, 0, 0, time.UTC) // a Wednesday
	if got := periodKey("daily", ts); got != "2024-03-06" {
		t.Errorf("daily = %q, want 2024-03-06", got)
	}
	if got := periodKey("weekly", ts); got != "2024-W10" {
		t.Errorf("weekly = %q, want 2024-W10", got)
	}
	// unknown frequencies fall back to daily
	if got := periodKey("", ts); got != "2024-03-06" {
		t.Errorf("default = %q, want 2024-03-06", got)
	}
}
