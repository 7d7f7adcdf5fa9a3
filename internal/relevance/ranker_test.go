package relevance

import (
	"context"
	"reflect"
	"testing"
	"time"

	"postsync-curator/internal/history"
	"postsync-curator/internal/model"
)

// failingStore wraps a MemoryStore and fails Exists for selected fingerprints.
type failingStore struct {
	inner *history.MemoryStore
	fail  map[string]bool
}

func (s *failingStore) Exists(ctx context.Context, fp string, window time.Duration) (bool, error) {
	if s.fail[fp] {
		return false, history.ErrUnavailable
	}
	return s.inner.Exists(ctx, fp, window)
}

func (s *failingStore) Record(ctx context.Context, fp string, at time.Time) error {
	return s.inner.Record(ctx, fp, at)
}

func testRanker(t *testing.T, now time.Time, hist history.Store) *Ranker {
	t.Helper()
	return NewRanker(fixedScorer(testScoringConfig(), now), hist)
}

func TestRankEndToEndScenario(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := testRanker(t, now, history.NewMemoryStore())

	batch := []model.ContentCandidate{
		{
			ID: "A", Title: "AI startup raises $10M in funding", SourceURL: "https://example.com/a",
			Upvotes: 200, CommentCount: 50, PublishedAt: now.Add(-2 * time.Hour),
			RawText: "launch after the funding round",
		},
		{
			// duplicate of A: same URL, case-variant title
			ID: "B", Title: "ai startup raises $10m in FUNDING", SourceURL: "https://example.com/a",
			Upvotes: 10, CommentCount: 1, PublishedAt: now.Add(-time.Hour),
		},
		{
			ID: "C", Title: "Quiet post", SourceURL: "https://example.com/c",
			Upvotes: 5, CommentCount: 1, PublishedAt: now.Add(-40 * time.Hour),
		},
	}

	out, err := r.Rank(context.Background(), batch)
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(out.Ranked) != 1 {
		t.Fatalf("expected exactly one survivor, got %d", len(out.Ranked))
	}
	if out.Ranked[0].Candidate.ID != "A" {
		t.Errorf("expected A to survive, got %s", out.Ranked[0].Candidate.ID)
	}
	if out.Duplicates != 1 {
		t.Errorf("expected one in-batch duplicate, got %d", out.Duplicates)
	}
	if out.BelowThreshold != 1 {
		t.Errorf("expected one below-threshold exclusion, got %d", out.BelowThreshold)
	}
}

func TestRankThresholdExclusion(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := testRanker(t, now, history.NewMemoryStore())

	// zero engagement, zero keywords, recency horizon exceeded
	out, err := r.Rank(context.Background(), []model.ContentCandidate{{
		ID: "cold", Title: "Nothing happening here", SourceURL: "https://example.com/cold",
		PublishedAt: now.Add(-48 * time.Hour),
	}})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(out.Ranked) != 0 {
		t.Fatalf("expected empty ranking, got %d items", len(out.Ranked))
	}
	if out.BelowThreshold != 1 {
		t.Errorf("expected below-threshold count 1, got %d", out.BelowThreshold)
	}
}

func TestRankWindowedDedupAcrossBatches(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	hist := history.NewMemoryStore()
	r := testRanker(t, now, hist)

	c := model.ContentCandidate{
		ID: "hot", Title: "Big acquisition announced with funding and launch", SourceURL: "https://example.com/hot",
		Upvotes: 400, CommentCount: 80, PublishedAt: now.Add(-time.Hour),
	}

	out, err := r.Rank(context.Background(), []model.ContentCandidate{c})
	if err != nil {
		t.Fatalf("first rank: %v", err)
	}
	if len(out.Ranked) != 1 {
		t.Fatalf("expected candidate to rank on first pass, got %d", len(out.Ranked))
	}
	if err := hist.Record(context.Background(), string(out.Ranked[0].Fingerprint), now); err != nil {
		t.Fatalf("record: %v", err)
	}

	out2, err := r.Rank(context.Background(), []model.ContentCandidate{c})
	if err != nil {
		t.Fatalf("second rank: %v", err)
	}
	if len(out2.Ranked) != 0 {
		t.Fatal("recorded fingerprint must be excluded within the dedup window")
	}
	if out2.Duplicates != 1 {
		t.Errorf("expected windowed duplicate count 1, got %d", out2.Duplicates)
	}
}

func TestRankStoreUnavailableConservatism(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	affected := model.ContentCandidate{
		ID: "affected", Title: "Funding launch acquisition news", SourceURL: "https://example.com/affected",
		Upvotes: 300, CommentCount: 60, PublishedAt: now.Add(-time.Hour),
	}
	healthy := model.ContentCandidate{
		ID: "healthy", Title: "Another funding launch acquisition story", SourceURL: "https://example.com/healthy",
		Upvotes: 250, CommentCount: 40, PublishedAt: now.Add(-2 * time.Hour),
	}
	fpAffected, err := NewFingerprint(affected)
	if err != nil {
		t.Fatalf("fingerprint: %v", err)
	}

	store := &failingStore{inner: history.NewMemoryStore(), fail: map[string]bool{string(fpAffected): true}}
	r := testRanker(t, now, store)

	out, err := r.Rank(context.Background(), []model.ContentCandidate{affected, healthy})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(out.Ranked) != 1 || out.Ranked[0].Candidate.ID != "healthy" {
		t.Fatalf("expected only the unaffected candidate, got %+v", out.Ranked)
	}
	if len(out.StoreFailures) != 1 || out.StoreFailures[0].ID != "affected" {
		t.Errorf("store failure must be surfaced, got %+v", out.StoreFailures)
	}
}

func TestRankInvalidCandidateIsolated(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := testRanker(t, now, history.NewMemoryStore())

	out, err := r.Rank(context.Background(), []model.ContentCandidate{
		{ID: "bad"}, // nothing to fingerprint
		{
			ID: "good", Title: "Funding launch acquisition roundup", SourceURL: "https://example.com/good",
			Upvotes: 300, CommentCount: 60, PublishedAt: now.Add(-time.Hour),
		},
	})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(out.Ranked) != 1 || out.Ranked[0].Candidate.ID != "good" {
		t.Fatalf("bad candidate must not sink the batch: %+v", out.Ranked)
	}
	if len(out.Invalid) != 1 || out.Invalid[0].ID != "bad" {
		t.Errorf("invalid drop not reported: %+v", out.Invalid)
	}
}

func TestRankOrderingAndDeterminism(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	batch := []model.ContentCandidate{
		{ID: "low", Title: "Funding story", SourceURL: "https://example.com/1", Upvotes: 50, CommentCount: 10, PublishedAt: now.Add(-3 * time.Hour)},
		{ID: "high", Title: "Funding launch acquisition story", SourceURL: "https://example.com/2", Upvotes: 400, CommentCount: 90, PublishedAt: now.Add(-time.Hour)},
		{ID: "mid", Title: "Launch report alpha", SourceURL: "https://example.com/3", Upvotes: 200, CommentCount: 30, PublishedAt: now.Add(-4 * time.Hour)},
	}

	run := func() []string {
		r := testRanker(t, now, history.NewMemoryStore())
		out, err := r.Rank(context.Background(), batch)
		if err != nil {
			t.Fatalf("rank: %v", err)
		}
		ids := make([]string, 0, len(out.Ranked))
		for _, rc := range out.Ranked {
			ids = append(ids, rc.Candidate.ID)
		}
		return ids
	}

	first := run()
	if len(first) == 0 || first[0] != "high" {
		t.Errorf("expected high-signal candidate first, got %v", first)
	}
	for i := 0; i < 5; i++ {
		if again := run(); !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking is not deterministic: %v vs %v", first, again)
		}
	}
}

func TestRankBatchCollisionPrefersHigherUpvotes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := testRanker(t, now, history.NewMemoryStore())

	out, err := r.Rank(context.Background(), []model.ContentCandidate{
		{ID: "weak", Title: "Same funding launch story", SourceURL: "https://example.com/same", Upvotes: 10, CommentCount: 2, PublishedAt: now.Add(-time.Hour)},
		{ID: "strong", Title: "same FUNDING launch story", SourceURL: "https://example.com/same", Upvotes: 450, CommentCount: 90, PublishedAt: now.Add(-2 * time.Hour)},
	})
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(out.Ranked) != 1 || out.Ranked[0].Candidate.ID != "strong" {
		t.Fatalf("collision group should keep the higher-upvote candidate, got %+v", out.Ranked)
	}
}
