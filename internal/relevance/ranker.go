package relevance

import (
	"context"
	"sort"
	"time"

	"postsync-curator/internal/history"
	"postsync-curator/internal/model"
)

// Ranked pairs a scored candidate with the fingerprint it was deduplicated by,
// so callers can record the fingerprint as soon as the candidate is selected.
type Ranked struct {
	model.ScoredCandidate
	Fingerprint Fingerprint
}

// Drop explains why a candidate was excluded from the ranked output.
type Drop struct {
	ID     string
	Reason string
	Err    error
}

// Outcome is the result of a ranking pass. Per-candidate failures never abort
// the batch; they are reported here so callers can surface them as batch-level
// warnings instead of silently swallowing them.
type Outcome struct {
	Ranked []Ranked
	// Invalid lists candidates dropped for malformed input.
	Invalid []Drop
	// StoreFailures lists candidates excluded conservatively because the
	// history store could not be reached for them.
	StoreFailures []Drop
	// Duplicates counts candidates excluded by in-batch or windowed dedup.
	Duplicates int
	// BelowThreshold counts candidates scored under the minimum.
	BelowThreshold int
}

// Ranker runs the filter-then-sort pipeline: dedup against the batch and the
// history store, score the survivors, drop those under the minimum score, and
// order the rest deterministically. Selection of how many to keep is the
// caller's responsibility.
type Ranker struct {
	scorer  *Scorer
	hist    history.Store
	window  time.Duration
	minimum float64
}

// NewRanker wires a scorer and history store into a ranker using the scorer's
// configured dedup window and minimum score.
func NewRanker(scorer *Scorer, hist history.Store) *Ranker {
	return &Ranker{
		scorer:  scorer,
		hist:    hist,
		window:  scorer.cfg.DedupWindow(),
		minimum: scorer.cfg.MinimumScore,
	}
}

// Rank processes one candidate batch. The output ordering is deterministic for
// a fixed batch, config, and history state: score descending, then upvotes
// descending, then earlier publication.
func (r *Ranker) Rank(ctx context.Context, batch []model.ContentCandidate) (Outcome, error) {
	var out Outcome

	survivors, err := r.dedup(ctx, batch, &out)
	if err != nil {
		return out, err
	}

	for _, entry := range survivors {
		sc, err := r.scorer.Score(entry.candidate)
		if err != nil {
			out.Invalid = append(out.Invalid, Drop{ID: entry.candidate.ID, Reason: "scoring rejected candidate", Err: err})
			continue
		}
		if sc.Score < r.minimum {
			out.BelowThreshold++
			continue
		}
		out.Ranked = append(out.Ranked, Ranked{ScoredCandidate: sc, Fingerprint: entry.fp})
	}

	sort.SliceStable(out.Ranked, func(i, j int) bool {
		a, b := out.Ranked[i], out.Ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Candidate.Upvotes != b.Candidate.Upvotes {
			return a.Candidate.Upvotes > b.Candidate.Upvotes
		}
		return a.Candidate.PublishedAt.Before(b.Candidate.PublishedAt)
	})
	return out, nil
}

type fingerprinted struct {
	candidate model.ContentCandidate
	fp        Fingerprint
	index     int
}

// dedup runs stage one: drop unfingerprintable candidates, collapse in-batch
// fingerprint collisions, and exclude fingerprints seen within the window.
// A history failure excludes the affected candidate only; the rest of the
// batch proceeds.
func (r *Ranker) dedup(ctx context.Context, batch []model.ContentCandidate, out *Outcome) ([]fingerprinted, error) {
	groups := make(map[Fingerprint]fingerprinted)
	order := make([]Fingerprint, 0, len(batch))
	for i, c := range batch {
		fp, err := NewFingerprint(c)
		if err != nil {
			out.Invalid = append(out.Invalid, Drop{ID: c.ID, Reason: "cannot fingerprint candidate", Err: err})
			continue
		}
		cur, ok := groups[fp]
		if !ok {
			groups[fp] = fingerprinted{candidate: c, fp: fp, index: i}
			order = append(order, fp)
			continue
		}
		out.Duplicates++
		if preferOver(c, i, cur) {
			groups[fp] = fingerprinted{candidate: c, fp: fp, index: i}
		}
	}

	survivors := make([]fingerprinted, 0, len(order))
	for _, fp := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		entry := groups[fp]
		seen, err := r.hist.Exists(ctx, string(fp), r.window)
		if err != nil {
			// assume possible duplicate, exclude conservatively
			out.StoreFailures = append(out.StoreFailures, Drop{ID: entry.candidate.ID, Reason: "history check failed", Err: err})
			continue
		}
		if seen {
			out.Duplicates++
			continue
		}
		survivors = append(survivors, entry)
	}
	return survivors, nil
}

// preferOver reports whether candidate c at position index should replace cur
// as the representative of a batch-collision group: higher upvotes win, then
// earlier publication, then the earlier batch position.
func preferOver(c model.ContentCandidate, index int, cur fingerprinted) bool {
	if c.Upvotes != cur.candidate.Upvotes {
		return c.Upvotes > cur.candidate.Upvotes
	}
	if !c.PublishedAt.Equal(cur.candidate.PublishedAt) {
		return c.PublishedAt.Before(cur.candidate.PublishedAt)
	}
	return index < cur.index
}
