package reddit

import (
	"context"
	"net/url"
	"strings"
	"time"

	"postsync-curator/internal/model"
)

// Subreddit binds a subreddit name to its inclusion threshold.
type Subreddit struct {
	Name     string
	MinScore int
}

// excludedHosts filters out link aggregators and self-referential domains that
// never make good source content.
var excludedHosts = map[string]struct{}{
	"reddit.com":     {},
	"www.reddit.com": {},
	"redd.it":        {},
	"i.redd.it":      {},
	"v.redd.it":      {},
	"imgur.com":      {},
	"i.imgur.com":    {},
}

// Fetcher polls hot and new listings for each configured subreddit, applying
// the per-subreddit score threshold (floored at MinScore), the recency cutoff,
// and the removed/deleted-post filters.
type Fetcher struct {
	Client      *Client
	Subreddits  []Subreddit
	MinScore    int
	MaxAge      time.Duration
	LimitPerSub int

	now func() time.Time
}

func (f *Fetcher) Name() string { return "reddit" }

func (f *Fetcher) Fetch(ctx context.Context) ([]model.ContentCandidate, error) {
	nowFn := f.now
	if nowFn == nil {
		nowFn = time.Now
	}
	cutoff := nowFn().UTC().Add(-f.MaxAge)

	seen := make(map[string]struct{})
	var out []model.ContentCandidate
	var lastErr error
	for _, sub := range f.Subreddits {
		minScore := sub.MinScore
		if f.MinScore > minScore {
			minScore = f.MinScore
		}
		for _, sort := range []string{"hot", "new"} {
			items, err := f.Client.Listing(ctx, sub.Name, sort, f.LimitPerSub/2)
			if err != nil {
				lastErr = err
				continue
			}
			for _, it := range items {
				if _, ok := seen[it.ID]; ok {
					continue
				}
				if !f.include(it, cutoff, minScore) {
					continue
				}
				seen[it.ID] = struct{}{}
				out = append(out, it)
			}
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}

// include applies the discovery filters: recency cutoff, score threshold,
// deleted text, and excluded domains.
func (f *Fetcher) include(c model.ContentCandidate, cutoff time.Time, minScore int) bool {
	if c.PublishedAt.Before(cutoff) {
		return false
	}
	if c.Upvotes < minScore {
		return false
	}
	if strings.TrimSpace(c.RawText) == "[deleted]" || strings.TrimSpace(c.RawText) == "[removed]" {
		return false
	}
	if u, err := url.Parse(c.SourceURL); err == nil {
		if _, excluded := excludedHosts[strings.ToLower(u.Host)]; excluded {
			return false
		}
	}
	return true
}
