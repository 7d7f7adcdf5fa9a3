package hackernews

import (
	"context"

	"postsync-curator/internal/model"
)

// Fetcher polls the configured HN story lists and produces one deduplicated
// batch of candidates per fetch.
type Fetcher struct {
	Client       *Client
	Lists        []string
	LimitPerList int
}

func (f *Fetcher) Name() string { return "hackernews" }

func (f *Fetcher) Fetch(ctx context.Context) ([]model.ContentCandidate, error) {
	lists := f.Lists
	if len(lists) == 0 {
		lists = []string{"top"}
	}
	seen := make(map[string]struct{})
	var out []model.ContentCandidate
	var lastErr error
	for _, list := range lists {
		items, err := f.Client.Stories(ctx, list, f.LimitPerList)
		if err != nil {
			// keep polling the remaining lists; report the failure if nothing
			// was fetched at all
			lastErr = err
			continue
		}
		for _, it := range items {
			if _, ok := seen[it.ID]; ok {
				continue
			}
			seen[it.ID] = struct{}{}
			out = append(out, it)
		}
	}
	if len(out) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return out, nil
}
