package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"postsync-curator/internal/model"
)

// Client is a minimal Hacker News API client.
// Docs: https://github.com/HackerNews/API
type Client struct {
	baseAPI string
	client  *http.Client
}

// NewClient creates a new Hacker News client. baseAPI should be something like
// "https://hacker-news.firebaseio.com/v0". If empty, it defaults to the v0 endpoint.
func NewClient(baseAPI string) *Client {
	if strings.TrimSpace(baseAPI) == "" {
		baseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	return &Client{
		baseAPI: strings.TrimRight(baseAPI, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// hnItem mirrors the subset of HN item fields we care about.
type hnItem struct {
	ID          int    `json:"id"`
	Type        string `json:"type"` // story, job, ask, show, poll, etc.
	By          string `json:"by"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Text        string `json:"text"`
	Time        int64  `json:"time"`
	Descendants int    `json:"descendants"`
	Score       int    `json:"score"`
}

// Stories fetches a story list (top, new, best, ask, show) and resolves up to
// limit entries into candidates. Unknown list names fall back to top.
func (c *Client) Stories(ctx context.Context, list string, limit int) ([]model.ContentCandidate, error) {
	endpoint := listEndpoint(list)
	ids, err := c.fetchIDs(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return c.candidatesByIDs(ctx, ids)
}

func listEndpoint(list string) string {
	switch strings.ToLower(strings.TrimSpace(list)) {
	case "new", "newstories":
		return "newstories"
	case "best", "beststories":
		return "beststories"
	case "ask", "askstories":
		return "askstories"
	case "show", "showstories":
		return "showstories"
	default:
		return "topstories"
	}
}

// Item fetches a single HN item by ID and converts it into a candidate.
func (c *Client) Item(ctx context.Context, id int) (model.ContentCandidate, error) {
	var zero model.ContentCandidate
	endpoint := fmt.Sprintf("%s/item/%d.json", c.baseAPI, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return zero, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return zero, fmt.Errorf("hackernews: item %d status %d", id, resp.StatusCode)
	}
	var it hnItem
	if err := json.NewDecoder(resp.Body).Decode(&it); err != nil {
		return zero, err
	}
	return convertItem(it), nil
}

// fetchIDs loads a list endpoint such as topstories/newstories/etc.
func (c *Client) fetchIDs(ctx context.Context, list string) ([]int, error) {
	path := fmt.Sprintf("%s/%s.json", c.baseAPI, url.PathEscape(list))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("hackernews: %s status %d", list, resp.StatusCode)
	}
	var ids []int
	if err := json.NewDecoder(resp.Body).Decode(&ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// candidatesByIDs resolves multiple IDs concurrently into candidates.
func (c *Client) candidatesByIDs(ctx context.Context, ids []int) ([]model.ContentCandidate, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	// bounded concurrency
	const maxWorkers = 8
	type result struct {
		idx  int
		item model.ContentCandidate
		err  error
	}
	out := make([]result, len(ids))
	sem := make(chan struct{}, maxWorkers)
	done := make(chan result, len(ids))
	for i, id := range ids {
		i, id := i, id
		sem <- struct{}{}
		go func() {
			defer func() { <-sem }()
			// Per-item timeout to avoid hanging
			ictx, cancel := context.WithTimeout(ctx, 8*time.Second)
			defer cancel()
			it, err := c.Item(ictx, id)
			done <- result{idx: i, item: it, err: err}
		}()
	}
	for i := 0; i < len(ids); i++ {
		r := <-done
		if r.err != nil {
			// skip failed ones; continue
			continue
		}
		out[r.idx] = r
	}
	items := make([]model.ContentCandidate, 0, len(ids))
	for _, r := range out {
		if r.item.ID != "" {
			items = append(items, r.item)
		}
	}
	return items, nil
}

// convertItem maps an hnItem to a candidate.
func convertItem(h hnItem) model.ContentCandidate {
	idStr := fmt.Sprintf("hn-%d", h.ID)
	urlStr := strings.TrimSpace(h.URL)
	if urlStr == "" {
		urlStr = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", h.ID)
	}
	return model.ContentCandidate{
		ID:           idStr,
		Title:        h.Title,
		SourceURL:    urlStr,
		Upvotes:      h.Score,
		CommentCount: h.Descendants,
		PublishedAt:  time.Unix(h.Time, 0).UTC(),
		RawText:      stripHTML(h.Text),
	}
}

var htmlTagRe = regexp.MustCompile(`<[^>]+>`) // best-effort removal

func stripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	// HN "text" is simple HTML; strip tags and unescape common entities.
	s = htmlTagRe.ReplaceAllString(s, "")
	replacer := strings.NewReplacer(
		"&quot;", "\"",
		"&apos;", "'",
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
	)
	return strings.TrimSpace(replacer.Replace(s))
}
