package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"postsync-curator/internal/model"
)

// Client reads subreddit listings via Reddit's public JSON endpoints.
type Client struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewClient creates a Reddit listing client. baseURL defaults to
// "https://www.reddit.com". Reddit rejects requests without a descriptive
// User-Agent, so one is always sent.
func NewClient(baseURL, userAgent string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "https://www.reddit.com"
	}
	if strings.TrimSpace(userAgent) == "" {
		userAgent = "postsync-curator/1.0"
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
		client:    &http.Client{Timeout: 10 * time.Second},
	}
}

// listing mirrors the subset of Reddit's listing envelope we consume.
type listing struct {
	Data struct {
		Children []struct {
			Data post `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type post struct {
	ID                string  `json:"id"`
	Title             string  `json:"title"`
	URL               string  `json:"url"`
	Permalink         string  `json:"permalink"`
	Selftext          string  `json:"selftext"`
	Score             int     `json:"score"`
	NumComments       int     `json:"num_comments"`
	CreatedUTC        float64 `json:"created_utc"`
	RemovedByCategory string  `json:"removed_by_category"`
}

// Listing fetches one subreddit listing (sort is "hot" or "new") and converts
// the posts into candidates. Posts removed by moderation carry
// removed_by_category and are skipped here; all other filtering is the
// fetcher's job.
func (c *Client) Listing(ctx context.Context, subreddit, sort string, limit int) ([]model.ContentCandidate, error) {
	endpoint := fmt.Sprintf("%s/r/%s/%s.json", c.baseURL, url.PathEscape(subreddit), url.PathEscape(sort))
	q := url.Values{"limit": {fmt.Sprintf("%d", limit)}, "raw_json": {"1"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("reddit: r/%s/%s status %d", subreddit, sort, resp.StatusCode)
	}
	var l listing
	if err := json.NewDecoder(resp.Body).Decode(&l); err != nil {
		return nil, err
	}
	out := make([]model.ContentCandidate, 0, len(l.Data.Children))
	for _, ch := range l.Data.Children {
		if ch.Data.RemovedByCategory != "" {
			continue
		}
		out = append(out, convertPost(c.baseURL, ch.Data))
	}
	return out, nil
}

func convertPost(baseURL string, p post) model.ContentCandidate {
	link := strings.TrimSpace(p.URL)
	if !strings.HasPrefix(link, "http") {
		link = baseURL + p.Permalink
	}
	return model.ContentCandidate{
		ID:           "rd-" + p.ID,
		Title:        p.Title,
		SourceURL:    link,
		Upvotes:      p.Score,
		CommentCount: p.NumComments,
		PublishedAt:  time.Unix(int64(p.CreatedUTC), 0).UTC(),
		RawText:      p.Selftext,
	}
}
