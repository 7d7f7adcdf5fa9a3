package model

import (
	"fmt"
	"strings"
	"time"
)

// ContentCandidate represents a single piece of discovered source content
// eligible for scoring. Candidates are immutable once scored; rescoring
// requires a new instance.
type ContentCandidate struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	SourceURL    string    `json:"source_url" yaml:"source_url"`
	Upvotes      int       `json:"upvotes" yaml:"upvotes"`
	CommentCount int       `json:"comment_count" yaml:"comment_count"`
	PublishedAt  time.Time `json:"published_at" yaml:"published_at"`
	RawText      string    `json:"raw_text" yaml:"raw_text"`
}

// ScoreBreakdown holds the normalized [0,1] contribution of each scoring
// component before weighting, kept for explainability.
type ScoreBreakdown struct {
	Upvotes  float64 `json:"upvotes"`
	Comments float64 `json:"comments"`
	Recency  float64 `json:"recency"`
	Keywords float64 `json:"keywords"`
}

// ScoredCandidate decorates a candidate with its relevance score (0-100 scale)
// and the per-component breakdown it was computed from.
type ScoredCandidate struct {
	Candidate ContentCandidate `json:"candidate"`
	Score     float64          `json:"score"`
	Breakdown ScoreBreakdown   `json:"breakdown"`
}

// InvalidCandidateError reports a malformed candidate. Such candidates are
// dropped individually and never abort a whole batch.
type InvalidCandidateError struct {
	ID     string
	Reason string
}

func (e *InvalidCandidateError) Error() string {
	return fmt.Sprintf("invalid candidate %q: %s", e.ID, e.Reason)
}

// Validate checks the required fields against the given reference time.
// A publication timestamp is allowed to lead now by up to skew to tolerate
// clock drift between sources.
func (c ContentCandidate) Validate(now time.Time, skew time.Duration) error {
	if strings.TrimSpace(c.ID) == "" {
		return &InvalidCandidateError{ID: c.ID, Reason: "missing id"}
	}
	if strings.TrimSpace(c.Title) == "" && strings.TrimSpace(c.SourceURL) == "" {
		return &InvalidCandidateError{ID: c.ID, Reason: "missing title and source_url"}
	}
	if c.Upvotes < 0 {
		return &InvalidCandidateError{ID: c.ID, Reason: "negative upvotes"}
	}
	if c.CommentCount < 0 {
		return &InvalidCandidateError{ID: c.ID, Reason: "negative comment_count"}
	}
	if c.PublishedAt.IsZero() {
		return &InvalidCandidateError{ID: c.ID, Reason: "missing published_at"}
	}
	if c.PublishedAt.After(now.Add(skew)) {
		return &InvalidCandidateError{ID: c.ID, Reason: "published_at is in the future"}
	}
	return nil
}
