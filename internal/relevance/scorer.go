package relevance

import (
	"math"
	"strings"
	"time"

	"postsync-curator/internal/config"
	"postsync-curator/internal/model"
)

// clockSkewTolerance is how far a publication timestamp may lead the local
// clock before the candidate is rejected as malformed.
const clockSkewTolerance = 5 * time.Minute

// Scorer computes weighted relevance scores for candidates. It is a pure
// function of the candidate, the scoring config, and the current time.
type Scorer struct {
	cfg config.ScoringConfig
	now func() time.Time
}

// NewScorer creates a scorer for the given policy.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// Score computes the candidate's relevance score on the 0-100 scale along with
// its per-component breakdown. Each component is normalized to [0,1] before
// weighting, so the final score equals the weighted sum of the breakdown
// scaled by 100.
func (s *Scorer) Score(c model.ContentCandidate) (model.ScoredCandidate, error) {
	now := s.now().UTC()
	if err := c.Validate(now, clockSkewTolerance); err != nil {
		return model.ScoredCandidate{}, err
	}
	b := model.ScoreBreakdown{
		Upvotes:  saturatedLog(c.Upvotes, s.cfg.UpvoteSaturation),
		Comments: saturatedLog(c.CommentCount, s.cfg.CommentSaturation),
		Recency:  recencyScore(now.Sub(c.PublishedAt).Hours(), s.cfg.MaxAgeHours),
		Keywords: keywordScore(c, s.cfg.PriorityKeywords, s.cfg.KeywordNormalizer),
	}
	w := s.cfg.Weights
	score := w.Upvotes*b.Upvotes + w.Comments*b.Comments + w.Recency*b.Recency + w.Keywords*b.Keywords
	return model.ScoredCandidate{Candidate: c, Score: score * 100, Breakdown: b}, nil
}

// saturatedLog maps a raw count to [0,1] on a logarithmic curve that caps at
// the saturation point, so a single viral post cannot dominate the ranking
// indefinitely.
func saturatedLog(count, saturation int) float64 {
	if count <= 0 {
		return 0
	}
	v := math.Log(1+float64(count)) / math.Log(1+float64(saturation))
	return math.Min(1, v)
}

// recencyScore decays linearly from 1 at age zero to 0 at maxAgeHours.
func recencyScore(ageHours, maxAgeHours float64) float64 {
	if ageHours < 0 {
		// within clock-skew tolerance
		ageHours = 0
	}
	return math.Max(0, 1-ageHours/maxAgeHours)
}

// keywordScore counts distinct priority keywords occurring in the title and
// raw text, case-insensitively, each keyword at most once, capped once
// normalizer distinct keywords are present.
func keywordScore(c model.ContentCandidate, keywords []string, normalizer int) float64 {
	if len(keywords) == 0 {
		return 0
	}
	text := strings.ToLower(c.Title + " " + c.RawText)
	matched := 0
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) {
			matched++
		}
	}
	return math.Min(1, float64(matched)/float64(normalizer))
}
