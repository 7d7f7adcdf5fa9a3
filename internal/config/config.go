package config

import (
	"fmt"
	"math"
	"time"
)

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// WeightsConfig maps each scoring component to its share of the final score.
// The four weights must sum to 1.0 within a small tolerance.
type WeightsConfig struct {
	Upvotes  float64 `mapstructure:"upvotes"`
	Comments float64 `mapstructure:"comments"`
	Recency  float64 `mapstructure:"recency"`
	Keywords float64 `mapstructure:"keywords"`
}

// ScoringConfig controls the relevance scoring and deduplication policy.
// It is loaded once at startup and read-only thereafter.
type ScoringConfig struct {
	Weights           WeightsConfig `mapstructure:"weights"`
	PriorityKeywords  []string      `mapstructure:"priority_keywords"`
	MinimumScore      float64       `mapstructure:"minimum_score"`      // 0-100 scale
	DedupWindowDays   int           `mapstructure:"dedup_window_days"`  // >= 1
	UpvoteSaturation  int           `mapstructure:"upvote_saturation"`  // votes beyond this add no marginal score
	CommentSaturation int           `mapstructure:"comment_saturation"` // comments beyond this add no marginal score
	MaxAgeHours       float64       `mapstructure:"max_age_hours"`      // recency horizon
	KeywordNormalizer int           `mapstructure:"keyword_normalizer"` // distinct keywords needed for a full keyword score
}

// DedupWindow returns the dedup window as a duration.
func (s ScoringConfig) DedupWindow() time.Duration {
	return time.Duration(s.DedupWindowDays) * 24 * time.Hour
}

// HNConfig controls the Hacker News data source.
type HNConfig struct {
	BaseAPI       string   `mapstructure:"base_api"`
	FetchInterval string   `mapstructure:"fetch_interval"` // duration string, e.g., "10m"
	Lists         []string `mapstructure:"lists"`          // top, new, best, ask, show
	LimitPerList  int      `mapstructure:"limit_per_list"`
}

// SubredditConfig binds a subreddit to its own inclusion threshold.
type SubredditConfig struct {
	Name     string `mapstructure:"name"`
	MinScore int    `mapstructure:"min_score"`
}

// RedditConfig controls the Reddit data source.
type RedditConfig struct {
	BaseURL       string            `mapstructure:"base_url"`
	UserAgent     string            `mapstructure:"user_agent"`
	FetchInterval string            `mapstructure:"fetch_interval"`
	Subreddits    []SubredditConfig `mapstructure:"subreddits"`
	MinScore      int               `mapstructure:"min_score"` // floor applied on top of per-subreddit thresholds
	MaxAgeHours   float64           `mapstructure:"max_age_hours"`
	LimitPerSub   int               `mapstructure:"limit_per_sub"`
}

// DataSources groups available collectors.
type DataSources struct {
	HN     HNConfig     `mapstructure:"hackernews"`
	Reddit RedditConfig `mapstructure:"reddit"`
}

// OpenAIConfig enables optional AI-written digest prefaces and blurbs.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// ChannelConfig defines a digest channel fed by one or more sources.
type ChannelConfig struct {
	Name       string   `mapstructure:"name"`
	Sources    []string `mapstructure:"sources"` // e.g., hackernews, reddit
	Frequency  string   `mapstructure:"frequency"`
	TopN       int      `mapstructure:"top_n"`
	MinItems   int      `mapstructure:"min_items"`
	OutputDir  string   `mapstructure:"output_dir"`
	Language   string   `mapstructure:"language"`
	Title      string   `mapstructure:"title"`
	Preface    string   `mapstructure:"preface"`
	Postscript string   `mapstructure:"postscript"`
}

// DigestsConfig controls digest generation.
type DigestsConfig struct {
	Frequency    string          `mapstructure:"frequency"` // default frequency
	TopN         int             `mapstructure:"top_n"`
	MinItems     int             `mapstructure:"min_items"`
	OutputDir    string          `mapstructure:"output_dir"`
	EvalInterval string          `mapstructure:"eval_interval"` // how often builders re-evaluate
	Channels     []ChannelConfig `mapstructure:"channels"`
}

// Config is the top-level configuration structure.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Sources DataSources   `mapstructure:"sources"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	OpenAI  OpenAIConfig  `mapstructure:"openai"`
	Digests DigestsConfig `mapstructure:"digests"`
}

// ConfigError reports an invalid configuration value. It is fatal at startup;
// the process must not run with an invalid config.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// weightSumTolerance is how far the weight sum may deviate from 1.0.
const weightSumTolerance = 0.01

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.Sources.HN.BaseAPI == "" {
		c.Sources.HN.BaseAPI = "https://hacker-news.firebaseio.com/v0"
	}
	if c.Sources.HN.FetchInterval == "" {
		c.Sources.HN.FetchInterval = "10m"
	}
	if c.Sources.HN.LimitPerList == 0 {
		c.Sources.HN.LimitPerList = 64
	}
	if c.Sources.Reddit.BaseURL == "" {
		c.Sources.Reddit.BaseURL = "https://www.reddit.com"
	}
	if c.Sources.Reddit.UserAgent == "" {
		c.Sources.Reddit.UserAgent = "postsync-curator/1.0"
	}
	if c.Sources.Reddit.FetchInterval == "" {
		c.Sources.Reddit.FetchInterval = "30m"
	}
	if c.Sources.Reddit.MinScore == 0 {
		c.Sources.Reddit.MinScore = 10
	}
	if c.Sources.Reddit.MaxAgeHours == 0 {
		c.Sources.Reddit.MaxAgeHours = 24
	}
	if c.Sources.Reddit.LimitPerSub == 0 {
		c.Sources.Reddit.LimitPerSub = 50
	}
	s := &c.Scoring
	if s.Weights == (WeightsConfig{}) {
		s.Weights = WeightsConfig{Upvotes: 0.35, Comments: 0.2, Recency: 0.25, Keywords: 0.2}
	}
	if s.MinimumScore == 0 {
		s.MinimumScore = 50
	}
	if s.DedupWindowDays == 0 {
		s.DedupWindowDays = 14
	}
	if s.UpvoteSaturation == 0 {
		s.UpvoteSaturation = 500
	}
	if s.CommentSaturation == 0 {
		s.CommentSaturation = 100
	}
	if s.MaxAgeHours == 0 {
		s.MaxAgeHours = 24
	}
	if s.KeywordNormalizer == 0 {
		s.KeywordNormalizer = 3
	}
	d := &c.Digests
	if d.Frequency == "" {
		d.Frequency = "daily"
	}
	if d.TopN == 0 {
		d.TopN = 5
	}
	if d.MinItems == 0 {
		d.MinItems = 3
	}
	if d.OutputDir == "" {
		d.OutputDir = "./out"
	}
	if d.EvalInterval == "" {
		d.EvalInterval = "30m"
	}
	for i := range d.Channels {
		ch := &d.Channels[i]
		if ch.Frequency == "" {
			ch.Frequency = d.Frequency
		}
		if ch.TopN == 0 {
			ch.TopN = d.TopN
		}
		if ch.MinItems == 0 {
			ch.MinItems = d.MinItems
		}
		if ch.OutputDir == "" {
			ch.OutputDir = d.OutputDir
		}
		if ch.Language == "" {
			ch.Language = "English"
		}
	}
}

// Validate rejects configurations the pipeline must not run with.
func (c *Config) Validate() error {
	if err := c.Scoring.Validate(); err != nil {
		return err
	}
	if _, err := time.ParseDuration(c.Sources.HN.FetchInterval); err != nil {
		return &ConfigError{Field: "sources.hackernews.fetch_interval", Reason: err.Error()}
	}
	if _, err := time.ParseDuration(c.Sources.Reddit.FetchInterval); err != nil {
		return &ConfigError{Field: "sources.reddit.fetch_interval", Reason: err.Error()}
	}
	if _, err := time.ParseDuration(c.Digests.EvalInterval); err != nil {
		return &ConfigError{Field: "digests.eval_interval", Reason: err.Error()}
	}
	return nil
}

// Validate checks the scoring policy invariants.
func (s ScoringConfig) Validate() error {
	w := s.Weights
	if w.Upvotes < 0 || w.Comments < 0 || w.Recency < 0 || w.Keywords < 0 {
		return &ConfigError{Field: "scoring.weights", Reason: "weights must be non-negative"}
	}
	sum := w.Upvotes + w.Comments + w.Recency + w.Keywords
	if math.Abs(sum-1.0) > weightSumTolerance {
		return &ConfigError{
			Field:  "scoring.weights",
			Reason: fmt.Sprintf("weights must sum to 1.0, got %.3f", sum),
		}
	}
	if s.MinimumScore < 0 {
		return &ConfigError{Field: "scoring.minimum_score", Reason: "must be non-negative"}
	}
	if s.DedupWindowDays < 1 {
		return &ConfigError{Field: "scoring.dedup_window_days", Reason: "must be at least 1"}
	}
	if s.UpvoteSaturation < 1 {
		return &ConfigError{Field: "scoring.upvote_saturation", Reason: "must be at least 1"}
	}
	if s.CommentSaturation < 1 {
		return &ConfigError{Field: "scoring.comment_saturation", Reason: "must be at least 1"}
	}
	if s.MaxAgeHours <= 0 {
		return &ConfigError{Field: "scoring.max_age_hours", Reason: "must be positive"}
	}
	if s.KeywordNormalizer < 1 {
		return &ConfigError{Field: "scoring.keyword_normalizer", Reason: "must be at least 1"}
	}
	return nil
}
