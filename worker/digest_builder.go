package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"postsync-curator/internal/ai"
	"postsync-curator/internal/digest"
	"postsync-curator/internal/history"
	"postsync-curator/internal/model"
	"postsync-curator/internal/relevance"
	"postsync-curator/internal/storage"
)

// DigestBuilder periodically runs a ranking pass for one channel and writes a
// markdown digest of the selected candidates. Fingerprints are recorded the
// moment a candidate is selected, not after rendering, to keep the window for
// a racing discovery run as small as possible.
type DigestBuilder struct {
	Pool       *storage.Pool
	Ranker     *relevance.Ranker
	History    history.Store
	Channel    string
	Sources    []string
	Frequency  string
	TopN       int
	MinItems   int
	OutputDir  string
	Interval   time.Duration
	Language   string
	Title      string
	Preface    string
	Postscript string
	Summarizer ai.Summarizer // optional
}

func (w *DigestBuilder) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 30 * time.Minute
	}
	channelDir := filepath.Join(w.OutputDir, w.Channel)
	if err := os.MkdirAll(channelDir, 0o755); err != nil {
		return err
	}
	w.runOnce(ctx)

	t := time.NewTicker(w.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			w.runOnce(ctx)
		}
	}
}

func (w *DigestBuilder) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	period := periodKey(w.Frequency, now)
	published, err := w.Pool.IsPublished(ctx, w.Channel, period)
	if err != nil {
		slog.Error("builder: check published error", "channel", w.Channel, "error", err)
		return
	}
	if published {
		return
	}

	// Fetch generously; ranking filters the batch down.
	fetchN := w.TopN * 10
	if fetchN < w.TopN {
		fetchN = w.TopN
	}
	var batch []model.ContentCandidate
	seen := make(map[string]struct{})
	for _, day := range periodDays(w.Frequency, now) {
		part, err := w.Pool.Candidates(ctx, w.Sources, day, fetchN)
		if err != nil {
			slog.Error("builder: fetch candidates error", "channel", w.Channel, "day", day, "error", err)
			return
		}
		for _, c := range part {
			if _, ok := seen[c.ID]; ok {
				continue
			}
			seen[c.ID] = struct{}{}
			batch = append(batch, c)
		}
	}

	out, err := w.Ranker.Rank(ctx, batch)
	if err != nil {
		slog.Error("builder: ranking pass failed", "channel", w.Channel, "error", err)
		return
	}
	logOutcome(w.Channel, out)

	if len(out.Ranked) < w.MinItems {
		return
	}
	top := out.Ranked
	if len(top) > w.TopN {
		top = top[:w.TopN]
	}

	// Record selections first so a concurrent pass sees them as duplicates.
	for _, rc := range top {
		if err := w.History.Record(ctx, string(rc.Fingerprint), now); err != nil {
			slog.Error("builder: record fingerprint error", "channel", w.Channel, "id", rc.Candidate.ID, "error", err)
		}
	}

	md, err := w.render(ctx, period, now, top)
	if err != nil {
		slog.Error("builder: render error", "channel", w.Channel, "error", err)
		return
	}
	name := fmt.Sprintf("%s-%s.md", w.Channel, strings.ReplaceAll(period, "-", ""))
	path := filepath.Join(w.OutputDir, w.Channel, name)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		slog.Error("builder: write file error", "channel", w.Channel, "path", path, "error", err)
		return
	}
	if err := w.Pool.MarkPublished(ctx, w.Channel, period); err != nil {
		slog.Error("builder: mark published error", "channel", w.Channel, "error", err)
		return
	}
	slog.Info("builder: digest written", "channel", w.Channel, "path", path, "items", len(top))
}

func (w *DigestBuilder) render(ctx context.Context, period string, now time.Time, top []relevance.Ranked) (string, error) {
	title := digest.ExpandVars(w.Title, w.Channel, now)
	if strings.TrimSpace(title) == "" {
		title = fmt.Sprintf("%s %s", w.Channel, period)
	}
	d := digest.Data{
		Title:      title,
		Slug:       fmt.Sprintf("%s-%s", w.Channel, strings.ReplaceAll(period, "-", "")),
		Datetime:   now.Format("2006-01-02 15:04"),
		Summary:    fmt.Sprintf("Top %d curated stories for %s.", len(top), period),
		Preface:    digest.ExpandVars(w.Preface, w.Channel, now),
		Postscript: digest.ExpandVars(w.Postscript, w.Channel, now),
	}

	if w.Summarizer != nil {
		scored := make([]model.ScoredCandidate, 0, len(top))
		for _, rc := range top {
			scored = append(scored, rc.ScoredCandidate)
		}
		if preface, err := w.Summarizer.Preface(ctx, scored, w.Language); err == nil && preface != "" {
			d.Preface = preface
		}
	}

	for _, rc := range top {
		item := digest.Item{
			Title:     rc.Candidate.Title,
			URL:       rc.Candidate.SourceURL,
			Score:     rc.Score,
			Breakdown: rc.Breakdown,
			Upvotes:   rc.Candidate.Upvotes,
			Comments:  rc.Candidate.CommentCount,
			Published: rc.Candidate.PublishedAt.UTC().Format("2006-01-02 15:04"),
		}
		if w.Summarizer != nil {
			if blurb, err := w.Summarizer.Blurb(ctx, rc.Candidate, w.Language); err == nil {
				item.Blurb = blurb
			}
		}
		d.Items = append(d.Items, item)
	}
	return digest.Render(d)
}

// logOutcome surfaces batch-level warnings from a ranking pass. Conservative
// exclusions from history failures are warnings, not debug noise; silent
// duplicate risk would be worse than silent strictness.
func logOutcome(channel string, out relevance.Outcome) {
	for _, d := range out.Invalid {
		slog.Warn("builder: dropped invalid candidate", "channel", channel, "id", d.ID, "reason", d.Reason, "error", d.Err)
	}
	for _, d := range out.StoreFailures {
		slog.Warn("builder: candidate excluded, history store unavailable", "channel", channel, "id", d.ID, "error", d.Err)
	}
	slog.Info("builder: ranking pass",
		"channel", channel,
		"ranked", len(out.Ranked),
		"duplicates", out.Duplicates,
		"below_threshold", out.BelowThreshold,
		"invalid", len(out.Invalid),
		"store_failures", len(out.StoreFailures),
	)
}

// periodDays lists the pool day keys a builder pass covers: just today for
// daily channels, every elapsed day of the current ISO week for weekly ones.
func periodDays(freq string, t time.Time) []string {
	utc := t.UTC()
	if freq != "weekly" {
		return []string{utc.Format("2006-01-02")}
	}
	monday := utc.AddDate(0, 0, -((int(utc.Weekday()) + 6) % 7))
	days := make([]string, 0, 7)
	for d := monday; !d.After(utc); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format("2006-01-02"))
	}
	return days
}

func periodKey(freq string, t time.Time) string {
	utc := t.UTC()
	switch freq {
	case "weekly":
		y, w := utc.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	default: // daily
		return utc.Format("2006-01-02")
	}
}
