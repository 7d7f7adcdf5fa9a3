package worker

import (
	"context"
	"log/slog"
	"time"

	"postsync-curator/internal/model"
	"postsync-curator/internal/storage"
)

// candidateSkew tolerates slightly-future publication timestamps from sources
// with drifting clocks.
const candidateSkew = 5 * time.Minute

// Source produces normalized candidates; the collector does not know how they
// were fetched.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]model.ContentCandidate, error)
}

// Collector polls a source on an interval and stores valid candidates into
// the day's pool. Malformed candidates are dropped individually and logged
// with their id; they never fail the poll.
type Collector struct {
	Source   Source
	Pool     *storage.Pool
	Interval time.Duration
}

func (w *Collector) Start(ctx context.Context) error {
	if w.Interval <= 0 {
		w.Interval = 10 * time.Minute
	}

	// initial run
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

func (w *Collector) runOnce(ctx context.Context) {
	now := time.Now().UTC()
	day := periodKey("daily", now)
	source := w.Source.Name()

	items, err := w.Source.Fetch(ctx)
	if err != nil {
		slog.Error("collector: fetch error", "source", source, "error", err)
		return
	}
	stored := 0
	for _, c := range items {
		if err := c.Validate(now, candidateSkew); err != nil {
			slog.Warn("collector: dropped invalid candidate", "source", source, "id", c.ID, "error", err)
			continue
		}
		if err := w.Pool.Add(ctx, source, day, c); err != nil {
			slog.Error("collector: pool store error", "source", source, "id", c.ID, "error", err)
			continue
		}
		stored++
	}
	slog.Info("collector: completed", "source", source, "fetched", len(items), "stored", stored, "day", day)
}
