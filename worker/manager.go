package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Worker is a long-running task driven by the manager's context.
type Worker interface {
	Start(ctx context.Context) error
}

// Manager runs a set of workers and supervises them as a unit: the first
// worker to fail cancels the rest, so a broken collector or builder surfaces
// as an explicit process-level error instead of a silently thinner pipeline.
type Manager struct {
	workers []Worker
}

func NewManager(ws ...Worker) *Manager {
	return &Manager{workers: ws}
}

// Start blocks until the context is cancelled or a worker fails, then waits
// for all workers to exit and returns the first failure, if any.
func (m *Manager) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errs := make(chan error, len(m.workers))
	for i, w := range m.workers {
		wg.Add(1)
		go func(i int, w Worker) {
			defer wg.Done()
			name := fmt.Sprintf("%T#%d", w, i)
			slog.Info("worker started", "worker", name)
			if err := w.Start(ctx); err != nil {
				slog.Error("worker failed", "worker", name, "error", err)
				errs <- err
				cancel()
				return
			}
			slog.Info("worker stopped", "worker", name)
		}(i, w)
	}
	wg.Wait()
	close(errs)
	return <-errs
}
