package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process reference implementation of Store, used by the
// one-shot rank command and in tests. Safe for concurrent use.
type MemoryStore struct {
	mu   sync.RWMutex
	seen map[string]time.Time
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryStore) Exists(ctx context.Context, fingerprint string, window time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	at, ok := s.seen[fingerprint]
	if !ok {
		return false, nil
	}
	return s.now().Sub(at) <= window, nil
}

func (s *MemoryStore) Record(ctx context.Context, fingerprint string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.seen[fingerprint]; !ok || at.After(prev) {
		s.seen[fingerprint] = at
	}
	return nil
}
