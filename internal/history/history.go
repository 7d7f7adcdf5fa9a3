package history

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable indicates the backing store could not be reached. Callers
// must treat an affected candidate as a possible duplicate and exclude it
// conservatively rather than assume it has never been seen.
var ErrUnavailable = errors.New("history store unavailable")

// Store records fingerprints of previously selected candidates so they are
// not re-selected within the dedup window.
type Store interface {
	// Exists reports whether the fingerprint was recorded within the window
	// ending at the current time. Failures wrap ErrUnavailable.
	Exists(ctx context.Context, fingerprint string, window time.Duration) (bool, error)
	// Record persists the fingerprint with the given selection timestamp.
	// Idempotent: recording an already-known fingerprint only refreshes its
	// last-seen timestamp.
	Record(ctx context.Context, fingerprint string, at time.Time) error
}
