package logstore

import (
	"context"
	"time"
)

// Store persists log entries. Implementations must be safe for concurrent
// use; the async pipeline calls Insert from its own goroutine while
// retention sweeps run on a cron schedule.
type Store interface {
	// Insert writes a single entry. A zero entry ID is assigned before the
	// write so callers never have to pre-generate one.
	Insert(ctx context.Context, e Entry) error

	// DeleteOlderThan removes entries with a timestamp strictly before
	// cutoff and reports how many rows were deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)

	// Healthcheck verifies the backing database is reachable.
	Healthcheck(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
