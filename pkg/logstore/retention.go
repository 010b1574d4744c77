package logstore

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RetentionConfig controls the periodic deletion of old entries.
type RetentionConfig struct {
	// TTLDays is how long entries are kept. Zero or negative disables
	// the sweeps entirely.
	TTLDays int `env:"LOGSTORE_TTL_DAYS" envDefault:"90"`

	// Schedule is a cron expression; descriptors like "@daily" and
	// "@every 6h" are accepted.
	Schedule string `env:"LOGSTORE_RETENTION_SCHEDULE" envDefault:"@daily"`

	// SweepTimeout bounds a single delete pass.
	SweepTimeout time.Duration `env:"LOGSTORE_SWEEP_TIMEOUT" envDefault:"1m"`
}

// Retention deletes entries older than the TTL on a cron schedule.
type Retention struct {
	store Store
	cfg   RetentionConfig
	log   *slog.Logger
	cron  *cron.Cron
}

// NewRetention builds a retention sweeper over the store. The sweeper
// does not own the store; closing remains the caller's concern.
func NewRetention(store Store, cfg RetentionConfig, log *slog.Logger) *Retention {
	if log == nil {
		log = slog.Default()
	}
	return &Retention{
		store: store,
		cfg:   cfg,
		log:   log,
		cron:  cron.New(),
	}
}

// Start schedules the sweeps. A non-positive TTL leaves the sweeper
// idle; an unparseable schedule fails fast.
func (r *Retention) Start() error {
	if r.cfg.TTLDays <= 0 {
		return nil
	}

	if _, err := r.cron.AddFunc(r.cfg.Schedule, r.sweep); err != nil {
		return errors.Join(ErrInvalidSchedule, err)
	}

	r.cron.Start()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish, up
// to the context deadline.
func (r *Retention) Stop(ctx context.Context) error {
	done := r.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown returns a shutdown function for hosts that collect them.
func (r *Retention) Shutdown() func(context.Context) error {
	return func(ctx context.Context) error {
		return r.Stop(ctx)
	}
}

// Sweep deletes entries older than the TTL once, returning how many
// rows went away. The cron schedule calls this internally; it is
// exported so hosts can trigger a pass by hand.
func (r *Retention) Sweep(ctx context.Context) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -r.cfg.TTLDays)
	return r.store.DeleteOlderThan(ctx, cutoff)
}

func (r *Retention) sweep() {
	timeout := r.cfg.SweepTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	deleted, err := r.Sweep(ctx)
	if err != nil {
		r.log.ErrorContext(ctx, "log retention sweep failed", slog.Any("error", err))
		return
	}
	if deleted > 0 {
		r.log.InfoContext(ctx, "log retention sweep completed", slog.Int64("deleted", deleted))
	}
}
