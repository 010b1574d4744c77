package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// OverflowPolicy decides what a full queue does with an incoming entry.
type OverflowPolicy int

const (
	// DropNewest discards the incoming entry.
	DropNewest OverflowPolicy = iota
	// DropOldest evicts the oldest queued entry to make room.
	DropOldest
	// Block waits for room up to the block timeout, then writes
	// synchronously so the entry is never lost.
	Block
)

func (p OverflowPolicy) String() string {
	switch p {
	case DropNewest:
		return "drop_newest"
	case DropOldest:
		return "drop_oldest"
	case Block:
		return "block"
	default:
		return "unknown"
	}
}

// DefaultLevelPolicies keeps errors lossless and sheds everything else
// under pressure.
func DefaultLevelPolicies() map[slog.Level]OverflowPolicy {
	return map[slog.Level]OverflowPolicy{
		slog.LevelDebug: DropNewest,
		slog.LevelInfo:  DropNewest,
		slog.LevelWarn:  DropNewest,
		slog.LevelError: Block,
	}
}

// AsyncConfig holds queue parameters for the async sink wrapper.
// Embed this in your app config for env parsing with caarlos0/env.
type AsyncConfig struct {
	QueueSize    int           `env:"LOG_QUEUE_SIZE" envDefault:"1000"`
	BlockTimeout time.Duration `env:"LOG_QUEUE_BLOCK_TIMEOUT" envDefault:"100ms"`
	DrainTimeout time.Duration `env:"LOG_QUEUE_DRAIN_TIMEOUT" envDefault:"5s"`

	// Policies maps levels to overflow behavior. Nil uses
	// DefaultLevelPolicies; levels missing from the map drop newest
	// below error and block at error and above.
	Policies map[slog.Level]OverflowPolicy
}

// AsyncSink decouples callers from a slow sink with a bounded queue and
// a single consumer goroutine. Entries are handed over per the overflow
// policy for their level; all accounting is visible through Stats.
type AsyncSink struct {
	next         Sink
	queue        chan Entry
	closed       chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
	policies     map[slog.Level]OverflowPolicy
	blockTimeout time.Duration
	drainTimeout time.Duration
	stats        Stats
}

// NewAsyncSink wraps next and starts the consumer goroutine.
func NewAsyncSink(next Sink, cfg AsyncConfig) *AsyncSink {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 100 * time.Millisecond
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = 5 * time.Second
	}
	if cfg.Policies == nil {
		cfg.Policies = DefaultLevelPolicies()
	}
	s := &AsyncSink{
		next:         next,
		queue:        make(chan Entry, cfg.QueueSize),
		closed:       make(chan struct{}),
		policies:     cfg.Policies,
		blockTimeout: cfg.BlockTimeout,
		drainTimeout: cfg.DrainTimeout,
	}
	s.wg.Add(1)
	go s.run()
	return s
}

func (s *AsyncSink) policyFor(level slog.Level) OverflowPolicy {
	if policy, ok := s.policies[level]; ok {
		return policy
	}
	if level >= slog.LevelError {
		return Block
	}
	return DropNewest
}

// Write enqueues the entry. Drop policies are wait-free; Block falls
// back to a synchronous write after the block timeout.
func (s *AsyncSink) Write(ctx context.Context, e Entry) error {
	select {
	case <-s.closed:
		return ErrSinkClosed
	default:
	}

	switch s.policyFor(e.Level) {
	case Block:
		select {
		case s.queue <- e:
			return nil
		case <-time.After(s.blockTimeout):
			s.stats.blocked.Add(1)
			return s.next.Write(ctx, e)
		case <-s.closed:
			return s.next.Write(ctx, e)
		}

	case DropOldest:
		select {
		case s.queue <- e:
			return nil
		default:
		}
		select {
		case old := <-s.queue:
			s.stats.countDropped(old.Level)
		default:
		}
		select {
		case s.queue <- e:
			return nil
		default:
			s.stats.countDropped(e.Level)
			return nil
		}

	default: // DropNewest
		select {
		case s.queue <- e:
			return nil
		default:
			s.stats.countDropped(e.Level)
			return nil
		}
	}
}

func (s *AsyncSink) run() {
	defer s.wg.Done()
	for {
		select {
		case e := <-s.queue:
			s.write(e)
		case <-s.closed:
			deadline := time.After(s.drainTimeout)
			for {
				select {
				case e := <-s.queue:
					s.write(e)
				case <-deadline:
					return
				default:
					return
				}
			}
		}
	}
}

func (s *AsyncSink) write(e Entry) {
	if err := s.next.Write(context.Background(), e); err != nil {
		s.stats.writeErrors.Add(1)
		return
	}
	s.stats.processed.Add(1)
}

// Close stops intake, drains the queue until empty or the drain timeout
// elapses, then closes the wrapped sink. Idempotent.
func (s *AsyncSink) Close(ctx context.Context) error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		done := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			err = ctx.Err()
		}
		err = errors.Join(err, s.next.Close(ctx))
	})
	return err
}

// Stats returns a snapshot of the queue counters.
func (s *AsyncSink) Stats() StatsSnapshot {
	return s.stats.Snapshot()
}
