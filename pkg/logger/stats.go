package logger

import (
	"log/slog"
	"sync/atomic"
)

// Stats tracks queue outcomes with lock-free counters. Dropped entries
// are bucketed by level band so an operator can tell lost debug noise
// from lost errors.
type Stats struct {
	processed   atomic.Uint64
	blocked     atomic.Uint64
	writeErrors atomic.Uint64

	droppedDebug atomic.Uint64
	droppedInfo  atomic.Uint64
	droppedWarn  atomic.Uint64
	droppedError atomic.Uint64
}

func (s *Stats) countDropped(level slog.Level) {
	switch {
	case level >= slog.LevelError:
		s.droppedError.Add(1)
	case level >= slog.LevelWarn:
		s.droppedWarn.Add(1)
	case level >= slog.LevelInfo:
		s.droppedInfo.Add(1)
	default:
		s.droppedDebug.Add(1)
	}
}

// StatsSnapshot is a point-in-time copy of the queue counters.
type StatsSnapshot struct {
	Processed   uint64
	Blocked     uint64
	WriteErrors uint64
	Dropped     map[slog.Level]uint64
}

// DroppedTotal sums dropped entries across all level bands.
func (s StatsSnapshot) DroppedTotal() uint64 {
	var total uint64
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// Snapshot copies the counters. Values from concurrent writers may be
// torn relative to each other but each counter is itself consistent.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Processed:   s.processed.Load(),
		Blocked:     s.blocked.Load(),
		WriteErrors: s.writeErrors.Load(),
		Dropped: map[slog.Level]uint64{
			slog.LevelDebug: s.droppedDebug.Load(),
			slog.LevelInfo:  s.droppedInfo.Load(),
			slog.LevelWarn:  s.droppedWarn.Load(),
			slog.LevelError: s.droppedError.Load(),
		},
	}
}
