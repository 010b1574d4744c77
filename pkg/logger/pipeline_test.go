package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/redb0/slogwire/pkg/logger"
)

// memSink collects entries in memory for assertions.
type memSink struct {
	mu       sync.Mutex
	entries  []logger.Entry
	closes   int
	writeErr error
}

func (s *memSink) Write(_ context.Context, e logger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writeErr != nil {
		return s.writeErr
	}
	s.entries = append(s.entries, logger.Entry{Time: e.Time, Level: e.Level, Event: e.Event.Clone()})
	return nil
}

func (s *memSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *memSink) all() []logger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logger.Entry(nil), s.entries...)
}

func (s *memSink) last(t *testing.T) logger.Event {
	t.Helper()
	entries := s.all()
	require.NotEmpty(t, entries)
	return entries[len(entries)-1].Event
}

func newTestPipeline(t *testing.T, cfg logger.PipelineConfig) (*logger.Pipeline, *memSink) {
	t.Helper()
	sink := &memSink{}
	cfg.Sinks = append(cfg.Sinks, sink)
	p, err := logger.NewPipeline(cfg)
	require.NoError(t, err)
	return p, sink
}

// --- NewPipeline ---

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	t.Run("requires at least one sink", func(t *testing.T) {
		t.Parallel()

		_, err := logger.NewPipeline(logger.PipelineConfig{})
		require.ErrorIs(t, err, logger.ErrNoSinks)
	})
}

// --- Pipeline: Handle ---

func TestPipeline_Handle(t *testing.T) {
	t.Parallel()

	t.Run("builds event with standard keys", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		log := slog.New(p)

		log.Info("hello", slog.String("user", "alice"))

		ev := sink.last(t)
		require.Equal(t, "hello", ev[logger.DefaultEventKey])
		require.Equal(t, "info", ev[logger.LevelKey])
		require.Equal(t, "alice", ev["user"])

		ts, ok := ev[logger.TimestampKey].(string)
		require.True(t, ok)
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		require.NoError(t, err)
		require.Equal(t, time.UTC, parsed.Location())
	})

	t.Run("respects custom event key", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{EventKey: "event"})
		slog.New(p).Info("hello")

		ev := sink.last(t)
		require.Equal(t, "hello", ev["event"])
		require.NotContains(t, ev, logger.DefaultEventKey)
	})

	t.Run("nests grouped attributes", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		log := slog.New(p).WithGroup("request")

		log.Info("handled", slog.String("method", "GET"), slog.Int("status", 200))

		ev := sink.last(t)
		req, ok := ev["request"].(logger.Event)
		require.True(t, ok)
		require.Equal(t, "GET", req["method"])
		require.Equal(t, int64(200), req["status"])
	})

	t.Run("prunes groups left empty", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		slog.New(p).WithGroup("empty").Info("hello")

		ev := sink.last(t)
		require.NotContains(t, ev, "empty")
		require.Equal(t, "hello", ev[logger.DefaultEventKey])
	})

	t.Run("merges inline group attributes", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		slog.New(p).Info("hello", slog.Group("", slog.String("a", "b")))

		ev := sink.last(t)
		require.Equal(t, "b", ev["a"])
	})

	t.Run("carries logger-level attributes on every record", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		log := slog.New(p).With(slog.String("service", "api"))

		log.Info("one")
		log.Info("two")

		for _, entry := range sink.all() {
			require.Equal(t, "api", entry.Event["service"])
		}
	})

	t.Run("adds source location when enabled", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{AddSource: true})
		slog.New(p).Info("hello")

		ev := sink.last(t)
		src, ok := ev[logger.SourceKey].(logger.Event)
		require.True(t, ok)
		require.NotEmpty(t, src["file"])
		require.NotEmpty(t, src["function"])
		require.Positive(t, src["line"])
	})

	t.Run("omits source by default", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		slog.New(p).Info("hello")

		require.NotContains(t, sink.last(t), logger.SourceKey)
	})

	t.Run("processor returning nil drops the record", func(t *testing.T) {
		t.Parallel()

		drop := func(_ context.Context, _ logger.Event) logger.Event { return nil }
		p, sink := newTestPipeline(t, logger.PipelineConfig{
			Processors: []logger.Processor{drop},
		})

		rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
		require.NoError(t, p.Handle(context.Background(), rec))
		require.Empty(t, sink.all())
	})

	t.Run("processors run in configuration order", func(t *testing.T) {
		t.Parallel()

		first := func(_ context.Context, ev logger.Event) logger.Event {
			ev["first"] = true
			return ev
		}
		second := func(_ context.Context, ev logger.Event) logger.Event {
			_, sawFirst := ev["first"]
			ev["second"] = sawFirst
			return ev
		}
		p, sink := newTestPipeline(t, logger.PipelineConfig{
			Processors: []logger.Processor{first, second},
		})

		slog.New(p).Info("hello")

		ev := sink.last(t)
		require.Equal(t, true, ev["first"])
		require.Equal(t, true, ev["second"])
	})

	t.Run("normalizes errors times and durations", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		when := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

		slog.New(p).Info("hello",
			slog.Any("err", errors.New("boom")),
			slog.Time("when", when),
			slog.Duration("took", time.Second),
		)

		ev := sink.last(t)
		require.Equal(t, "boom", ev["err"])
		require.Equal(t, "2024-05-01T12:00:00Z", ev["when"])
		require.Equal(t, "1s", ev["took"])
	})

	t.Run("joins sink write errors", func(t *testing.T) {
		t.Parallel()

		writeErr := errors.New("disk full")
		failing := &memSink{writeErr: writeErr}
		ok := &memSink{}
		p, err := logger.NewPipeline(logger.PipelineConfig{
			Sinks: []logger.Sink{failing, ok},
		})
		require.NoError(t, err)

		rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
		require.ErrorIs(t, p.Handle(context.Background(), rec), writeErr)
		require.Len(t, ok.all(), 1, "healthy sink still receives the entry")
	})

	t.Run("returns ErrSinkClosed after close", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestPipeline(t, logger.PipelineConfig{})
		require.NoError(t, p.Close(context.Background()))

		rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
		require.ErrorIs(t, p.Handle(context.Background(), rec), logger.ErrSinkClosed)
	})
}

// --- Pipeline: Enabled ---

func TestPipeline_Enabled(t *testing.T) {
	t.Parallel()

	t.Run("defaults to info", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestPipeline(t, logger.PipelineConfig{})
		require.False(t, p.Enabled(context.Background(), slog.LevelDebug))
		require.True(t, p.Enabled(context.Background(), slog.LevelInfo))
		require.True(t, p.Enabled(context.Background(), slog.LevelError))
	})

	t.Run("honors configured level", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestPipeline(t, logger.PipelineConfig{Level: slog.LevelDebug})
		require.True(t, p.Enabled(context.Background(), slog.LevelDebug))
	})
}

// --- Pipeline: WithAttrs / WithGroup ---

func TestPipeline_Derivation(t *testing.T) {
	t.Parallel()

	t.Run("derived handler does not leak into parent", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		parent := slog.New(p)
		child := parent.With(slog.String("child", "yes"))

		child.Info("from child")
		parent.Info("from parent")

		entries := sink.all()
		require.Len(t, entries, 2)
		require.Equal(t, "yes", entries[0].Event["child"])
		require.NotContains(t, entries[1].Event, "child")
	})

	t.Run("group scopes only subsequent attributes", func(t *testing.T) {
		t.Parallel()

		p, sink := newTestPipeline(t, logger.PipelineConfig{})
		log := slog.New(p).With(slog.String("outer", "1")).WithGroup("inner")

		log.Info("hello", slog.String("key", "2"))

		ev := sink.last(t)
		require.Equal(t, "1", ev["outer"])
		inner, ok := ev["inner"].(logger.Event)
		require.True(t, ok)
		require.Equal(t, "2", inner["key"])
	})
}

// --- Pipeline: Close ---

func TestPipeline_Close(t *testing.T) {
	t.Parallel()

	t.Run("closes every sink once", func(t *testing.T) {
		t.Parallel()

		a := &memSink{}
		b := &memSink{}
		p, err := logger.NewPipeline(logger.PipelineConfig{Sinks: []logger.Sink{a, b}})
		require.NoError(t, err)

		require.NoError(t, p.Close(context.Background()))
		require.NoError(t, p.Close(context.Background()))

		require.Equal(t, 1, a.closes)
		require.Equal(t, 1, b.closes)
	})

	t.Run("derived handlers share the closed state", func(t *testing.T) {
		t.Parallel()

		p, _ := newTestPipeline(t, logger.PipelineConfig{})
		derived := p.WithAttrs([]slog.Attr{slog.String("a", "b")})

		require.NoError(t, p.Close(context.Background()))

		rec := slog.NewRecord(time.Now(), slog.LevelInfo, "hello", 0)
		require.ErrorIs(t, derived.Handle(context.Background(), rec), logger.ErrSinkClosed)
	})
}
