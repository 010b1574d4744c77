package slogwire_test

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redb0/slogwire"
	"github.com/redb0/slogwire/pkg/logger"
	"github.com/redb0/slogwire/pkg/logstore"
)

// memorySink collects entries for assertions.
type memorySink struct {
	mu      sync.Mutex
	entries []logger.Entry
	closes  int
}

func (s *memorySink) Write(_ context.Context, e logger.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, logger.Entry{Time: e.Time, Level: e.Level, Event: e.Event.Clone()})
	return nil
}

func (s *memorySink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closes++
	return nil
}

func (s *memorySink) Entries() []logger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logger.Entry(nil), s.entries...)
}

func (s *memorySink) Closes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closes
}

func TestSetup(t *testing.T) {
	t.Parallel()

	t.Run("records flow to extra sinks", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{Level: "info"},
		}, slogwire.WithSink(sink), slogwire.WithoutDefault())
		require.NoError(t, err)

		log.Info("hello", slog.String("side", "a"))
		log.Debug("filtered out")
		require.NoError(t, shutdown(ctx))

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "hello", entries[0].Event["message"])
		assert.Equal(t, "a", entries[0].Event["side"])
		assert.Equal(t, "info", entries[0].Event["level"])
	})

	t.Run("custom event key", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{Level: "info", EventKey: "event"},
		}, slogwire.WithSink(sink), slogwire.WithoutDefault())
		require.NoError(t, err)

		log.Info("renamed")
		require.NoError(t, shutdown(ctx))

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "renamed", entries[0].Event["event"])
		assert.NotContains(t, entries[0].Event, "message")
	})

	t.Run("default processors mask credentials", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{Level: "info"},
		}, slogwire.WithSink(sink), slogwire.WithoutDefault())
		require.NoError(t, err)

		log.Info("login", slog.String("authorization", "Bearer secret-token"))
		require.NoError(t, shutdown(ctx))

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "Bearer *****", entries[0].Event["authorization"])
	})

	t.Run("context extractors attach request values", func(t *testing.T) {
		t.Parallel()

		type ctxKey struct{}
		extractor := func(ctx context.Context) (slog.Attr, bool) {
			v, ok := ctx.Value(ctxKey{}).(string)
			if !ok {
				return slog.Attr{}, false
			}
			return slog.String("request_id", v), true
		}

		sink := &memorySink{}
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{Level: "info"},
		},
			slogwire.WithSink(sink),
			slogwire.WithContextExtractors(extractor),
			slogwire.WithoutDefault(),
		)
		require.NoError(t, err)

		log.InfoContext(context.WithValue(ctx, ctxKey{}, "req-42"), "traced")
		require.NoError(t, shutdown(ctx))

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "req-42", entries[0].Event["request_id"])
	})

	t.Run("custom processors run after defaults", func(t *testing.T) {
		t.Parallel()

		stamp := func(_ context.Context, ev logger.Event) logger.Event {
			ev["region"] = "eu-west-1"
			return ev
		}

		sink := &memorySink{}
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{Level: "info"},
		},
			slogwire.WithSink(sink),
			slogwire.WithProcessors(stamp),
			slogwire.WithoutDefault(),
		)
		require.NoError(t, err)

		log.Info("stamped")
		require.NoError(t, shutdown(ctx))

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "eu-west-1", entries[0].Event["region"])
	})

	t.Run("leveler overrides the settings level", func(t *testing.T) {
		t.Parallel()

		var level slog.LevelVar
		level.Set(slog.LevelError)

		sink := &memorySink{}
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{Level: "info"},
		},
			slogwire.WithSink(sink),
			slogwire.WithLeveler(&level),
			slogwire.WithoutDefault(),
		)
		require.NoError(t, err)

		log.Info("suppressed")
		level.Set(slog.LevelInfo)
		log.Info("admitted")
		require.NoError(t, shutdown(ctx))

		entries := sink.Entries()
		require.Len(t, entries, 1)
		assert.Equal(t, "admitted", entries[0].Event["message"])
	})

	t.Run("validation failures abort setup", func(t *testing.T) {
		t.Parallel()

		_, _, err := slogwire.Setup(context.Background(), slogwire.Settings{
			Log: slogwire.LogSettings{
				Level: "info",
				Types: []slogwire.LogType{slogwire.LogTypeFile},
			},
		}, slogwire.WithoutDefault())
		require.ErrorIs(t, err, slogwire.ErrFilePathRequired)
	})

	t.Run("shutdown is idempotent and closes sinks once", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		ctx := context.Background()

		_, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{Level: "info"},
		}, slogwire.WithSink(sink), slogwire.WithoutDefault())
		require.NoError(t, err)

		require.NoError(t, shutdown(ctx))
		require.NoError(t, shutdown(ctx))
		assert.Equal(t, 1, sink.Closes())
	})

	t.Run("async types report queue metrics", func(t *testing.T) {
		t.Parallel()

		sink := &memorySink{}
		require.NoError(t, slogwire.RegisterConfigurator("test-metrics", false,
			func(context.Context, slogwire.SinkEnv) (logger.Sink, error) {
				return sink, nil
			},
		))

		reg := prometheus.NewRegistry()
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{
				Level: "info",
				Types: []slogwire.LogType{"test-metrics"},
			},
		}, slogwire.WithMetrics(reg), slogwire.WithoutDefault())
		require.NoError(t, err)

		log.Info("queued")
		require.NoError(t, shutdown(ctx))

		// Shutdown drained the queue into the sink.
		require.Len(t, sink.Entries(), 1)

		families, err := reg.Gather()
		require.NoError(t, err)

		names := make([]string, 0, len(families))
		for _, f := range families {
			names = append(names, f.GetName())
		}
		assert.Contains(t, names, "log_queue_processed_total")
		assert.Contains(t, names, "log_queue_capacity")
	})

	// The sqlite subtests migrate through goose, whose configuration is
	// package-global, so they stay sequential.
	t.Run("sqlite database type persists access records", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs.db")
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{
				Level: "info",
				Types: []slogwire.LogType{slogwire.LogTypeDatabase},
			},
			Store: slogwire.StoreSettings{
				Driver:  slogwire.StoreDriverSQLite,
				Migrate: true,
				SQLite:  logstore.SQLiteConfig{Path: path},
			},
		}, slogwire.WithoutDefault())
		require.NoError(t, err)

		log.Info("GET /orders",
			slog.String("request_id", "req-7"),
			slog.Group("request",
				slog.String("m", "GET"),
				slog.String("R", "/orders?page=2"),
				slog.Int("s", 200),
			),
		)
		require.NoError(t, shutdown(ctx))

		// The store was closed by shutdown; reopen to inspect.
		store, err := logstore.ConnectSQLite(ctx, logstore.SQLiteConfig{Path: path})
		require.NoError(t, err)
		defer store.Close()

		var (
			count     int
			method    string
			path2     string
			requestID string
		)
		row := store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`)
		require.NoError(t, row.Scan(&count))
		require.Equal(t, 1, count)

		row = store.DB().QueryRowContext(ctx, `SELECT method, path, request_id FROM logs`)
		require.NoError(t, row.Scan(&method, &path2, &requestID))
		assert.Equal(t, "GET", method)
		assert.Equal(t, "/orders?page=2", path2)
		assert.Equal(t, "req-7", requestID)
	})

	t.Run("store allowlist skips foreign loggers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs.db")
		ctx := context.Background()

		log, shutdown, err := slogwire.Setup(ctx, slogwire.Settings{
			Log: slogwire.LogSettings{
				Level: "info",
				Types: []slogwire.LogType{slogwire.LogTypeDatabase},
			},
			Store: slogwire.StoreSettings{
				Driver:  slogwire.StoreDriverSQLite,
				Migrate: true,
				Loggers: []string{"api.access"},
				SQLite:  logstore.SQLiteConfig{Path: path},
			},
		}, slogwire.WithoutDefault())
		require.NoError(t, err)

		logger.Named(log, "api.access").Info("stored")
		logger.Named(log, "worker").Info("skipped")
		log.Info("unnamed, skipped")
		require.NoError(t, shutdown(ctx))

		store, err := logstore.ConnectSQLite(ctx, logstore.SQLiteConfig{Path: path})
		require.NoError(t, err)
		defer store.Close()

		var count int
		row := store.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM logs`)
		require.NoError(t, row.Scan(&count))
		assert.Equal(t, 1, count)
	})
}
