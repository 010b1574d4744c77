package slogwire

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/redb0/slogwire/pkg/logger"
	"github.com/redb0/slogwire/pkg/logstore"
)

// sentryFlushTimeout bounds the shutdown wait for buffered Sentry
// events.
const sentryFlushTimeout = 2 * time.Second

// ShutdownFunc tears down everything Setup started: it drains and
// closes the sinks, stops the retention sweeper, and flushes Sentry.
// Safe to call more than once.
type ShutdownFunc func(ctx context.Context) error

// Setup assembles the logging stack from settings: sinks per the
// configured log types (console synchronous, everything else behind
// the async queue), the processor pipeline, the optional Sentry bridge
// and the context-extractor decorator. The resulting logger becomes
// slog.Default unless WithoutDefault is given.
//
// Construction is all-or-nothing: when any sink fails to build,
// everything built so far is closed and the error is returned.
func Setup(ctx context.Context, s Settings, opts ...Option) (*slog.Logger, ShutdownFunc, error) {
	o := &setupOptions{diagnostics: logger.NewNope()}
	for _, opt := range opts {
		opt(o)
	}

	if err := s.Validate(); err != nil {
		return nil, nil, err
	}

	level, err := s.Log.SlogLevel()
	if err != nil {
		return nil, nil, err
	}
	var leveler slog.Leveler = level
	if o.leveler != nil {
		leveler = o.leveler
	}

	types := s.uniqueTypes()

	// The store is shared state: the database sink writes through it
	// and the retention sweeper deletes from it, so it is built ahead
	// of the factories.
	wantStore := slices.Contains(types, LogTypeDatabase)
	store := o.store
	storeBuilt := false
	if store == nil && wantStore {
		store, err = connectStore(ctx, s, o.diagnostics)
		if err != nil {
			return nil, nil, err
		}
		storeBuilt = true
	}

	cleanupStore := func() {
		if storeBuilt && store != nil {
			if cerr := store.Close(); cerr != nil {
				o.diagnostics.Error("failed to close log store", slog.Any("error", cerr))
			}
		}
	}

	env := SinkEnv{Settings: s, Log: o.diagnostics, Store: store}

	var (
		sinks  []logger.Sink
		asyncs = make(map[string]*logger.AsyncSink, len(types))
	)
	cleanupSinks := func() {
		cctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for _, sink := range sinks {
			if cerr := sink.Close(cctx); cerr != nil {
				o.diagnostics.Error("failed to close sink", slog.Any("error", cerr))
			}
		}
	}

	for _, t := range types {
		cfg, ok := lookupConfigurator(t)
		if !ok {
			cleanupSinks()
			cleanupStore()
			return nil, nil, fmt.Errorf("%w: %q", ErrUnknownLogType, t)
		}
		sink, berr := cfg.build(ctx, env)
		if berr != nil {
			cleanupSinks()
			cleanupStore()
			return nil, nil, berr
		}
		if !cfg.direct {
			async := logger.NewAsyncSink(sink, s.Log.Queue)
			asyncs[string(t)] = async
			sink = async
		}
		sinks = append(sinks, sink)
	}
	sinks = append(sinks, o.sinks...)

	procs := logger.DefaultProcessors(s.Debug, s.Log.JSON)
	procs = append(procs, o.processors...)

	pipeline, err := logger.NewPipeline(logger.PipelineConfig{
		Level:      leveler,
		EventKey:   s.Log.EventKey,
		AddSource:  s.Log.AddSource,
		Processors: procs,
		Sinks:      sinks,
	})
	if err != nil {
		cleanupSinks()
		cleanupStore()
		return nil, nil, err
	}

	var handler slog.Handler = pipeline
	sentryEnabled := s.Sentry.Enabled()
	if sentryEnabled {
		sentryCfg := s.Sentry
		sentryCfg.Release = s.release()
		sentryHandler, serr := logger.NewSentry(sentryCfg)
		if serr != nil {
			cleanupSinks()
			cleanupStore()
			return nil, nil, serr
		}
		handler = logger.NewMultiHandler(pipeline, sentryHandler)
	} else {
		o.diagnostics.Warn("sentry disabled, missing DSN")
	}

	if len(o.extractors) > 0 {
		handler = logger.NewContextHandler(handler, o.extractors...)
	}

	if o.registerer != nil && len(asyncs) > 0 {
		collector := logger.NewQueueCollector()
		for name, async := range asyncs {
			collector.Register(name, async)
		}
		if rerr := o.registerer.Register(collector); rerr != nil {
			cleanupSinks()
			cleanupStore()
			return nil, nil, rerr
		}
	}

	var retention *logstore.Retention
	if store != nil && wantStore {
		retention = logstore.NewRetention(store, s.Store.Retention, o.diagnostics)
		if rerr := retention.Start(); rerr != nil {
			cleanupSinks()
			cleanupStore()
			return nil, nil, rerr
		}
	}

	log := slog.New(handler)
	if !o.withoutDefault {
		slog.SetDefault(log)
	}

	shutdown := func(ctx context.Context) error {
		var errs []error
		if retention != nil {
			if serr := retention.Stop(ctx); serr != nil {
				errs = append(errs, serr)
			}
		}
		// Closing the pipeline drains the async queues and closes
		// every sink; the database sink closes the store with it.
		if cerr := pipeline.Close(ctx); cerr != nil {
			errs = append(errs, cerr)
		}
		if sentryEnabled {
			logger.FlushSentry(sentryFlushTimeout)
		}
		return errors.Join(errs...)
	}

	return log, shutdown, nil
}

// connectStore dials the configured store and applies migrations.
func connectStore(ctx context.Context, s Settings, diag *slog.Logger) (logstore.Store, error) {
	switch s.Store.Driver {
	case StoreDriverPostgres:
		store, err := logstore.ConnectPostgres(ctx, s.Store.Postgres)
		if err != nil {
			return nil, err
		}
		if s.Store.Migrate {
			if err := logstore.MigratePostgres(ctx, store.Pool(), diag); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		return store, nil
	case StoreDriverSQLite:
		store, err := logstore.ConnectSQLite(ctx, s.Store.SQLite)
		if err != nil {
			return nil, err
		}
		if s.Store.Migrate {
			if err := logstore.MigrateSQLite(ctx, store.DB(), diag); err != nil {
				_ = store.Close()
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, ErrStoreRequired
	}
}
