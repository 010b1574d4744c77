// Package slogwire wires structured logging, access-log middleware,
// Sentry error tracking and optional database-backed log persistence
// into an HTTP application.
//
// The heart of the library is a log-record pipeline: every record,
// whether it comes from a structured call, the access-log middleware
// or a recovered panic, is normalized into one event, run through a
// chain of processors (credential masking, panic formatting), and
// fanned out to the configured sinks. Slow sinks sit behind a bounded
// queue with per-level overflow policies so logging never stalls a
// request.
//
// # Quick Start
//
// Parse the settings from the environment and call Setup:
//
//	var settings slogwire.Settings
//	if err := env.Parse(&settings); err != nil {
//		log.Fatal(err)
//	}
//
//	logger, shutdown, err := slogwire.Setup(ctx, settings,
//		slogwire.WithContextExtractors(middlewares.RequestIDExtractor()),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer shutdown(context.Background())
//
//	logger.Info("service started", slog.String("version", settings.Version))
//
// With LOG_TYPES=console,file,database the same record lands on
// stdout, in a size-rotated file and in a logs table, each through the
// destination's own renderer.
//
// # Log Types
//
// Five destinations ship with the library: console (synchronous),
// file (lumberjack rotation), syslog, database (PostgreSQL or SQLite
// with cron-scheduled retention) and stream (a capped Redis list for
// live tailing). Hosts add their own with RegisterConfigurator; every
// non-console sink is wrapped in the async queue automatically.
//
// # Middleware
//
// The middlewares package completes the picture on the HTTP side:
// RequestID tags each request, AccessLog emits one structured record
// per request from gunicorn-style atoms, and Recover turns handler
// panics into error records in the same pipeline.
//
//	r := chi.NewRouter()
//	r.Use(middlewares.RequestID())
//	r.Use(middlewares.AccessLog())
//	r.Use(middlewares.Recover())
//
// # Packages
//
// The subpackages are usable on their own when the assembled Setup is
// more than a host needs:
//
//   - pkg/logger: the pipeline, processors, renderers and sinks
//   - pkg/logstore: relational persistence, mapping and retention
//   - pkg/logstream: the Redis live tail
//   - middlewares: request ID, access log, panic recovery
package slogwire
