// Package logger provides a slog.Handler pipeline that normalizes log
// records into events, runs them through a processor chain, and fans
// them out to pluggable sinks.
//
// This package extends the standard library's log/slog with the
// machinery a service needs around it: payload sanitization, rendered
// output formats, buffered delivery to slow destinations, and optional
// Sentry error reporting. It is designed for production applications
// that need consistent, enriched logs with minimal boilerplate.
//
// # Overview
//
// The package provides:
//   - A Pipeline handler that builds one Event per record and delivers it to every sink
//   - Processors that mutate or drop events (credential masking, panic formatting)
//   - Renderers for JSON and human-readable console output
//   - Sinks for io.Writer targets, rotating files, and syslog
//   - An AsyncSink wrapper with a bounded queue and per-level overflow policies
//   - Sentry integration with graceful fallback when unconfigured
//   - Context extractors that inject request-scoped values on every call
//
// # Basic Usage
//
// Build a pipeline and hand it to slog:
//
//	sink := logger.NewWriterSink(os.Stdout, logger.ConsoleRenderer{Color: true})
//	handler, err := logger.NewPipeline(logger.PipelineConfig{
//		Level:      slog.LevelInfo,
//		Processors: logger.DefaultProcessors(false, false),
//		Sinks:      []logger.Sink{sink},
//	})
//	if err != nil {
//		return err
//	}
//	log := slog.New(handler)
//	log.Info("server started", slog.Int("port", 8080))
//
// Every record becomes an Event, a flat map keyed by timestamp, level,
// message and the record's attributes. Processors see the event before
// any sink does, so masking applies to all destinations at once.
//
// # Processors
//
// A Processor transforms an event or drops it by returning nil:
//
//	type Processor func(ctx context.Context, ev logger.Event) logger.Event
//
// DefaultProcessors returns the standard chain: authorization header
// masking, stray color key removal, password masking in query strings,
// and panic stack formatting. Custom processors append after these.
//
// # Buffered Delivery
//
// Slow sinks go behind an AsyncSink so logging calls never wait on
// disk or network:
//
//	file, err := logger.NewFileSink(logger.FileConfig{Path: "/var/log/app.log"}, logger.JSONRenderer{})
//	if err != nil {
//		return err
//	}
//	queued := logger.NewAsyncSink(file, logger.AsyncConfig{QueueSize: 1000})
//	defer queued.Close(context.Background())
//
// Overflow behavior is chosen per level: errors block briefly and then
// write synchronously so they are never lost, while debug noise is
// dropped. Queue counters are available through Stats and can be
// exported with QueueCollector.
//
// # Sentry Integration
//
// NewSentry initializes the SDK and returns a handler for the bridge:
//
//	sentryHandler, err := logger.NewSentry(logger.SentryConfig{
//		DSN:         os.Getenv("SENTRY_DSN"),
//		Environment: "prod",
//	})
//	if errors.Is(err, logger.ErrSentryDisabled) {
//		// no DSN configured, continue without Sentry
//	}
//	log := slog.New(logger.NewMultiHandler(handler, sentryHandler))
//
// Errors create Issues in Sentry; records at MinLevel and above are
// stored as Sentry logs for context. An empty DSN disables the
// integration so the same code path works in development.
//
// # Context Extractors
//
// A ContextExtractor pulls an attribute from context on every call:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		if id, ok := ctx.Value(ctxKeyRequestID).(string); ok && id != "" {
//			return slog.String("request_id", id), true
//		}
//		return slog.Attr{}, false
//	}
//	log := slog.New(logger.NewContextHandler(handler, requestID))
//
// Extraction happens per log call, so request-scoped values stay fresh
// across goroutines sharing one logger.
package logger
