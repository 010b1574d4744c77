package slogwire

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/redb0/slogwire/pkg/logger"
	"github.com/redb0/slogwire/pkg/logstore"
)

// Option customizes Setup beyond what the settings express.
type Option func(*setupOptions)

type setupOptions struct {
	processors     []logger.Processor
	extractors     []logger.ContextExtractor
	sinks          []logger.Sink
	store          logstore.Store
	registerer     prometheus.Registerer
	leveler        slog.Leveler
	diagnostics    *slog.Logger
	withoutDefault bool
}

// WithProcessors appends processors after the default chain.
func WithProcessors(procs ...logger.Processor) Option {
	return func(o *setupOptions) {
		o.processors = append(o.processors, procs...)
	}
}

// WithContextExtractors registers extractors that pull request-scoped
// values (request IDs and friends) out of the context on every record.
func WithContextExtractors(extractors ...logger.ContextExtractor) Option {
	return func(o *setupOptions) {
		o.extractors = append(o.extractors, extractors...)
	}
}

// WithSink adds pre-built sinks alongside the configured log types.
// They are used as given; wrap them in an AsyncSink yourself when they
// are slow.
func WithSink(sinks ...logger.Sink) Option {
	return func(o *setupOptions) {
		o.sinks = append(o.sinks, sinks...)
	}
}

// WithStore supplies a pre-built store for the database log type
// instead of connecting from settings. The pipeline takes ownership:
// shutdown closes the store.
func WithStore(store logstore.Store) Option {
	return func(o *setupOptions) {
		o.store = store
	}
}

// WithMetrics registers a queue collector for every async sink with
// the given registerer. Serving the metrics stays the host's business.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *setupOptions) {
		o.registerer = reg
	}
}

// WithLeveler overrides the settings level with a dynamic leveler,
// typically a *slog.LevelVar the host flips at runtime.
func WithLeveler(l slog.Leveler) Option {
	return func(o *setupOptions) {
		o.leveler = l
	}
}

// WithDiagnostics sets the logger the library uses for its own
// messages: retention sweeps, the Sentry fallback warning, shutdown
// errors. Defaults to a discard logger.
func WithDiagnostics(log *slog.Logger) Option {
	return func(o *setupOptions) {
		if log != nil {
			o.diagnostics = log
		}
	}
}

// WithoutDefault leaves slog.Default untouched.
func WithoutDefault() Option {
	return func(o *setupOptions) {
		o.withoutDefault = true
	}
}
