package logger

import (
	"log/slog"
	"os"
)

// New creates a logger that renders JSON lines to stdout through the
// default processor chain. A convenience for tools and tests that do
// not need sink fan-out.
func New(level slog.Leveler, extractors ...ContextExtractor) *slog.Logger {
	handler, err := NewPipeline(PipelineConfig{
		Level:      level,
		Processors: DefaultProcessors(false, false),
		Sinks:      []Sink{NewWriterSink(os.Stdout, JSONRenderer{})},
	})
	if err != nil {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(NewContextHandler(handler, extractors...))
}

// NewNope creates a no-op logger that discards all output.
// Use this as a default when logging is not configured.
func NewNope() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Named returns a child logger tagged with the given component name.
// Records it emits carry the name under LoggerKey.
func Named(log *slog.Logger, name string) *slog.Logger {
	if name == "" {
		return log
	}
	return log.With(slog.String(LoggerKey, name))
}
