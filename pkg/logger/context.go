package logger

import (
	"context"
	"log/slog"
)

// ContextExtractor pulls one attribute out of a context, returning
// false when the context carries no value for it.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler injects context-extracted attributes into every
// record before delegating to the wrapped handler. Extraction runs
// per call so request-scoped values such as request IDs stay fresh.
type ContextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewContextHandler wraps next with the given extractors. Nil
// extractors are filtered out; with none left, next is returned
// unwrapped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) slog.Handler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	if len(clean) == 0 {
		return next
	}
	return &ContextHandler{next: next, extractors: clean}
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle adds context attributes to the record and delegates.
func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{
		next:       h.next.WithAttrs(attrs),
		extractors: h.extractors,
	}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{
		next:       h.next.WithGroup(name),
		extractors: h.extractors,
	}
}
