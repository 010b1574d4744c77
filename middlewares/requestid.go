package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/redb0/slogwire/pkg/logger"
)

// requestIDKey is the context key for storing the request ID.
type requestIDKey struct{}

// DefaultRequestIDHeaders are the headers checked (in order) for an
// existing request ID. Go canonicalizes header names, so the ID/Id
// spelling variants collapse into one lookup.
var DefaultRequestIDHeaders = []string{"X-Request-ID", "X-Correlation-ID"}

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	Generator      func() string // ID generator function
	ResponseHeader string        // Response header name, empty disables the echo
	Headers        []string      // Headers to check for existing ID (in order)
}

// RequestIDOption configures RequestIDConfig.
type RequestIDOption func(*RequestIDConfig)

// WithRequestIDHeaders sets the headers to check for existing request IDs.
func WithRequestIDHeaders(headers ...string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Headers = headers
	}
}

// WithRequestIDGenerator sets a custom ID generator function.
func WithRequestIDGenerator(gen func() string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.Generator = gen
	}
}

// WithRequestIDResponseHeader sets the response header name. An empty
// name disables echoing the ID back to the client.
func WithRequestIDResponseHeader(header string) RequestIDOption {
	return func(cfg *RequestIDConfig) {
		cfg.ResponseHeader = header
	}
}

// RequestID returns middleware that assigns a unique request ID to each
// request. The ID is taken from the first matching request header to
// preserve upstream tracing IDs, or generated when absent. It is stored
// in the request context and echoed as a response header.
func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	cfg := &RequestIDConfig{
		Headers:        DefaultRequestIDHeaders,
		Generator:      uuid.NewString,
		ResponseHeader: "X-Request-ID",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var reqID string
			for _, header := range cfg.Headers {
				if v := r.Header.Get(header); v != "" {
					reqID = v
					break
				}
			}

			if reqID == "" {
				reqID = cfg.Generator()
			}

			if cfg.ResponseHeader != "" {
				w.Header().Set(cfg.ResponseHeader, reqID)
			}

			ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID extracts the request ID from the context.
// Returns an empty string if no request ID is set.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// RequestIDExtractor returns a ContextExtractor for the logging
// pipeline. Every record logged within a request carries "request_id".
func RequestIDExtractor() logger.ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if v, ok := ctx.Value(requestIDKey{}).(string); ok && v != "" {
			return slog.String("request_id", v), true
		}
		return slog.Attr{}, false
	}
}
