package middlewares

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime"

	"github.com/redb0/slogwire/internal"
)

// DefaultStackSize is the default maximum stack trace size in bytes.
const DefaultStackSize = 4096

// RecoverConfig configures the recover middleware.
type RecoverConfig struct {
	Logger            *slog.Logger // Logger for panic records (default: slog.Default)
	StackSize         int          // Max stack trace size (default: 4096)
	DisablePrintStack bool         // Disable stack trace capture
}

// RecoverOption configures RecoverConfig.
type RecoverOption func(*RecoverConfig)

// WithRecoverLogger sets the logger panic records are written to.
func WithRecoverLogger(log *slog.Logger) RecoverOption {
	return func(cfg *RecoverConfig) {
		if log != nil {
			cfg.Logger = log
		}
	}
}

// WithRecoverStackSize sets the maximum stack trace size.
func WithRecoverStackSize(size int) RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.StackSize = size
	}
}

// WithRecoverDisablePrintStack disables including the stack trace in logs.
func WithRecoverDisablePrintStack() RecoverOption {
	return func(cfg *RecoverConfig) {
		cfg.DisablePrintStack = true
	}
}

// Recover returns middleware that recovers from handler panics. The
// panic is logged as a single error record carrying a PanicError and a
// 500 is written when the handler had not responded yet, so the client
// still receives a response. An http.ErrAbortHandler panic passes
// through untouched, as net/http defines it.
func Recover(opts ...RecoverOption) func(http.Handler) http.Handler {
	cfg := &RecoverConfig{
		StackSize: DefaultStackSize,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw, ok := w.(*internal.ResponseWriter)
			if !ok {
				rw = internal.NewResponseWriter(w)
			}

			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, isErr := rec.(error); isErr && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}

				var stack []byte
				if !cfg.DisablePrintStack {
					stack = make([]byte, cfg.StackSize)
					n := runtime.Stack(stack, false)
					stack = stack[:n]
				}

				log := cfg.Logger
				if log == nil {
					log = slog.Default()
				}
				log.ErrorContext(r.Context(), "panic recovered",
					slog.Any("panic", &PanicError{Value: rec, Stack: stack}),
				)

				if !rw.Written() {
					http.Error(rw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(rw, r)
		})
	}
}
