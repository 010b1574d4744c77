package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Environments Validate accepts for SentryConfig.Environment.
const (
	EnvProd    = "prod"
	EnvPreview = "preview"
	EnvTest    = "test"
	EnvDev     = "dev"
)

// SentryConfig holds Sentry integration configuration.
// Embed this in your app config for env parsing with caarlos0/env.
type SentryConfig struct {
	DSN              string  `env:"SENTRY_DSN"`
	Environment      string  `env:"SENTRY_ENVIRONMENT" envDefault:"prod"`
	Release          string  `env:"SENTRY_RELEASE"`
	TracesSampleRate float64 `env:"SENTRY_TRACES_SAMPLE_RATE" envDefault:"1.0"`
	Debug            bool    `env:"SENTRY_DEBUG" envDefault:"false"`
	SendDefaultPII   bool    `env:"SENTRY_SEND_DEFAULT_PII" envDefault:"false"`

	// MinLevel determines which log levels are forwarded as Sentry
	// logs. Errors always create issues regardless of this setting.
	MinLevel slog.Level `env:"SENTRY_MIN_LEVEL" envDefault:"warn"`
}

// Enabled reports whether the configuration carries a DSN.
func (c SentryConfig) Enabled() bool {
	return c.DSN != ""
}

// Validate checks that the environment names a known deploy target:
// prod, preview, test or dev. Matching is case-insensitive; empty
// passes so the env tag default applies.
func (c SentryConfig) Validate() error {
	switch strings.ToLower(c.Environment) {
	case "", EnvProd, EnvPreview, EnvTest, EnvDev:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrSentryEnvironment, c.Environment)
	}
}

// NewSentry initializes the Sentry SDK and returns a slog.Handler that
// forwards records to it. Errors create Sentry issues; records at
// MinLevel and above are stored as Sentry logs for context and search.
// Returns ErrSentryDisabled when the DSN is empty so callers can skip
// the integration in local environments.
func NewSentry(cfg SentryConfig) (slog.Handler, error) {
	if !cfg.Enabled() {
		return nil, ErrSentryDisabled
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      strings.ToLower(cfg.Environment),
		Release:          cfg.Release,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		SendDefaultPII:   cfg.SendDefaultPII,
		EnableLogs:       true,
	}); err != nil {
		return nil, errors.Join(ErrSentryInit, err)
	}

	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel >= slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}

	handler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return handler, nil
}

// FlushSentry waits until the underlying transport sends any buffered
// events, or the timeout elapses. Call during shutdown after the
// pipeline is closed.
func FlushSentry(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
