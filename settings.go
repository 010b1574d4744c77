package slogwire

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redb0/slogwire/pkg/logger"
	"github.com/redb0/slogwire/pkg/logstore"
	"github.com/redb0/slogwire/pkg/logstream"
)

// Settings is the full configuration surface of the library. Embed it
// in your application config and parse it with caarlos0/env; every
// field carries env tags with sensible defaults, so an empty
// environment yields a working console-only setup.
type Settings struct {
	// App and Version identify the service in Sentry releases
	// ("app@version") and in the diagnostics the library logs about
	// itself.
	App     string `env:"APP_NAME" envDefault:"app"`
	Version string `env:"APP_VERSION" envDefault:"dev"`

	// Debug turns off query password masking and is passed through to
	// processors that vary by environment.
	Debug bool `env:"APP_DEBUG" envDefault:"false"`

	Log    LogSettings
	Sentry logger.SentryConfig
	Store  StoreSettings
	Stream logstream.Config
}

// LogSettings selects the sinks and shapes the records.
type LogSettings struct {
	// Level is the minimum level handled: debug, info, warn or error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// JSON renders one JSON object per line everywhere instead of the
	// human-readable console layout.
	JSON bool `env:"LOG_JSON" envDefault:"false"`

	// Types lists the destinations to wire up. Console writes
	// synchronously; every other type sits behind the async queue.
	Types []LogType `env:"LOG_TYPES" envDefault:"console"`

	// EventKey is where the record message lands in the event.
	EventKey string `env:"LOG_EVENT_KEY" envDefault:"message"`

	// AddSource resolves the caller into a "source" group.
	AddSource bool `env:"LOG_ADD_SOURCE" envDefault:"false"`

	File   logger.FileConfig
	Syslog logger.SyslogConfig
	Queue  logger.AsyncConfig
}

// SlogLevel parses the configured level name.
func (s LogSettings) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, s.Level)
	}
	return level, nil
}

// Store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// StoreSettings configures the database sink and its retention.
type StoreSettings struct {
	// Driver selects the backing store: postgres or sqlite. Required
	// when the database log type is enabled.
	Driver string `env:"LOGSTORE_DRIVER"`

	// Loggers restricts persistence to the listed logger names. Empty
	// admits every event.
	Loggers []string `env:"LOGSTORE_LOGGERS"`

	// Migrate applies the embedded schema migrations on startup.
	Migrate bool `env:"LOGSTORE_MIGRATE" envDefault:"true"`

	Postgres  logstore.PostgresConfig
	SQLite    logstore.SQLiteConfig
	Retention logstore.RetentionConfig
}

// Validate checks that every requested log type has the settings it
// needs. Violations are joined so a misconfigured deployment reports
// all of them at once.
func (s Settings) Validate() error {
	var errs []error

	if _, err := s.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := s.Sentry.Validate(); err != nil {
		errs = append(errs, err)
	}

	for _, t := range s.uniqueTypes() {
		switch t {
		case LogTypeConsole:
			// Always available.
		case LogTypeFile:
			if s.Log.File.Path == "" {
				errs = append(errs, ErrFilePathRequired)
			}
		case LogTypeSyslog:
			if s.Log.Syslog.Host == "" {
				errs = append(errs, ErrSyslogHostRequired)
			}
			if s.Log.Syslog.Port == 0 {
				errs = append(errs, ErrSyslogPortRequired)
			}
		case LogTypeDatabase:
			switch s.Store.Driver {
			case StoreDriverPostgres:
				if s.Store.Postgres.DSN == "" {
					errs = append(errs, ErrStoreRequired)
				}
			case StoreDriverSQLite:
				if s.Store.SQLite.Path == "" {
					errs = append(errs, ErrStoreRequired)
				}
			case "":
				errs = append(errs, ErrStoreRequired)
			default:
				errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownStoreDriver, s.Store.Driver))
			}
		case LogTypeStream:
			if s.Stream.URL == "" {
				errs = append(errs, ErrStreamURLRequired)
			}
		default:
			if !registered(t) {
				errs = append(errs, fmt.Errorf("%w: %q", ErrUnknownLogType, t))
			}
		}
	}

	return errors.Join(errs...)
}

// release builds the Sentry release string unless one was configured.
func (s Settings) release() string {
	if s.Sentry.Release != "" {
		return s.Sentry.Release
	}
	return fmt.Sprintf("%s@%s", s.App, s.Version)
}

// uniqueTypes preserves order while dropping duplicate log types, so
// LOG_TYPES=console,console does not double every record.
func (s Settings) uniqueTypes() []LogType {
	seen := make(map[LogType]struct{}, len(s.Log.Types))
	types := make([]LogType, 0, len(s.Log.Types))
	for _, t := range s.Log.Types {
		t = LogType(strings.ToLower(strings.TrimSpace(string(t))))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		types = append(types, t)
	}
	return types
}
