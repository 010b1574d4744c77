package slogwire

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/redb0/slogwire/pkg/logger"
	"github.com/redb0/slogwire/pkg/logstore"
	"github.com/redb0/slogwire/pkg/logstream"
)

// LogType names one sink destination. The built-in types cover the
// console, a rotating file, a syslog daemon, a relational database and
// a Redis live tail; hosts add their own with RegisterConfigurator.
type LogType string

const (
	LogTypeConsole  LogType = "console"
	LogTypeFile     LogType = "file"
	LogTypeSyslog   LogType = "syslog"
	LogTypeDatabase LogType = "database"
	LogTypeStream   LogType = "stream"
)

// SinkEnv is what a sink factory has to work with: the validated
// settings, a diagnostics logger for the factory's own messages, and
// the store Setup built (or was handed) when the database type is in
// play.
type SinkEnv struct {
	Settings Settings
	Log      *slog.Logger
	Store    logstore.Store
}

// SinkFactory builds the sink for one log type.
type SinkFactory func(ctx context.Context, env SinkEnv) (logger.Sink, error)

type configurator struct {
	build SinkFactory

	// direct sinks skip the async queue wrapper.
	direct bool
}

var (
	registryMu sync.RWMutex
	registry   = map[LogType]configurator{
		LogTypeConsole:  {build: consoleSink, direct: true},
		LogTypeFile:     {build: fileSink},
		LogTypeSyslog:   {build: syslogSink},
		LogTypeDatabase: {build: databaseSink},
		LogTypeStream:   {build: streamSink},
	}
)

// RegisterConfigurator installs a factory for a log type, replacing a
// previous registration. Type names are case-insensitive. Direct sinks
// are written to synchronously; everything else goes behind the async
// queue.
func RegisterConfigurator(t LogType, direct bool, build SinkFactory) error {
	if build == nil {
		return ErrNilConfigurator
	}
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[LogType(strings.ToLower(string(t)))] = configurator{build: build, direct: direct}
	return nil
}

func lookupConfigurator(t LogType) (configurator, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	c, ok := registry[t]
	return c, ok
}

func registered(t LogType) bool {
	_, ok := lookupConfigurator(t)
	return ok
}

func consoleSink(_ context.Context, env SinkEnv) (logger.Sink, error) {
	var renderer logger.Renderer = logger.ConsoleRenderer{Color: true, EventKey: env.Settings.Log.EventKey}
	if env.Settings.Log.JSON {
		renderer = logger.JSONRenderer{}
	}
	return logger.NewWriterSink(os.Stdout, renderer), nil
}

// lineRenderer picks the machine or plain layout for file and syslog
// sinks; colors never leave the console.
func lineRenderer(s Settings) logger.Renderer {
	if s.Log.JSON {
		return logger.JSONRenderer{}
	}
	return logger.ConsoleRenderer{EventKey: s.Log.EventKey}
}

func fileSink(_ context.Context, env SinkEnv) (logger.Sink, error) {
	return logger.NewFileSink(env.Settings.Log.File, lineRenderer(env.Settings))
}

func syslogSink(_ context.Context, env SinkEnv) (logger.Sink, error) {
	return logger.NewSyslogSink(env.Settings.Log.Syslog, lineRenderer(env.Settings))
}

func databaseSink(_ context.Context, env SinkEnv) (logger.Sink, error) {
	if env.Store == nil {
		return nil, ErrStoreRequired
	}
	rules := logstore.DefaultRules()
	rules.Loggers = append(rules.Loggers, env.Settings.Store.Loggers...)

	var opts []logstore.MapperOption
	if key := env.Settings.Log.EventKey; key != "" {
		opts = append(opts, logstore.WithEventKey(key))
	}
	return logstore.NewSink(env.Store, logstore.NewMapper(rules, opts...)), nil
}

func streamSink(ctx context.Context, env SinkEnv) (logger.Sink, error) {
	return logstream.Open(ctx, env.Settings.Stream)
}
