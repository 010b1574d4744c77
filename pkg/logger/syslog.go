package logger

import (
	"context"
	"fmt"
	"log/slog"
	"log/syslog"
	"net"
	"strconv"
	"strings"
	"sync"
)

// SyslogConfig holds syslog sink parameters.
// Embed this in your app config for env parsing with caarlos0/env.
type SyslogConfig struct {
	Network  string `env:"LOG_SYSLOG_NETWORK" envDefault:"tcp"`
	Host     string `env:"LOG_SYSLOG_HOST"`
	Port     int    `env:"LOG_SYSLOG_PORT" envDefault:"6514"`
	Tag      string `env:"LOG_SYSLOG_TAG"`
	Facility string `env:"LOG_SYSLOG_FACILITY" envDefault:"local0"`
}

// facilities names the syslog facilities a config can select.
var facilities = map[string]syslog.Priority{
	"kern":   syslog.LOG_KERN,
	"user":   syslog.LOG_USER,
	"daemon": syslog.LOG_DAEMON,
	"syslog": syslog.LOG_SYSLOG,
	"local0": syslog.LOG_LOCAL0,
	"local1": syslog.LOG_LOCAL1,
	"local2": syslog.LOG_LOCAL2,
	"local3": syslog.LOG_LOCAL3,
	"local4": syslog.LOG_LOCAL4,
	"local5": syslog.LOG_LOCAL5,
	"local6": syslog.LOG_LOCAL6,
	"local7": syslog.LOG_LOCAL7,
}

// SyslogSink forwards rendered entries to a syslog daemon, mapping the
// record level onto the matching syslog severity.
type SyslogSink struct {
	mu       sync.Mutex
	w        *syslog.Writer
	renderer Renderer
	closed   bool
}

// NewSyslogSink validates the config and dials the daemon. A nil
// renderer defaults to the plain console layout.
func NewSyslogSink(cfg SyslogConfig, renderer Renderer) (*SyslogSink, error) {
	if cfg.Host == "" {
		return nil, ErrNoSyslogHost
	}
	if cfg.Port == 0 {
		return nil, ErrNoSyslogPort
	}
	if renderer == nil {
		renderer = ConsoleRenderer{}
	}
	facility, ok := facilities[strings.ToLower(cfg.Facility)]
	if !ok {
		if cfg.Facility != "" {
			return nil, fmt.Errorf("%w: %q", ErrSyslogFacility, cfg.Facility)
		}
		facility = syslog.LOG_LOCAL0
	}
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	w, err := syslog.Dial(cfg.Network, addr, syslog.LOG_INFO|facility, cfg.Tag)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSyslogConnect, addr, err)
	}
	return &SyslogSink{w: w, renderer: renderer}, nil
}

func (s *SyslogSink) Write(_ context.Context, e Entry) error {
	line, err := s.renderer.Render(e.Event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	msg := string(line)
	switch {
	case e.Level >= slog.LevelError:
		err = s.w.Err(msg)
	case e.Level >= slog.LevelWarn:
		err = s.w.Warning(msg)
	case e.Level >= slog.LevelInfo:
		err = s.w.Info(msg)
	default:
		err = s.w.Debug(msg)
	}
	if err != nil {
		return fmt.Errorf("logger: syslog write: %w", err)
	}
	return nil
}

func (s *SyslogSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.w.Close()
}
