package logger

import "errors"

var (
	ErrNoSinks           = errors.New("logger: at least one sink is required")
	ErrSinkClosed        = errors.New("logger: sink closed")
	ErrNoFilePath        = errors.New("logger: file path is required for the file sink")
	ErrNoSyslogHost      = errors.New("logger: syslog host is required")
	ErrNoSyslogPort      = errors.New("logger: syslog port is required")
	ErrSyslogConnect     = errors.New("logger: syslog connection failed")
	ErrSyslogFacility    = errors.New("logger: unknown syslog facility")
	ErrSentryDisabled    = errors.New("logger: sentry is not configured, missing DSN")
	ErrSentryInit        = errors.New("logger: failed to initialize sentry")
	ErrSentryEnvironment = errors.New("logger: unknown sentry environment")
)
