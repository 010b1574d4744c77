package slogwire

import "errors"

var (
	ErrInvalidLogLevel    = errors.New("slogwire: invalid log level")
	ErrUnknownLogType     = errors.New("slogwire: unknown log type")
	ErrNilConfigurator    = errors.New("slogwire: nil configurator")
	ErrFilePathRequired   = errors.New("slogwire: file log type requires a file path")
	ErrSyslogHostRequired = errors.New("slogwire: syslog log type requires a host")
	ErrSyslogPortRequired = errors.New("slogwire: syslog log type requires a port")
	ErrStoreRequired      = errors.New("slogwire: database log type requires a store driver and dsn")
	ErrUnknownStoreDriver = errors.New("slogwire: unknown store driver")
	ErrStreamURLRequired  = errors.New("slogwire: stream log type requires a redis url")
)
