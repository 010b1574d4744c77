package logstore

import "errors"

var (
	ErrDSNRequired       = errors.New("logstore: dsn is required")
	ErrFailedToParseDSN  = errors.New("logstore: failed to parse dsn")
	ErrFailedToOpen      = errors.New("logstore: failed to open database connection")
	ErrHealthcheckFailed = errors.New("logstore: healthcheck failed")
	ErrSetDialect        = errors.New("logstore: failed to set migration dialect")
	ErrApplyMigrations   = errors.New("logstore: failed to apply migrations")
	ErrInvalidRules      = errors.New("logstore: invalid mapping rules")
	ErrInvalidSchedule   = errors.New("logstore: invalid retention schedule")
)
