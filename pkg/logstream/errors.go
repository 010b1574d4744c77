package logstream

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("logstream: empty connection url")
	ErrFailedToParseURL   = errors.New("logstream: failed to parse connection url")
	ErrConnectionFailed   = errors.New("logstream: connection failed")
	ErrHealthcheckFailed  = errors.New("logstream: healthcheck failed")
	ErrPushFailed         = errors.New("logstream: failed to push entry")
)
