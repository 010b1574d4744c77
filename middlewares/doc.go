// Package middlewares provides the HTTP middleware that feeds the
// logging pipeline: request ID propagation, access logging, and panic
// recovery.
//
// This package includes three middlewares:
//
// # Request ID
//
// RequestID assigns a unique ID to each request for tracing. It checks
// incoming headers for an existing ID or generates a new UUID, stores
// the value in the request context, and echoes it in the response.
//
//	r := chi.NewRouter()
//	r.Use(middlewares.RequestID())
//
// Use RequestIDExtractor() during setup so every log record written
// with the request context carries a request_id field:
//
//	log, shutdown, err := slogwire.Setup(ctx, settings,
//	    slogwire.WithContextExtractors(middlewares.RequestIDExtractor()),
//	)
//
// # Access Log
//
// AccessLog emits one structured record per request: a formatted
// message plus the request atoms grouped under "request". Client
// errors log at Warn, server errors at Error. The format string uses
// ${atom} placeholders:
//
//	r.Use(middlewares.AccessLog(
//	    middlewares.WithAccessLogFormat(`${client_addr} "${request_line}" ${status_code}`),
//	    middlewares.WithAccessLogSkipPaths("/health"),
//	))
//
// The atom names follow the gunicorn access log conventions: m is the
// method, U the path, s the status code, L the elapsed seconds, a the
// user agent. Request headers are addressable as "{name}i" and
// response headers as "{name}o" in the structured record.
//
// # Recover
//
// Recover catches handler panics, logs them with the stack trace, and
// responds 500 when nothing was written yet. The panic value travels
// as a *PanicError whose StackTrace method feeds the pipeline's stack
// formatting.
//
//	r.Use(middlewares.Recover())
//
// http.ErrAbortHandler passes through untouched so aborted responses
// keep their net/http semantics.
//
// # Recommended Middleware Order
//
//	r.Use(middlewares.RequestID()) // First: assign ID for all subsequent logging
//	r.Use(middlewares.AccessLog()) // Second: observe the final status, panics included
//	r.Use(middlewares.Recover())   // Third: catch panics before they reach the server
package middlewares
