// Package internal holds response-capture plumbing shared by the
// middleware set.
//
// This package is internal and should not be used directly. The
// middlewares package wraps every response writer in a
// [ResponseWriter] so the access log can read the status code and the
// body size after the handler returns, and the recover middleware can
// tell whether a 500 still fits on the wire.
package internal
