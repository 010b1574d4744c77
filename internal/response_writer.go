package internal

import (
	"bufio"
	"net"
	"net/http"
	"sync"
)

// ResponseWriter wraps http.ResponseWriter to capture what the handler
// wrote: the status code, the number of body bytes, and whether anything
// was written at all. The access log reads these after the handler
// returns; the recover middleware checks Written before sending a 500.
type ResponseWriter struct {
	http.ResponseWriter
	mu      sync.Mutex
	status  int
	size    int64
	written bool
}

// NewResponseWriter wraps w for response capture.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

// WriteHeader records the status code and forwards the first call.
// Subsequent calls are ignored, matching net/http semantics.
func (w *ResponseWriter) WriteHeader(code int) {
	w.mu.Lock()
	if w.written {
		w.mu.Unlock()
		return
	}
	w.written = true
	w.status = code
	w.mu.Unlock()

	w.ResponseWriter.WriteHeader(code)
}

// Write forwards the body bytes, implying a 200 on the first write the
// same way net/http does.
func (w *ResponseWriter) Write(b []byte) (int, error) {
	w.mu.Lock()
	if !w.written {
		w.written = true
		w.mu.Unlock()
		w.ResponseWriter.WriteHeader(w.status)
	} else {
		w.mu.Unlock()
	}

	n, err := w.ResponseWriter.Write(b)

	w.mu.Lock()
	w.size += int64(n)
	w.mu.Unlock()
	return n, err
}

// Status returns the response status code. Before the first write it
// reports the implied 200.
func (w *ResponseWriter) Status() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.status
}

// Size returns the number of body bytes written so far.
func (w *ResponseWriter) Size() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.size
}

// Written reports whether the header or any body byte went out.
func (w *ResponseWriter) Written() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.written
}

// Flush implements the http.Flusher interface.
func (w *ResponseWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

// Hijack implements the http.Hijacker interface.
func (w *ResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Push implements the http.Pusher interface.
func (w *ResponseWriter) Push(target string, opts *http.PushOptions) error {
	if pusher, ok := w.ResponseWriter.(http.Pusher); ok {
		return pusher.Push(target, opts)
	}
	return http.ErrNotSupported
}

// Unwrap returns the underlying ResponseWriter so http.ResponseController
// can reach the original implementation.
func (w *ResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
