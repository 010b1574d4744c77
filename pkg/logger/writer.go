package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// WriterSink renders entries and writes newline-terminated lines to w.
// It never closes the underlying writer; consoles stay open for the
// process lifetime.
type WriterSink struct {
	mu       sync.Mutex
	w        io.Writer
	renderer Renderer
	closed   bool
}

// NewWriterSink writes rendered entries to w. A nil renderer defaults
// to JSON.
func NewWriterSink(w io.Writer, renderer Renderer) *WriterSink {
	if renderer == nil {
		renderer = JSONRenderer{}
	}
	return &WriterSink{w: w, renderer: renderer}
}

func (s *WriterSink) Write(_ context.Context, e Entry) error {
	line, err := s.renderer.Render(e.Event)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	if _, err := s.w.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("logger: write: %w", err)
	}
	return nil
}

func (s *WriterSink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// MultiSink fans one entry out to several sinks in order, joining their
// errors. It lets a single async queue feed every non-console sink.
type MultiSink []Sink

func NewMultiSink(sinks ...Sink) MultiSink {
	return MultiSink(sinks)
}

func (m MultiSink) Write(ctx context.Context, e Entry) error {
	var err error
	for _, sink := range m {
		if werr := sink.Write(ctx, e); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	return err
}

func (m MultiSink) Close(ctx context.Context) error {
	var err error
	for _, sink := range m {
		err = errors.Join(err, sink.Close(ctx))
	}
	return err
}
