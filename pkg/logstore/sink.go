package logstore

import (
	"context"
	"sync"

	"github.com/redb0/slogwire/pkg/logger"
)

// Sink feeds pipeline entries through a Mapper into a Store. The sink
// owns the store: closing the sink closes the store.
type Sink struct {
	store  Store
	mapper *Mapper

	mu     sync.Mutex
	closed bool
}

// NewSink adapts store for the logging pipeline. A nil mapper defaults
// to DefaultRules.
func NewSink(store Store, mapper *Mapper) *Sink {
	if mapper == nil {
		mapper = NewMapper(DefaultRules())
	}
	return &Sink{store: store, mapper: mapper}
}

// Write maps the entry and inserts it. Events rejected by the logger
// allowlist are dropped, not failed; mapping and insert errors surface
// to the queue's error accounting.
func (s *Sink) Write(ctx context.Context, e logger.Entry) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return logger.ErrSinkClosed
	}
	s.mu.Unlock()

	entry, ok, err := s.mapper.Map(e.Event)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return s.store.Insert(ctx, entry)
}

// Close closes the underlying store. Idempotent.
func (s *Sink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.store.Close()
}
