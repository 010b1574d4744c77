package logstream

import (
	"context"
	"errors"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/redb0/slogwire/pkg/logger"
)

// DefaultKey is the list key events are pushed onto when the config
// leaves it empty.
const DefaultKey = "logs"

// DefaultMaxLen caps the list when the config leaves it at zero.
const DefaultMaxLen = 10000

// Sink ships rendered events onto a capped Redis list, giving external
// consumers a live tail. Each write RPUSHes one JSON line and LTRIMs
// the list back to the cap, so entries past the cap are lost by design.
type Sink struct {
	client   redis.UniversalClient
	key      string
	maxLen   int64
	renderer logger.Renderer

	mu     sync.Mutex
	closed bool

	// ownsClient marks sinks built through Open; only those close the
	// client on Close.
	ownsClient bool
}

// NewSink wraps an existing client. The caller keeps ownership of the
// client lifecycle; Close only stops the sink.
func NewSink(client redis.UniversalClient, cfg Config) *Sink {
	key := cfg.Key
	if key == "" {
		key = DefaultKey
	}
	maxLen := cfg.MaxLen
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}
	return &Sink{
		client:   client,
		key:      key,
		maxLen:   maxLen,
		renderer: logger.JSONRenderer{},
	}
}

// Open dials Redis with the config's retry policy and returns a sink
// that owns the connection: Close closes the client too.
func Open(ctx context.Context, cfg Config) (*Sink, error) {
	client, err := Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := NewSink(client, cfg)
	s.ownsClient = true
	return s, nil
}

// Write renders the event as one JSON line and appends it to the list,
// trimming the list back to the cap in the same round trip.
func (s *Sink) Write(ctx context.Context, e logger.Entry) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return logger.ErrSinkClosed
	}
	s.mu.Unlock()

	line, err := s.renderer.Render(e.Event)
	if err != nil {
		return errors.Join(ErrPushFailed, err)
	}

	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, s.key, line)
		p.LTrim(ctx, s.key, -s.maxLen, -1)
		return nil
	})
	if err != nil {
		return errors.Join(ErrPushFailed, err)
	}
	return nil
}

// Healthcheck pings the backing client.
func (s *Sink) Healthcheck(ctx context.Context) error {
	return Healthcheck(s.client)(ctx)
}

// Close stops the sink. Sinks built with Open close the client as
// well. Idempotent.
func (s *Sink) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if s.ownsClient && s.client != nil {
		return s.client.Close()
	}
	return nil
}
