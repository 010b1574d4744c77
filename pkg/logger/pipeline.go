package logger

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Sink receives normalized entries from the pipeline. Implementations
// must be safe for concurrent use; Close must be idempotent.
type Sink interface {
	Write(ctx context.Context, e Entry) error
	Close(ctx context.Context) error
}

// PipelineConfig configures the normalization pipeline.
type PipelineConfig struct {
	// Level is the minimum level handled. Nil defaults to slog.LevelInfo.
	Level slog.Leveler
	// EventKey is the key the record message is stored under.
	// Empty defaults to DefaultEventKey.
	EventKey string
	// AddSource resolves the record's program counter into a "source" group.
	AddSource bool
	// Processors run in order after the event is built. A processor
	// returning nil drops the record.
	Processors []Processor
	// Sinks receive every surviving entry. At least one is required.
	Sinks []Sink
}

// Pipeline is a slog.Handler that builds one Event per record, runs the
// processor chain over it, and fans the result out to all sinks.
type Pipeline struct {
	level     slog.Leveler
	eventKey  string
	addSource bool
	procs     []Processor
	sinks     []Sink
	goas      []groupOrAttrs
	closed    *atomic.Bool
	closeOnce *sync.Once
}

// groupOrAttrs holds either an open group name or preformatted attrs,
// in the order WithGroup/WithAttrs were called.
type groupOrAttrs struct {
	group string
	attrs []slog.Attr
}

// NewPipeline validates the configuration and builds the handler.
func NewPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if len(cfg.Sinks) == 0 {
		return nil, ErrNoSinks
	}
	eventKey := cfg.EventKey
	if eventKey == "" {
		eventKey = DefaultEventKey
	}
	return &Pipeline{
		level:     cfg.Level,
		eventKey:  eventKey,
		addSource: cfg.AddSource,
		procs:     cfg.Processors,
		sinks:     cfg.Sinks,
		closed:    &atomic.Bool{},
		closeOnce: &sync.Once{},
	}, nil
}

func (p *Pipeline) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if p.level != nil {
		minLevel = p.level.Level()
	}
	return level >= minLevel
}

// Handle normalizes the record and writes it to every sink. Sink errors
// are joined; a processor returning nil drops the record silently.
func (p *Pipeline) Handle(ctx context.Context, rec slog.Record) error {
	if p.closed.Load() {
		return ErrSinkClosed
	}

	t := rec.Time
	if t.IsZero() {
		t = time.Now()
	}
	t = t.UTC()

	ev := make(Event, rec.NumAttrs()+6)
	ev[TimestampKey] = t.Format(time.RFC3339Nano)
	ev[LevelKey] = levelString(rec.Level)
	ev[p.eventKey] = rec.Message
	if p.addSource && rec.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{rec.PC})
		frame, _ := frames.Next()
		if frame.File != "" {
			ev[SourceKey] = Event{
				"function": frame.Function,
				"file":     frame.File,
				"line":     frame.Line,
			}
		}
	}

	// Replay WithGroup/WithAttrs state, then record attrs into the
	// innermost group. Groups that end up empty are pruned afterwards.
	cur := ev
	type opened struct {
		parent Event
		key    string
	}
	var openedGroups []opened
	for _, goa := range p.goas {
		if goa.group != "" {
			sub := make(Event)
			cur[goa.group] = sub
			openedGroups = append(openedGroups, opened{parent: cur, key: goa.group})
			cur = sub
			continue
		}
		for _, a := range goa.attrs {
			putAttr(cur, a)
		}
	}
	rec.Attrs(func(a slog.Attr) bool {
		putAttr(cur, a)
		return true
	})
	for i := len(openedGroups) - 1; i >= 0; i-- {
		og := openedGroups[i]
		if sub, ok := og.parent[og.key].(Event); ok && len(sub) == 0 {
			delete(og.parent, og.key)
		}
	}

	for _, proc := range p.procs {
		ev = proc(ctx, ev)
		if ev == nil {
			return nil
		}
	}
	normalize(ev)

	entry := Entry{Time: t, Level: rec.Level, Event: ev}
	var err error
	for _, sink := range p.sinks {
		if werr := sink.Write(ctx, entry); werr != nil {
			err = errors.Join(err, werr)
		}
	}
	return err
}

// WithAttrs returns a derived handler sharing sinks and processors.
func (p *Pipeline) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return p
	}
	return p.derive(groupOrAttrs{attrs: attrs})
}

// WithGroup returns a derived handler; subsequent attrs nest under name.
func (p *Pipeline) WithGroup(name string) slog.Handler {
	if name == "" {
		return p
	}
	return p.derive(groupOrAttrs{group: name})
}

func (p *Pipeline) derive(goa groupOrAttrs) *Pipeline {
	p2 := *p
	p2.goas = append(slices.Clip(p.goas), goa)
	return &p2
}

// Close stops the pipeline and closes all sinks concurrently. It is
// idempotent and safe to call while writes are in flight; writes after
// Close report ErrSinkClosed.
func (p *Pipeline) Close(ctx context.Context) error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		var g errgroup.Group
		for _, sink := range p.sinks {
			g.Go(func() error {
				return sink.Close(ctx)
			})
		}
		err = g.Wait()
	})
	return err
}

// putAttr resolves a single attr into the event. Groups become nested
// events; inline groups (empty key) merge into the current level.
func putAttr(ev Event, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Value.Kind() == slog.KindGroup {
		attrs := a.Value.Group()
		if len(attrs) == 0 {
			return
		}
		if a.Key == "" {
			for _, ga := range attrs {
				putAttr(ev, ga)
			}
			return
		}
		sub := make(Event, len(attrs))
		for _, ga := range attrs {
			putAttr(sub, ga)
		}
		ev[a.Key] = sub
		return
	}
	if a.Key == "" {
		return
	}
	switch a.Value.Kind() {
	case slog.KindTime:
		ev[a.Key] = a.Value.Time().UTC()
	default:
		ev[a.Key] = a.Value.Any()
	}
}

// normalize rewrites values every renderer can serialize: errors become
// strings, times become RFC3339Nano UTC, durations become strings.
func normalize(ev Event) {
	for k, v := range ev {
		ev[k] = normalizeValue(v)
	}
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case Event:
		normalize(val)
		return val
	case map[string]any:
		e := Event(val)
		normalize(e)
		return e
	case []any:
		for i, item := range val {
			val[i] = normalizeValue(item)
		}
		return val
	case error:
		return val.Error()
	case time.Time:
		return val.UTC().Format(time.RFC3339Nano)
	case time.Duration:
		return val.String()
	default:
		return v
	}
}
