package logger

import (
	"log/slog"
	"strings"
	"time"
)

// Keys the pipeline writes into every event. The message key is
// configurable per pipeline; the rest are fixed.
const (
	DefaultEventKey = "message"
	TimestampKey    = "timestamp"
	LevelKey        = "level"
	LoggerKey       = "logger"
	SourceKey       = "source"
	StackKey        = "stack"
	ErrorKey        = "error"
)

// Event is the normalized form of a single log record. Attribute groups
// become nested events. Sinks consume events, never slog records.
type Event map[string]any

// Clone copies the event deeply enough for concurrent consumption:
// nested events and maps are cloned, leaf values are shared.
func (e Event) Clone() Event {
	if e == nil {
		return nil
	}
	out := make(Event, len(e))
	for k, v := range e {
		switch sub := v.(type) {
		case Event:
			out[k] = sub.Clone()
		case map[string]any:
			out[k] = Event(sub).Clone()
		default:
			out[k] = v
		}
	}
	return out
}

// Lookup walks nested events along path. It reports false when any
// segment is missing or not a map.
func (e Event) Lookup(path ...string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := e
	for i, key := range path {
		v, ok := cur[key]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		cur, ok = asEvent(v)
		if !ok {
			return nil, false
		}
	}
	return nil, false
}

func asEvent(v any) (Event, bool) {
	switch sub := v.(type) {
	case Event:
		return sub, true
	case map[string]any:
		return Event(sub), true
	default:
		return nil, false
	}
}

// Entry is the unit the pipeline hands to sinks.
type Entry struct {
	Time  time.Time
	Level slog.Level
	Event Event
}

// levelString renders levels the way events store them: lowercase with
// offsets preserved ("warn", "error+4").
func levelString(l slog.Level) string {
	return strings.ToLower(l.String())
}
