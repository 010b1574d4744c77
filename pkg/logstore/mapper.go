package logstore

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/redb0/slogwire/pkg/logger"
)

// KeyHandler transforms a resolved value before it lands in its column.
type KeyHandler func(v any) any

// Rules drive the event-to-column resolution. Aliases are flat keys
// tried in order after the column name itself; search paths are dotted
// lookups into nested events tried last. Loggers is an allowlist of
// logger names; empty admits every event.
type Rules struct {
	Aliases     map[string][]string `yaml:"aliases"`
	SearchPaths map[string][]string `yaml:"search_paths"`
	Loggers     []string            `yaml:"loggers"`
}

// DefaultRules map the access-log atoms onto the table columns. The
// atoms live either at the top level or under the "request" group,
// both of which the mapper searches.
func DefaultRules() Rules {
	return Rules{
		Aliases: map[string][]string{
			ColumnRequestID:     {"{x-request-id}i", "request_id"},
			ColumnMethod:        {"m"},
			ColumnProtocol:      {"H"},
			ColumnPath:          {"R"},
			ColumnClientAddress: {"client_addr"},
			ColumnStatusCode:    {"s"},
		},
		SearchPaths: map[string][]string{
			ColumnSession: {"request.session"},
		},
	}
}

// Mapper turns pipeline events into table entries. The zero value maps
// nothing useful; construct with NewMapper.
type Mapper struct {
	rules    Rules
	handlers map[string]KeyHandler
	eventKey string
}

// MapperOption customizes a Mapper.
type MapperOption func(*Mapper)

// WithKeyHandler installs a transform for one column, applied after
// the value is resolved.
func WithKeyHandler(column string, h KeyHandler) MapperOption {
	return func(m *Mapper) {
		m.handlers[column] = h
	}
}

// WithEventKey overrides where the mapper reads the message from.
func WithEventKey(key string) MapperOption {
	return func(m *Mapper) {
		m.eventKey = key
	}
}

// NewMapper builds a mapper over the given rules.
func NewMapper(rules Rules, opts ...MapperOption) *Mapper {
	m := &Mapper{
		rules:    rules,
		handlers: make(map[string]KeyHandler),
		eventKey: logger.DefaultEventKey,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Map resolves an event into an entry. ok is false when the event's
// logger is not admitted by the allowlist; such events are skipped, not
// failed. The stored values and the Extra JSON are password-masked
// regardless of the pipeline's own processor configuration.
func (m *Mapper) Map(ev logger.Event) (Entry, bool, error) {
	if len(m.rules.Loggers) > 0 {
		name, _ := ev[logger.LoggerKey].(string)
		if !slices.Contains(m.rules.Loggers, name) {
			return Entry{}, false, nil
		}
	}

	// Masked unconditionally; the pipeline's debug bypass does not
	// reach stored data.
	ev = ev.Clone()
	logger.MaskPasswords(ev)

	e := Entry{
		ID:        uuid.New(),
		Timestamp: m.timestamp(ev),
	}
	if msg, ok := ev[m.eventKey].(string); ok {
		e.Message = msg
	}

	sources := m.sources(ev)
	e.RequestID = toString(m.applyHandler(ColumnRequestID, m.resolve(ev, sources, ColumnRequestID)))
	e.ClientAddress = toString(m.applyHandler(ColumnClientAddress, m.resolve(ev, sources, ColumnClientAddress)))
	e.Method = toString(m.applyHandler(ColumnMethod, m.resolve(ev, sources, ColumnMethod)))
	e.Protocol = toString(m.applyHandler(ColumnProtocol, m.resolve(ev, sources, ColumnProtocol)))
	e.Path = toString(m.applyHandler(ColumnPath, m.resolve(ev, sources, ColumnPath)))
	e.StatusCode = toStatusCode(m.applyHandler(ColumnStatusCode, m.resolve(ev, sources, ColumnStatusCode)))
	if session, ok := eventValue(m.applyHandler(ColumnSession, m.resolve(ev, sources, ColumnSession))); ok {
		e.Session = session
	}

	extra, err := json.Marshal(ev)
	if err != nil {
		return Entry{}, false, fmt.Errorf("logstore: marshal event: %w", err)
	}
	e.Extra = extra

	return e, true, nil
}

// sources lists the maps a flat key is searched in: the event itself,
// then its "request" group where the access-log atoms live.
func (m *Mapper) sources(ev logger.Event) []logger.Event {
	sources := []logger.Event{ev}
	if req, ok := eventValue(ev["request"]); ok {
		sources = append(sources, req)
	}
	return sources
}

// resolve tries the column name and its aliases against every source,
// then the search paths against the event root.
func (m *Mapper) resolve(ev logger.Event, sources []logger.Event, column string) any {
	for _, key := range append([]string{column}, m.rules.Aliases[column]...) {
		for _, src := range sources {
			if v, ok := src[key]; ok {
				return v
			}
		}
	}
	for _, path := range m.rules.SearchPaths[column] {
		if v, ok := ev.Lookup(strings.Split(path, ".")...); ok {
			return v
		}
	}
	return nil
}

func (m *Mapper) applyHandler(column string, v any) any {
	if v == nil {
		return nil
	}
	if h, ok := m.handlers[column]; ok {
		return h(v)
	}
	return v
}

func (m *Mapper) timestamp(ev logger.Event) time.Time {
	if s, ok := ev[logger.TimestampKey].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
	}
	return time.Now().UTC()
}

func toString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

func toStatusCode(v any) *int {
	var code int
	switch val := v.(type) {
	case nil:
		return nil
	case int:
		code = val
	case int64:
		code = int(val)
	case float64:
		code = int(val)
	case string:
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return nil
		}
		code = parsed
	default:
		return nil
	}
	return &code
}

func eventValue(v any) (map[string]any, bool) {
	switch val := v.(type) {
	case logger.Event:
		return val, true
	case map[string]any:
		return val, true
	default:
		return nil, false
	}
}
