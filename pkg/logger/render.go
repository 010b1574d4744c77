package logger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Renderer serializes a normalized event into one output line without
// the trailing newline.
type Renderer interface {
	Render(ev Event) ([]byte, error)
}

// JSONRenderer emits one JSON object per event with keys sorted.
type JSONRenderer struct{}

func (JSONRenderer) Render(ev Event) ([]byte, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("logger: render json: %w", err)
	}
	return data, nil
}

// ANSI escape codes used by the console renderer.
const (
	ansiReset  = "\x1b[0m"
	ansiBold   = "\x1b[1m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiCyan   = "\x1b[36m"
)

// ConsoleRenderer emits a human-oriented line:
//
//	timestamp [level   ] message [logger] key=value ...
//
// remaining keys sorted, the stack (if any) appended on its own lines.
// The same renderer without Color serves plain log files.
type ConsoleRenderer struct {
	// Color enables ANSI level and key coloring.
	Color bool
	// EventKey is where the message lives. Empty defaults to
	// DefaultEventKey.
	EventKey string
}

func (r ConsoleRenderer) Render(ev Event) ([]byte, error) {
	eventKey := r.EventKey
	if eventKey == "" {
		eventKey = DefaultEventKey
	}

	var b bytes.Buffer
	if ts, ok := ev[TimestampKey].(string); ok {
		b.WriteString(ts)
		b.WriteByte(' ')
	}

	level, _ := ev[LevelKey].(string)
	b.WriteByte('[')
	if r.Color {
		b.WriteString(levelColor(level))
	}
	b.WriteString(level)
	if r.Color {
		b.WriteString(ansiReset)
	}
	for i := len(level); i < 8; i++ {
		b.WriteByte(' ')
	}
	b.WriteString("] ")

	if msg, ok := ev[eventKey].(string); ok {
		if r.Color {
			b.WriteString(ansiBold)
			b.WriteString(msg)
			b.WriteString(ansiReset)
		} else {
			b.WriteString(msg)
		}
	}

	if name, ok := ev[LoggerKey].(string); ok && name != "" {
		b.WriteString(" [")
		if r.Color {
			b.WriteString(ansiBlue)
			b.WriteString(name)
			b.WriteString(ansiReset)
		} else {
			b.WriteString(name)
		}
		b.WriteByte(']')
	}

	keys := make([]string, 0, len(ev))
	for k := range ev {
		switch k {
		case TimestampKey, LevelKey, LoggerKey, StackKey, eventKey:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteByte(' ')
		if r.Color {
			b.WriteString(ansiCyan)
			b.WriteString(k)
			b.WriteString(ansiReset)
		} else {
			b.WriteString(k)
		}
		b.WriteByte('=')
		b.WriteString(consoleValue(ev[k]))
	}

	if stack, ok := ev[StackKey].(string); ok && stack != "" {
		b.WriteByte('\n')
		b.WriteString(strings.TrimRight(stack, "\n"))
	}

	return b.Bytes(), nil
}

func levelColor(level string) string {
	switch {
	case strings.HasPrefix(level, "debug"):
		return ansiCyan
	case strings.HasPrefix(level, "info"):
		return ansiGreen
	case strings.HasPrefix(level, "warn"):
		return ansiYellow
	default:
		return ansiRed
	}
}

// consoleValue formats a single value for key=value output. Strings
// needing quoting are quoted, composites fall back to compact JSON.
func consoleValue(v any) string {
	switch val := v.(type) {
	case string:
		if val == "" || strings.ContainsAny(val, " \t\n\"=") {
			return strconv.Quote(val)
		}
		return val
	case nil:
		return "<nil>"
	case Event, map[string]any, []any:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(data)
	default:
		return fmt.Sprintf("%v", val)
	}
}
