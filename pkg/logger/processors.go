package logger

import (
	"context"
	"regexp"
	"strings"
)

// Processor transforms an event before it reaches the sinks. Processors
// run in configuration order and may mutate the event in place.
// Returning nil drops the record.
type Processor func(ctx context.Context, ev Event) Event

const maskedValue = "*****"

var passwordPattern = regexp.MustCompile(`(password=)[^&\s]*`)

// DefaultProcessors is the standard chain: authorization scrubbing,
// the color_message duplicate drop, query password masking (skipped in
// debug mode), and panic formatting.
func DefaultProcessors(debug, structuredStacks bool) []Processor {
	procs := []Processor{
		MaskAuthorization(),
		DropColorMessage(),
	}
	if !debug {
		procs = append(procs, MaskQueryPasswords())
	}
	return append(procs, FormatPanics(structuredStacks))
}

// MaskAuthorization hides credentials in authorization values anywhere
// in the event. The scheme token stays visible, the credential does not:
// "Bearer eyJh..." becomes "Bearer *****".
func MaskAuthorization() Processor {
	return func(_ context.Context, ev Event) Event {
		maskAuthValues(ev)
		return ev
	}
}

func maskAuthValues(ev Event) {
	for k, v := range ev {
		if sub, ok := asEvent(v); ok {
			maskAuthValues(sub)
			continue
		}
		key := strings.ToLower(k)
		if key != "authorization" && key != "proxy-authorization" {
			continue
		}
		s, ok := v.(string)
		if !ok || s == "" {
			continue
		}
		if scheme, _, found := strings.Cut(s, " "); found {
			ev[k] = scheme + " " + maskedValue
		} else {
			ev[k] = maskedValue
		}
	}
}

// MaskQueryPasswords replaces the value of password query parameters in
// every string in the event: "password=hunter2&x=1" becomes
// "password=*****&x=1".
func MaskQueryPasswords() Processor {
	return func(_ context.Context, ev Event) Event {
		maskPasswordStrings(ev)
		return ev
	}
}

func maskPasswordStrings(ev Event) {
	for k, v := range ev {
		switch val := v.(type) {
		case string:
			if strings.Contains(val, "password=") {
				ev[k] = passwordPattern.ReplaceAllString(val, "${1}"+maskedValue)
			}
		case []any:
			for _, item := range val {
				if sub, ok := asEvent(item); ok {
					maskPasswordStrings(sub)
				}
			}
		default:
			if sub, ok := asEvent(v); ok {
				maskPasswordStrings(sub)
			}
		}
	}
}

// MaskPasswords applies the password query masking to an event outside
// the processor chain. The database mapper reuses it on stored values.
func MaskPasswords(ev Event) {
	maskPasswordStrings(ev)
}

// DropColorMessage removes the color_message duplicate some servers
// attach alongside the plain message.
func DropColorMessage() Processor {
	return func(_ context.Context, ev Event) Event {
		delete(ev, "color_message")
		return ev
	}
}

// StackTracer is implemented by error values carrying a captured stack,
// such as recovered panics. FormatPanics splits them into an error
// message and a stack representation.
type StackTracer interface {
	error
	StackTrace() []byte
}

// FormatPanics rewrites stack-carrying error values: the message moves
// under "error" whatever key the value arrived on, and the stack lands
// under "stack", either as the raw trace or as structured frames when
// structured is true.
func FormatPanics(structured bool) Processor {
	return func(_ context.Context, ev Event) Event {
		for k, v := range ev {
			st, ok := v.(StackTracer)
			if !ok {
				continue
			}
			delete(ev, k)
			ev[ErrorKey] = st.Error()
			stack := st.StackTrace()
			if len(stack) == 0 {
				continue
			}
			if structured {
				ev[StackKey] = parseStack(stack)
			} else {
				ev[StackKey] = string(stack)
			}
		}
		return ev
	}
}

// parseStack converts runtime.Stack output into frames of
// {function, file, line}. Lines that do not match the expected shape
// are skipped.
func parseStack(stack []byte) []Event {
	lines := strings.Split(string(stack), "\n")
	var frames []Event
	for i := 0; i < len(lines)-1; i++ {
		fn := strings.TrimSpace(lines[i])
		loc := lines[i+1]
		if fn == "" || !strings.HasPrefix(loc, "\t") {
			continue
		}
		if strings.HasPrefix(fn, "goroutine ") {
			continue
		}
		loc = strings.TrimSpace(loc)
		if idx := strings.LastIndex(loc, " +0x"); idx >= 0 {
			loc = loc[:idx]
		}
		file, lineStr, found := cutLast(loc, ":")
		if !found {
			continue
		}
		line := 0
		for _, r := range lineStr {
			if r < '0' || r > '9' {
				line = 0
				break
			}
			line = line*10 + int(r-'0')
		}
		frames = append(frames, Event{
			"function": trimCallArgs(fn),
			"file":     file,
			"line":     line,
		})
		i++
	}
	return frames
}

// trimCallArgs strips the argument list runtime.Stack appends to
// function names: "main.(*app).run(0x0, {0x1, 0x2})" becomes
// "main.(*app).run". The last paren matters, receivers carry their own.
func trimCallArgs(fn string) string {
	if idx := strings.LastIndexByte(fn, '('); idx > 0 && strings.HasSuffix(fn, ")") {
		return fn[:idx]
	}
	return fn
}

func cutLast(s, sep string) (before, after string, found bool) {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s, "", false
	}
	return s[:idx], s[idx+len(sep):], true
}
