package middlewares

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/redb0/slogwire/internal"
	"github.com/redb0/slogwire/pkg/logger"
)

// StatusClientClosedRequest is reported when the client disconnected
// before the handler produced a response. Nginx convention.
const StatusClientClosedRequest = 499

// DefaultAccessLogFormat renders the classic one-line access log.
// Placeholders are atom names expanded with os.Expand.
const DefaultAccessLogFormat = `${client_addr} - "${request_line}" ${status_code} ${L}s - "${a}"`

// DefaultAccessLogName tags access records so downstream consumers,
// the database mapper's logger allowlist included, can filter on them.
const DefaultAccessLogName = "api.access"

// DefaultRecordAtoms are the atoms attached to the structured record
// under the "request" group. Extra atoms, header atoms included, are
// added with WithAccessLogExtraAtoms.
var DefaultRecordAtoms = []string{
	"client_addr", "request_line", "m", "U", "q", "H",
	"s", "st", "b", "f", "a", "M", "L", "session",
}

// AccessLogConfig configures the access log middleware.
type AccessLogConfig struct {
	Logger      *slog.Logger                         // Destination (default: slog.Default at call time)
	LoggerName  string                               // Value of the "logger" field, empty disables it
	Format      string                               // Message format (default: DefaultAccessLogFormat)
	Methods     []string                             // Only these methods are logged; empty logs all
	SkipPaths   []string                             // Exact paths never logged (health probes)
	RecordAtoms []string                             // Atoms included in the structured record
	SessionFunc func(r *http.Request) map[string]any // Session data for the "session" atom
}

// AccessLogOption configures AccessLogConfig.
type AccessLogOption func(*AccessLogConfig)

// WithAccessLogLogger sets the logger access records are written to.
func WithAccessLogLogger(log *slog.Logger) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		if log != nil {
			cfg.Logger = log
		}
	}
}

// WithAccessLogName overrides the "logger" field value.
func WithAccessLogName(name string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.LoggerName = name
	}
}

// WithAccessLogFormat sets a custom message format.
func WithAccessLogFormat(format string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		if format != "" {
			cfg.Format = format
		}
	}
}

// WithAccessLogMethods restricts logging to the listed HTTP methods.
func WithAccessLogMethods(methods ...string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Methods = methods
	}
}

// WithAccessLogSkipPaths disables logging for exact path matches,
// typically health and metrics endpoints.
func WithAccessLogSkipPaths(paths ...string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.SkipPaths = paths
	}
}

// WithAccessLogExtraAtoms appends atoms to the structured record,
// header atoms such as "{x-request-id}i" included.
func WithAccessLogExtraAtoms(atoms ...string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.RecordAtoms = append(cfg.RecordAtoms, atoms...)
	}
}

// WithAccessLogSession supplies session data attached under the
// "session" atom, where the database mapper picks it up.
func WithAccessLogSession(fn func(r *http.Request) map[string]any) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.SessionFunc = fn
	}
}

// AccessLog returns middleware that emits one structured record per
// request: the formatted message plus the selected atoms grouped under
// "request". Successes log at Info, client errors at Warn, server
// errors at Error. The record is emitted even when the handler panics,
// carrying whatever status the recovery path wrote.
func AccessLog(opts ...AccessLogOption) func(http.Handler) http.Handler {
	cfg := &AccessLogConfig{
		LoggerName:  DefaultAccessLogName,
		Format:      DefaultAccessLogFormat,
		RecordAtoms: append([]string(nil), DefaultRecordAtoms...),
	}

	for _, opt := range opts {
		opt(cfg)
	}

	methods := make(map[string]struct{}, len(cfg.Methods))
	for _, m := range cfg.Methods {
		methods[strings.ToUpper(m)] = struct{}{}
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, skipped := skip[r.URL.Path]; skipped {
				next.ServeHTTP(w, r)
				return
			}
			if len(methods) > 0 {
				if _, ok := methods[strings.ToUpper(r.Method)]; !ok {
					next.ServeHTTP(w, r)
					return
				}
			}

			rw, ok := w.(*internal.ResponseWriter)
			if !ok {
				rw = internal.NewResponseWriter(w)
			}

			start := time.Now()

			emit := func(failed bool) {
				elapsed := time.Since(start)

				status := rw.Status()
				if !rw.Written() {
					switch {
					case failed:
						status = http.StatusInternalServerError
					case errors.Is(r.Context().Err(), context.Canceled):
						status = StatusClientClosedRequest
					}
				}

				var session map[string]any
				if cfg.SessionFunc != nil {
					session = cfg.SessionFunc(r)
				}

				atoms := newAtoms(r, rw, status, start, elapsed, session)

				log := cfg.Logger
				if log == nil {
					log = slog.Default()
				}

				attrs := make([]slog.Attr, 0, 2)
				if cfg.LoggerName != "" {
					attrs = append(attrs, slog.String(logger.LoggerKey, cfg.LoggerName))
				}
				attrs = append(attrs, slog.Any("request", atoms.Record(cfg.RecordAtoms)))

				log.LogAttrs(r.Context(), levelFor(status), atoms.Expand(cfg.Format), attrs...)
			}

			// The access line is emitted even when a panic escapes the
			// handler chain, reporting 500 unless a response went out.
			defer func() {
				if rec := recover(); rec != nil {
					emit(true)
					panic(rec)
				}
				emit(false)
			}()

			next.ServeHTTP(rw, r)
		})
	}
}

func levelFor(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// Atoms holds the gunicorn-style access log fields for one request.
// Request headers appear as "{name}i", response headers as "{name}o",
// names lowercased. Lookups for absent atoms render "-".
type Atoms map[string]any

// newAtoms captures the atom set after the handler finished.
func newAtoms(r *http.Request, rw *internal.ResponseWriter, status int, start time.Time, elapsed time.Duration, session map[string]any) Atoms {
	a := make(Atoms, len(r.Header)+32)

	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		// Last instance wins when a header repeats.
		a["{"+strings.ToLower(name)+"}i"] = values[len(values)-1]
	}
	for name, values := range rw.Header() {
		if len(values) == 0 {
			continue
		}
		value := values[len(values)-1]
		if strings.EqualFold(name, "Content-Length") {
			value = humanSize(rw.Size())
		}
		a["{"+strings.ToLower(name)+"}o"] = value
	}

	path := r.URL.Path
	fullPath := path
	if r.URL.RawQuery != "" {
		fullPath += "?" + r.URL.RawQuery
	}
	requestLine := r.Method + " " + fullPath + " " + r.Proto

	user := "-"
	if u, _, ok := r.BasicAuth(); ok && u != "" {
		user = u
	}

	seconds := elapsed.Seconds()

	a["h"] = r.RemoteAddr
	a["client_addr"] = r.RemoteAddr
	a["l"] = "-"
	a["u"] = user
	a["t"] = start.Format("[02/Jan/2006:15:04:05 -0700]")
	a["r"] = r.Method + " " + path + " " + r.Proto
	a["request_line"] = requestLine
	a["R"] = fullPath
	a["m"] = r.Method
	a["U"] = path
	a["q"] = r.URL.RawQuery
	a["H"] = r.Proto
	a["s"] = status
	a["status_code"] = fmt.Sprintf("%d %s", status, statusText(status))
	a["st"] = statusText(status)
	a["B"] = humanSize(rw.Size())
	if rw.Size() > 0 {
		a["b"] = humanSize(rw.Size())
	} else {
		a["b"] = "-"
	}
	a["f"] = headerAtom(a, "referer")
	a["a"] = headerAtom(a, "user-agent")
	a["T"] = int64(seconds)
	a["M"] = elapsed.Milliseconds()
	a["D"] = elapsed.Microseconds()
	a["L"] = fmt.Sprintf("%.6f", seconds)
	a["p"] = fmt.Sprintf("<%d>", os.Getpid())
	if session != nil {
		a["session"] = session
	}

	return a
}

// Expand renders the format string, replacing ${name} placeholders with
// atom values. Unknown names render "-".
func (a Atoms) Expand(format string) string {
	return os.Expand(format, func(name string) string {
		if v, ok := a[name]; ok {
			return atomString(v)
		}
		return "-"
	})
}

// Record selects the named atoms for the structured output. Absent
// atoms are left out rather than rendered as "-"; the message already
// covers the human-readable view.
func (a Atoms) Record(names []string) map[string]any {
	rec := make(map[string]any, len(names))
	for _, name := range names {
		if v, ok := a[name]; ok {
			rec[name] = v
		}
	}
	return rec
}

func headerAtom(a Atoms, name string) string {
	if v, ok := a["{"+name+"}i"].(string); ok {
		return v
	}
	return "-"
}

func atomString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	default:
		return fmt.Sprintf("%v", val)
	}
}

// statusText resolves the phrase for a status code, covering the 499
// extension net/http does not know about.
func statusText(status int) string {
	if text := http.StatusText(status); text != "" {
		return text
	}
	if status == StatusClientClosedRequest {
		return "Client Closed Request"
	}
	return "-"
}

// humanSize renders a byte count with binary suffixes: "11.00 bytes",
// "1.50 KiB".
func humanSize(n int64) string {
	const unit = 1024
	suffixes := []string{"bytes", "KiB", "MiB", "GiB", "TiB", "PiB"}

	size := float64(n)
	order := 0
	for size >= unit && order < len(suffixes)-1 {
		size /= unit
		order++
	}
	return fmt.Sprintf("%.2f %s", size, suffixes[order])
}
