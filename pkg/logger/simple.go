package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// SimpleLogger provides a basic structured logger implementation
type SimpleLogger struct {
	level  LogLevel
	format Format
	fields map[string]interface{}
	out    *syncWriter
	now    func() time.Time
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) write(line []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.w.Write(line)
}

// Option configures a SimpleLogger
type Option func(*SimpleLogger)

// WithWriter sends log lines to w instead of stderr
func WithWriter(w io.Writer) Option {
	return func(l *SimpleLogger) {
		l.out = &syncWriter{w: w}
	}
}

// WithFormat selects text or json output
func WithFormat(format string) Option {
	return func(l *SimpleLogger) {
		if strings.EqualFold(format, string(FormatJSON)) {
			l.format = FormatJSON
		} else {
			l.format = FormatText
		}
	}
}

// WithLevel sets the minimum level
func WithLevel(level string) Option {
	return func(l *SimpleLogger) {
		l.SetLevel(level)
	}
}

// WithClock overrides the timestamp source
func WithClock(now func() time.Time) Option {
	return func(l *SimpleLogger) {
		l.now = now
	}
}

// NewSimpleLogger creates a new simple logger
func NewSimpleLogger(opts ...Option) *SimpleLogger {
	l := &SimpleLogger{
		level:  InfoLevel,
		format: FormatText,
		fields: make(map[string]interface{}),
		out:    &syncWriter{w: os.Stderr},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewDefaultLogger creates a logger configured from LOG_LEVEL and LOG_FORMAT
func NewDefaultLogger() Logger {
	return NewSimpleLogger(WithLevel(GetLogLevel()), WithFormat(GetLogFormat()))
}

// NewNopLogger returns a logger that discards everything
func NewNopLogger() Logger {
	return NewSimpleLogger(WithWriter(io.Discard), WithLevel("ERROR"))
}

// Debug logs a debug message
func (l *SimpleLogger) Debug(msg string, fields ...interface{}) {
	if l.level <= DebugLevel {
		l.log(DebugLevel, msg, fields...)
	}
}

// Info logs an info message
func (l *SimpleLogger) Info(msg string, fields ...interface{}) {
	if l.level <= InfoLevel {
		l.log(InfoLevel, msg, fields...)
	}
}

// Warn logs a warning message
func (l *SimpleLogger) Warn(msg string, fields ...interface{}) {
	if l.level <= WarnLevel {
		l.log(WarnLevel, msg, fields...)
	}
}

// Error logs an error message
func (l *SimpleLogger) Error(msg string, fields ...interface{}) {
	if l.level <= ErrorLevel {
		l.log(ErrorLevel, msg, fields...)
	}
}

// SetLevel sets the logging level
func (l *SimpleLogger) SetLevel(level string) {
	switch strings.ToUpper(level) {
	case "DEBUG":
		l.level = DebugLevel
	case "INFO":
		l.level = InfoLevel
	case "WARN", "WARNING":
		l.level = WarnLevel
	case "ERROR":
		l.level = ErrorLevel
	}
}

// Level returns the current minimum level
func (l *SimpleLogger) Level() LogLevel {
	return l.level
}

// WithField returns a logger with an additional field
func (l *SimpleLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// WithFields returns a logger with additional fields
func (l *SimpleLogger) WithFields(fields map[string]interface{}) Logger {
	newFields := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &SimpleLogger{
		level:  l.level,
		format: l.format,
		fields: newFields,
		out:    l.out,
		now:    l.now,
	}
}

// With returns a logger with additional fields
func (l *SimpleLogger) With(fields ...Field) Logger {
	m := make(map[string]interface{}, len(fields))
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	return l.WithFields(m)
}

// collectFields accepts maps, Field values and alternating key/value pairs.
func collectFields(base map[string]interface{}, args []interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(base)+len(args))
	for k, v := range base {
		out[k] = v
	}
	for i := 0; i < len(args); i++ {
		switch a := args[i].(type) {
		case map[string]interface{}:
			for k, v := range a {
				out[k] = v
			}
		case Field:
			out[a.Key] = a.Value
		case nil:
		default:
			if i+1 < len(args) {
				out[fmt.Sprint(a)] = args[i+1]
				i++
			}
		}
	}
	return out
}

// log performs the actual logging
func (l *SimpleLogger) log(level LogLevel, msg string, fields ...interface{}) {
	all := collectFields(l.fields, fields)
	ts := l.now().UTC().Format(time.RFC3339)

	if l.format == FormatJSON {
		entry := make(map[string]interface{}, len(all)+3)
		for k, v := range all {
			if err, ok := v.(error); ok {
				v = err.Error()
			}
			entry[k] = v
		}
		entry["time"] = ts
		entry["level"] = level.String()
		entry["msg"] = msg
		line, err := json.Marshal(entry)
		if err != nil {
			line = []byte(fmt.Sprintf(`{"level":"ERROR","msg":"log marshal failed: %s"}`, err))
		}
		l.out.write(append(line, '\n'))
		return
	}

	keys := make([]string, 0, len(all))
	for k := range all {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := []string{ts, fmt.Sprintf("[%s]", level), msg}
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, all[k]))
	}
	l.out.write([]byte(strings.Join(parts, " ") + "\n"))
}

// GetLogLevel gets the current log level from environment
func GetLogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "INFO"
	}
	return level
}

// GetLogFormat gets the output format from environment
func GetLogFormat() string {
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		return string(FormatText)
	}
	return format
}
