// Package logger provides structured JSON logging and metrics tracking for dfbnet-assist.
//
// Every log line is a single JSON object carrying a timestamp, level, message and an
// optional set of structured fields. Loggers can be derived with With to attach fields
// (for example the component name) to every line they emit.
//
// Metrics tracks counters and timings for the extraction and fill pipelines, so the
// HTTP API and verbose CLI output can report how many rows were kept, how many
// referees were filled and how long each step took.
//
// Example usage:
//
//	log := logger.Default().With(logger.Fields{"component": "extract"})
//	log.Warn("Results header missing", logger.Fields{"column": "status"})
//
//	logger.IncrCounter("extract.rows_kept")
//	logger.RecordTiming("report.fill", time.Since(start))
package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

var levelRank = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// ParseLevel maps a case-insensitive level name to a Level.
// Unknown or empty names return LevelInfo and false.
func ParseLevel(name string) (Level, bool) {
	lvl := Level(strings.ToUpper(strings.TrimSpace(name)))
	if lvl == "WARNING" {
		lvl = LevelWarn
	}
	if _, ok := levelRank[lvl]; !ok {
		return LevelInfo, false
	}
	return lvl, true
}

// Fields represents structured log fields
type Fields map[string]interface{}

// LogEntry represents a single log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// sink serializes writes from a logger and all loggers derived from it.
type sink struct {
	mu  sync.Mutex
	out io.Writer
}

// Logger provides structured logging
type Logger struct {
	minLevel Level
	sink     *sink
	base     Fields
	now      func() time.Time
}

var (
	defaultMu     sync.RWMutex
	defaultLogger = New(LevelInfo, os.Stderr)
)

// New creates a logger writing JSON lines to out.
// Messages below level are discarded.
func New(level Level, out io.Writer) *Logger {
	if _, ok := levelRank[level]; !ok {
		level = LevelInfo
	}
	return &Logger{
		minLevel: level,
		sink:     &sink{out: out},
		now:      time.Now,
	}
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *Logger {
	return New(LevelError, io.Discard)
}

// Default returns the package-level logger.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// SetDefault replaces the package-level logger used by Debug, Info, Warn and Error.
func SetDefault(l *Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// With returns a child logger that adds fields to every entry.
// Per-call fields win over inherited ones on key collisions.
func (l *Logger) With(fields Fields) *Logger {
	merged := make(Fields, len(l.base)+len(fields))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{
		minLevel: l.minLevel,
		sink:     l.sink,
		base:     merged,
		now:      l.now,
	}
}

// Enabled reports whether messages at level would be written.
func (l *Logger) Enabled(level Level) bool {
	return levelRank[level] >= levelRank[l.minLevel]
}

func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.Enabled(level) {
		return
	}

	entry := LogEntry{
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Level:     string(level),
		Message:   message,
		Fields:    l.merge(fields),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)

	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	if marshalErr != nil {
		// Fields held something json can't encode; keep the message at least.
		fmt.Fprintf(l.sink.out, "[%s] %s: %s (marshal error: %v)\n",
			entry.Timestamp, entry.Level, entry.Message, marshalErr)
		return
	}
	fmt.Fprintln(l.sink.out, string(data))
}

func (l *Logger) merge(fields Fields) Fields {
	if len(l.base) == 0 {
		return fields
	}
	if len(fields) == 0 {
		return l.base
	}
	merged := make(Fields, len(l.base)+len(fields))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return merged
}

// Debug logs detailed diagnostic information.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs general operational information.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a condition that was handled but is worth knowing about,
// such as a skipped automation step or a fallback to defaults.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs a failure together with the error that caused it.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	Default().Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	Default().Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	Default().Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	Default().Error(message, fields, err)
}
