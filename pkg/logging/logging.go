// Package logging provides leveled, structured JSON logging for the
// analysis engine. Output is one JSON object per line with a
// timestamp, level, message, and any attached fields.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	}
	return "UNKNOWN"
}

// ParseLevel converts a level name to a Level, defaulting to info.
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DebugLevel
	case "WARN", "warn", "WARNING", "warning":
		return WarnLevel
	case "ERROR", "error":
		return ErrorLevel
	}
	return InfoLevel
}

// Field is a key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value any
}

// Logger is the structured logging interface the engine components
// accept.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
}

type entry struct {
	Time    string         `json:"time"`
	Level   string         `json:"level"`
	Message string         `json:"msg"`
	Fields  map[string]any `json:"fields,omitempty"`
}

// JSONLogger writes one JSON entry per line to a writer.
type JSONLogger struct {
	mu     sync.Mutex
	writer io.Writer
	level  Level
	preset []Field
}

// New creates a JSONLogger writing to w at the given minimum level.
func New(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{writer: w, level: level}
}

// NewDefault creates a logger writing to stderr, honoring the
// PUNGSU_LOG_LEVEL environment variable.
func NewDefault() *JSONLogger {
	return New(os.Stderr, ParseLevel(os.Getenv("PUNGSU_LOG_LEVEL")))
}

func (l *JSONLogger) log(level Level, msg string, fields []Field) {
	if level < l.level {
		return
	}

	fieldMap := make(map[string]any, len(l.preset)+len(fields))
	for _, f := range l.preset {
		fieldMap[f.Key] = f.Value
	}
	for _, f := range fields {
		fieldMap[f.Key] = f.Value
	}

	e := entry{
		Time:    time.Now().Format(time.RFC3339Nano),
		Level:   level.String(),
		Message: msg,
	}
	if len(fieldMap) > 0 {
		e.Fields = fieldMap
	}

	data, err := json.Marshal(e)
	if err != nil {
		l.mu.Lock()
		defer l.mu.Unlock()
		fmt.Fprintf(l.writer, `{"level":"ERROR","msg":"log marshal failed: %v"}`+"\n", err)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer.Write(data)
	l.writer.Write([]byte("\n"))
}

func (l *JSONLogger) Debug(msg string, fields ...Field) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(ErrorLevel, msg, fields) }

// With returns a child logger with the fields pre-attached.
func (l *JSONLogger) With(fields ...Field) Logger {
	preset := make([]Field, 0, len(l.preset)+len(fields))
	preset = append(preset, l.preset...)
	preset = append(preset, fields...)
	return &JSONLogger{writer: l.writer, level: l.level, preset: preset}
}

// Nop is a Logger that discards everything. Useful as a default in
// components whose caller did not supply a logger.
type Nop struct{}

func (Nop) Debug(string, ...Field) {}
func (Nop) Info(string, ...Field)  {}
func (Nop) Warn(string, ...Field)  {}
func (Nop) Error(string, ...Field) {}
func (n Nop) With(...Field) Logger { return n }
