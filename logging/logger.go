// Package logging writes leveled JSON lines for the server and its request log.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log severities.
type Level int8

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = [...]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

// String returns the upper-case level name.
func (l Level) String() string {
	if l >= DEBUG && int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "UNKNOWN"
}

// ParseLevel maps a level name onto a Level. Unknown names mean INFO.
func ParseLevel(raw string) Level {
	name := strings.ToUpper(strings.TrimSpace(raw))
	if name == "WARNING" {
		return WARN
	}
	for i, candidate := range levelNames {
		if candidate == name {
			return Level(i)
		}
	}
	return INFO
}

// Entry is one JSON log line.
type Entry struct {
	Time       time.Time      `json:"time"`
	Level      string         `json:"level"`
	Service    string         `json:"service,omitempty"`
	Category   string         `json:"category,omitempty"`
	Message    string         `json:"msg"`
	RequestID  string         `json:"request_id,omitempty"`
	DurationMS *int64         `json:"duration_ms,omitempty"`
	Err        string         `json:"error,omitempty"`
	Fields     map[string]any `json:"fields,omitempty"`
}

// Logger serialises entries to every attached output. Lines from concurrent
// callers never interleave.
type Logger struct {
	service string
	min     Level
	clock   func() time.Time

	mu      sync.Mutex
	outputs []io.Writer
}

// New returns a Logger tagging entries with service. Without outputs it
// writes to stdout.
func New(service string, min Level, outputs ...io.Writer) *Logger {
	if len(outputs) == 0 {
		outputs = []io.Writer{os.Stdout}
	}
	return &Logger{
		service: service,
		min:     min,
		clock:   func() time.Time { return time.Now().UTC() },
		outputs: outputs,
	}
}

// Discard returns a Logger that drops everything.
func Discard() *Logger {
	return New("", FATAL+1, io.Discard)
}

// AddWriter attaches another output such as a rotating file.
func (l *Logger) AddWriter(w io.Writer) {
	if w == nil {
		return
	}
	l.mu.Lock()
	l.outputs = append(l.outputs, w)
	l.mu.Unlock()
}

// Enabled reports whether entries at level are written.
func (l *Logger) Enabled(level Level) bool {
	return l != nil && level >= l.min
}

// Debug logs message at DEBUG under category.
func (l *Logger) Debug(category, message string, fields map[string]any) {
	l.emit(Entry{Level: DEBUG.String(), Category: category, Message: message, Fields: fields})
}

// Info logs message at INFO under category.
func (l *Logger) Info(category, message string, fields map[string]any) {
	l.emit(Entry{Level: INFO.String(), Category: category, Message: message, Fields: fields})
}

// Warn logs message at WARN under category.
func (l *Logger) Warn(category, message string, fields map[string]any) {
	l.emit(Entry{Level: WARN.String(), Category: category, Message: message, Fields: fields})
}

// Error logs message at ERROR under category with err attached.
func (l *Logger) Error(category, message string, err error, fields map[string]any) {
	l.emit(Entry{Level: ERROR.String(), Category: category, Message: message, Err: errString(err), Fields: fields})
}

func (l *Logger) emit(entry Entry) {
	if !l.Enabled(ParseLevel(entry.Level)) {
		return
	}
	if entry.Time.IsZero() {
		entry.Time = l.clock()
	}
	entry.Service = l.service
	line, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging: encode entry %q: %v\n", entry.Message, err)
		return
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, out := range l.outputs {
		_, _ = out.Write(line)
	}
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// Scope is a Logger bound to one request. Each With call returns a new Scope
// so a shared parent is never mutated.
type Scope struct {
	logger *Logger
	base   Entry
}

// WithRequestID starts a Scope for requestID.
func (l *Logger) WithRequestID(requestID string) *Scope {
	return &Scope{logger: l, base: Entry{RequestID: requestID}}
}

// WithCategory returns a copy of the scope logging under category.
func (s *Scope) WithCategory(category string) *Scope {
	next := *s
	next.base.Category = category
	return &next
}

// WithField returns a copy of the scope with key set to value.
func (s *Scope) WithField(key string, value any) *Scope {
	next := *s
	next.base.Fields = maps.Clone(s.base.Fields)
	if next.base.Fields == nil {
		next.base.Fields = make(map[string]any, 1)
	}
	next.base.Fields[key] = value
	return &next
}

// Info logs message at INFO with the scope's request ID and fields.
func (s *Scope) Info(message string) { s.log(INFO, message, nil) }

// Warn logs message at WARN with the scope's request ID and fields.
func (s *Scope) Warn(message string) { s.log(WARN, message, nil) }

// Error logs message at ERROR with err and the scope's request ID and fields.
func (s *Scope) Error(message string, err error) { s.log(ERROR, message, err) }

func (s *Scope) log(level Level, message string, err error) {
	entry := s.base
	entry.Level = level.String()
	entry.Message = message
	entry.Err = errString(err)
	s.logger.emit(entry)
}
