package internal

import (
	"log"
	"os"
	"strings"
)

// LogLevel orders logging verbosity from quietest to noisiest
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// ParseLevel reads a LOG_LEVEL value. Unknown names mean INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	default:
		return LogLevelInfo
	}
}

// Logger gates output by verbosity while keeping the [Component] prefix
// convention. Most components log unconditionally; the chatty ones route
// per-item tracing through a Logger so it stays out of production output.
type Logger struct {
	level  LogLevel
	prefix string
}

// NewLogger creates a logger for one component at a fixed level
func NewLogger(component string, level LogLevel) *Logger {
	return &Logger{level: level, prefix: "[" + component + "] "}
}

// NewDefaultLogger creates a component logger at the LOG_LEVEL env level
func NewDefaultLogger(component string) *Logger {
	return NewLogger(component, ParseLevel(os.Getenv("LOG_LEVEL")))
}

// Error logs unconditionally
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		log.Printf(l.prefix+format, args...)
	}
}

// Warn logs at WARN and above
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.level >= LogLevelWarn {
		log.Printf(l.prefix+format, args...)
	}
}

// Info logs at INFO and above
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		log.Printf(l.prefix+format, args...)
	}
}

// Debug logs only at DEBUG
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		log.Printf(l.prefix+format, args...)
	}
}
