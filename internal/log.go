package internal

import (
	"log"
	"os"
)

// LogLevel controls logging verbosity.
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelInfo
	LogLevelDebug
)

// Logger provides leveled logging with a component prefix. Adapters log
// through the standard logger directly; the CLI uses this to gate per-trial
// debug output behind GOLLH_LOG_LEVEL.
type Logger struct {
	component string
	level     LogLevel
}

// NewLogger creates a logger for one component at an explicit level.
func NewLogger(component string, level LogLevel) *Logger {
	return &Logger{component: component, level: level}
}

// NewDefaultLogger creates a component logger whose level comes from the
// GOLLH_LOG_LEVEL environment variable (ERROR, INFO or DEBUG; default INFO).
func NewDefaultLogger(component string) *Logger {
	level := LogLevelInfo
	switch os.Getenv("GOLLH_LOG_LEVEL") {
	case "ERROR":
		level = LogLevelError
	case "DEBUG":
		level = LogLevelDebug
	}
	return &Logger{component: component, level: level}
}

// Error logs error messages.
func (l *Logger) Error(format string, args ...interface{}) {
	if l.level >= LogLevelError {
		log.Printf("["+l.component+"] ERROR "+format, args...)
	}
}

// Info logs informational messages.
func (l *Logger) Info(format string, args ...interface{}) {
	if l.level >= LogLevelInfo {
		log.Printf("["+l.component+"] "+format, args...)
	}
}

// Debug logs verbose diagnostics.
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.level >= LogLevelDebug {
		log.Printf("["+l.component+"] DEBUG "+format, args...)
	}
}

// GetLevel returns the configured level.
func (l *Logger) GetLevel() LogLevel {
	return l.level
}
