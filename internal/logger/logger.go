package logger

import (
	"sync"
)

// Log levels used across the application.
const (
	DebugLevel = "debug"
	InfoLevel  = "info"
	WarnLevel  = "warn"
	ErrorLevel = "error"
)

// Output formats.
const (
	ConsoleFormat = "console"
	JSONFormat    = "json"
)

var (
	// globalLogger holds the process-wide logger used by cmd.
	globalLogger *Logger
	once         sync.Once
)

// Get returns the process-wide logger configured with the provided level and
// format. The first call initializes it; later calls return the same instance.
func Get(level string, format ...string) *Logger {
	once.Do(func() {
		f := ConsoleFormat
		if len(format) > 0 {
			f = format[0]
		}
		globalLogger = New(level, f)
	})
	return globalLogger
}
