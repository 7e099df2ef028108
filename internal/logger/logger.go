package logger

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"
)

var root = hclog.New(&hclog.LoggerOptions{
	Name:   "diskexplorer",
	Level:  hclog.Info,
	Output: os.Stderr,
})

// SetLevel adjusts the process-wide log level ("debug", "info", "warn",
// "error"). Unknown values fall back to info.
func SetLevel(level string) {
	parsed := hclog.LevelFromString(level)
	if parsed == hclog.NoLevel {
		parsed = hclog.Info
	}
	root.SetLevel(parsed)
}

// Named returns a sub-logger scoped to a component name.
func Named(name string) hclog.Logger {
	return root.Named(name)
}

// Info logs informational messages
func Info(format string, args ...interface{}) {
	root.Info(fmt.Sprintf(format, args...))
}

// Warn logs warning messages
func Warn(format string, args ...interface{}) {
	root.Warn(fmt.Sprintf(format, args...))
}

// Error logs error messages
func Error(format string, args ...interface{}) {
	root.Error(fmt.Sprintf(format, args...))
}

// Debug logs debug messages
func Debug(format string, args ...interface{}) {
	root.Debug(fmt.Sprintf(format, args...))
}
