// Package logging configures the charmbracelet/log loggers used by astnav.
// Engine packages take a logger through their options; the CLI builds one
// per run and carries it on the context.
package logging

import (
	"io"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/log"
)

var levels = map[string]log.Level{
	"debug":   log.DebugLevel,
	"info":    log.InfoLevel,
	"warn":    log.WarnLevel,
	"warning": log.WarnLevel,
	"error":   log.ErrorLevel,
}

var defaultLogger atomic.Pointer[log.Logger]

// ParseLevel maps a configured level name to a log level, ignoring case.
func ParseLevel(name string) (log.Level, bool) {
	level, ok := levels[strings.ToLower(name)]
	return level, ok
}

// ValidLevel reports whether name is a level ParseLevel understands.
func ValidLevel(name string) bool {
	_, ok := ParseLevel(name)
	return ok
}

// New returns a plain stderr logger at level. Unknown levels mean info.
func New(level string) *log.Logger {
	logger := log.New(os.Stderr)
	setLevel(logger, level)
	return logger
}

// NewInteractive returns an info-level stderr logger for terminals, with
// short timestamps and an "astnav" prefix.
func NewInteractive() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "astnav",
		Level:           log.InfoLevel,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// Default returns the process-wide logger, creating it at info level on
// first use.
func Default() *log.Logger {
	if logger := defaultLogger.Load(); logger != nil {
		return logger
	}
	defaultLogger.CompareAndSwap(nil, New("info"))
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger.
func SetDefault(logger *log.Logger) {
	defaultLogger.Store(logger)
}

// SetLevel changes the level of the process-wide logger.
func SetLevel(level string) {
	setLevel(Default(), level)
}

func setLevel(logger *log.Logger, name string) {
	level, ok := ParseLevel(name)
	if !ok {
		level = log.InfoLevel
	}
	logger.SetLevel(level)
}
