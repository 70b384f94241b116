// Package common provides shared utilities for findigest
package common

import (
	"strings"

	"github.com/ternarybob/arbor"
	arbormodels "github.com/ternarybob/arbor/models"
)

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

// NewLogger creates a console logger with the specified level
func NewLogger(level string) *Logger {
	logger := arbor.NewLogger().WithConsoleWriter(arbormodels.WriterConfiguration{
		Type:             arbormodels.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		TextOutput:       true,
		DisableTimestamp: false,
	})

	return &Logger{ILogger: logger.WithLevelFromString(normalizeLevel(level))}
}

// NewLoggerFromConfig creates a logger from the logging section of the config.
// Only console output is supported; other outputs are ignored.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	for _, out := range cfg.Outputs {
		if out == "console" || out == "stdout" {
			return NewLogger(cfg.Level)
		}
	}
	return NewSilentLogger()
}

// NewDefaultLogger creates a logger with default settings
func NewDefaultLogger() *Logger {
	return NewLogger("info")
}

// NewSilentLogger creates a logger that discards all output
func NewSilentLogger() *Logger {
	return &Logger{ILogger: arbor.NewNoOpLogger()}
}

// WithCorrelationID returns a child logger tagging every event with id.
func (l *Logger) WithCorrelationID(id string) *Logger {
	if id == "" {
		return l
	}
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}

func normalizeLevel(level string) string {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "error":
		return strings.ToLower(strings.TrimSpace(level))
	case "warning":
		return "warn"
	default:
		return "info"
	}
}
