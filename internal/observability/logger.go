// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package observability builds the zerolog logger and the prometheus metrics
// used during a resolution run.
package observability

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LoggingConfig contains logger configuration options.
type LoggingConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string

	// Format is "console" for human-readable lines or "json".
	Format string

	// Output is "stderr" (default) or "stdout". Stdout is reserved for the
	// record itself, so logs go to stderr unless asked otherwise.
	Output string
}

// DefaultLoggingConfig returns console logging at info level on stderr.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{Level: "info", Format: "console", Output: "stderr"}
}

// NewLogger creates a zerolog logger from cfg.
func NewLogger(cfg LoggingConfig) zerolog.Logger {
	var out io.Writer = os.Stderr
	if strings.EqualFold(cfg.Output, "stdout") {
		out = os.Stdout
	}
	return NewLoggerTo(out, cfg)
}

// NewLoggerTo creates a zerolog logger writing to w.
func NewLoggerTo(w io.Writer, cfg LoggingConfig) zerolog.Logger {
	if f := strings.ToLower(cfg.Format); f == "console" || f == "pretty" || f == "" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}
	return zerolog.New(w).With().Timestamp().Logger().Level(ParseLevel(cfg.Level))
}

// ParseLevel converts a string log level to zerolog.Level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithRun adds the run ID and raw input to a logger.
func WithRun(logger zerolog.Logger, runID, input string) zerolog.Logger {
	return logger.With().
		Str("run_id", runID).
		Str("input", input).
		Logger()
}
