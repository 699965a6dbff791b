// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

/*
Package logging provides structured logging for reconf.

The Logger wraps slog and writes human-readable text (or JSON with
--json) to stderr. It is constructed once at startup and passed to
components as an explicit dependency; there is no package-level
mutable logger.

# Basic Usage

	logger := logging.New(logging.Config{
	    Level:   logging.LevelInfo,
	    Service: "cli",
	})

	logger.Info("rules loaded", "count", len(rules))

# Child Loggers

Use With to attach context that should appear on every entry:

	runLogger := logger.With("batch_id", batch.ID)
	runLogger.Info("rollback complete")
*/
package logging

import (
	"io"
	"log/slog"
	"os"
)

// =============================================================================
// Log Levels
// =============================================================================

// Level represents log severity levels.
//
// Levels follow the slog convention and are ordered by severity:
// Debug < Info < Warn < Error
//
// Setting a minimum level filters out all logs below that level.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations.
	LevelWarn

	// LevelError is for error conditions.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// toSlogLevel converts our Level to slog.Level.
func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// =============================================================================
// Configuration
// =============================================================================

// Config configures the Logger behavior.
//
// All fields have sensible defaults. A zero-value Config creates
// a logger that writes Info+ messages to stderr in text format.
type Config struct {
	// Level sets the minimum log level.
	//
	// Messages below this level are discarded.
	// Default: LevelInfo
	Level Level

	// Service identifies the component generating logs.
	//
	// Included in every entry as the "service" attribute.
	// Default: "" (no service attribute)
	Service string

	// JSON enables JSON output instead of text.
	//
	// Default: false (text format)
	JSON bool

	// Quiet discards all log output.
	//
	// Default: false
	Quiet bool

	// Output is the destination for log entries.
	//
	// Default: nil (os.Stderr)
	Output io.Writer
}

// =============================================================================
// Logger
// =============================================================================

// Logger provides structured logging on top of slog.
//
// # Thread Safety
//
// Logger is safe for concurrent use from multiple goroutines.
type Logger struct {
	slog *slog.Logger
}

// New creates a new Logger with the given configuration.
func New(config Config) *Logger {
	out := config.Output
	if out == nil {
		out = os.Stderr
	}
	if config.Quiet {
		out = io.Discard
	}

	opts := &slog.HandlerOptions{
		Level: config.Level.toSlogLevel(),
	}

	var handler slog.Handler
	if config.JSON {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	if config.Service != "" {
		handler = handler.WithAttrs([]slog.Attr{
			slog.String("service", config.Service),
		})
	}

	return &Logger{slog: slog.New(handler)}
}

// Default returns a logger with default settings: Info level, text
// format on stderr, service "reconf".
func Default() *Logger {
	return New(Config{
		Level:   LevelInfo,
		Service: "reconf",
	})
}

// Debug logs a message at Debug level.
func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

// Info logs a message at Info level.
func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs a message at Warn level.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
}

// Error logs a message at Error level.
//
// For fatal errors that should terminate the program, use Error()
// followed by os.Exit().
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
}

// With returns a new Logger with additional attributes.
//
// The returned logger includes all attributes from the parent plus
// the new ones. The parent logger is not modified.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

// Slog returns the underlying slog.Logger.
//
// This is the handle passed to components that take a *slog.Logger
// dependency.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}
