// Package log defines the logging interface used throughout composer along
// with a slog-backed implementation for the command line.
package log

import (
	"context"
	"strings"
)

type contextKey string

const loggerKey contextKey = "composer.logger"

var defaultLevel = LevelWarn

// SetDefaultLevel sets the level used by loggers created implicitly, for
// example by Ctx when the context carries no logger.
func SetDefaultLevel(level Level) {
	defaultLevel = level
}

// GetDefaultLevel returns the level used by implicitly created loggers.
func GetDefaultLevel() Level {
	return defaultLevel
}

// Logger is the logging interface accepted by every composer package. It
// mirrors the slog method set so adapters for other libraries stay trivial.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// With returns a Logger that includes the given attributes in each
	// output operation.
	With(args ...any) Logger
}

// WithLogger returns a new context carrying the given logger.
func WithLogger(ctx context.Context, logger Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, loggerKey, logger)
}

// Ctx returns the logger stored in the context, or a new structured logger
// at the default level when none is present.
func Ctx(ctx context.Context) Logger {
	if ctx == nil {
		return New(defaultLevel)
	}
	logger, ok := ctx.Value(loggerKey).(Logger)
	if !ok {
		return New(defaultLevel)
	}
	return logger
}

// LevelFromString converts a level name to a Level. Unknown names map to the
// default level.
func LevelFromString(value string) Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return defaultLevel
	}
}

// OrNull returns logger, or a NullLogger when logger is nil.
func OrNull(logger Logger) Logger {
	if logger == nil {
		return NewNullLogger()
	}
	return logger
}
