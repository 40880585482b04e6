// Package slogger is the process-wide logging facade. Until Configure or SetGlobalLogger
// runs, it writes JSON at INFO level to stderr.
package slogger

import (
	"context"
	"sync/atomic"

	"chatledger/internal/application/common/logging"
)

// Fields is an alias for logging.Fields for convenience.
type Fields = logging.Fields

type loggerHolder struct {
	logger logging.ApplicationLogger
}

var current atomic.Pointer[loggerHolder] //nolint:gochecknoglobals // process-wide logger

// getLogger returns the installed logger, creating the default one on first use.
func getLogger() logging.ApplicationLogger {
	if holder := current.Load(); holder != nil {
		return holder.logger
	}

	logger, err := logging.NewApplicationLogger(logging.DefaultConfig())
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	current.CompareAndSwap(nil, &loggerHolder{logger: logger})
	return current.Load().logger
}

// SetGlobalLogger replaces the process-wide logger (useful for testing).
func SetGlobalLogger(logger logging.ApplicationLogger) {
	current.Store(&loggerHolder{logger: logger})
}

// Configure replaces the global logger with one using the given level and format.
// Log output goes to stderr so that stdout stays free for command output.
func Configure(level, format string) error {
	logger, err := logging.NewApplicationLogger(logging.Config{
		Level:  level,
		Format: format,
		Output: "stderr",
	})
	if err != nil {
		return err
	}
	SetGlobalLogger(logger)
	return nil
}

// Debug logs a debug message with context.
func Debug(ctx context.Context, msg string, fields Fields) {
	getLogger().Debug(ctx, msg, fields)
}

// Info logs an info message with context.
func Info(ctx context.Context, msg string, fields Fields) {
	getLogger().Info(ctx, msg, fields)
}

// Warn logs a warning message with context.
func Warn(ctx context.Context, msg string, fields Fields) {
	getLogger().Warn(ctx, msg, fields)
}

// ErrorWithError logs an error message with an error object and context.
func ErrorWithError(ctx context.Context, err error, msg string, fields Fields) {
	getLogger().ErrorWithError(ctx, err, msg, fields)
}

// WarnNoCtx logs a warning message without context.
func WarnNoCtx(msg string, fields Fields) {
	getLogger().Warn(context.Background(), msg, fields)
}

// Field creates a single-field Fields map.
func Field(key string, value interface{}) Fields {
	return Fields{key: value}
}

// Fields2 creates a Fields map with two key-value pairs.
func Fields2(k1 string, v1 interface{}, k2 string, v2 interface{}) Fields {
	return Fields{k1: v1, k2: v2}
}

// Fields3 creates a Fields map with three key-value pairs.
func Fields3(k1 string, v1 interface{}, k2 string, v2 interface{}, k3 string, v3 interface{}) Fields {
	return Fields{k1: v1, k2: v2, k3: v3}
}

// WithComponent returns a logger with a specific component name.
func WithComponent(component string) logging.ApplicationLogger {
	return getLogger().WithComponent(component)
}
