// Package logger provides logging implementations for DocChunk
package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/docchunk/docchunk/pkg/interfaces"
)

// ZapLogger implements interfaces.Logger on top of a zap core
type ZapLogger struct {
	zl *zap.Logger
}

// Debug logs debug level messages
func (l *ZapLogger) Debug(msg string, fields ...map[string]interface{}) {
	l.zl.Debug(msg, collectFields(nil, fields...)...)
}

// Info logs info level messages
func (l *ZapLogger) Info(msg string, fields ...map[string]interface{}) {
	l.zl.Info(msg, collectFields(nil, fields...)...)
}

// Warn logs warning level messages
func (l *ZapLogger) Warn(msg string, fields ...map[string]interface{}) {
	l.zl.Warn(msg, collectFields(nil, fields...)...)
}

// Error logs error level messages
func (l *ZapLogger) Error(msg string, err error, fields ...map[string]interface{}) {
	l.zl.Error(msg, collectFields(err, fields...)...)
}

// Fatal logs fatal level messages and exits
func (l *ZapLogger) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.zl.Fatal(msg, collectFields(err, fields...)...)
}

// WithFields returns a logger with additional fields
func (l *ZapLogger) WithFields(fields map[string]interface{}) interfaces.Logger {
	return &ZapLogger{zl: l.zl.With(collectFields(nil, fields)...)}
}

// collectFields flattens variadic field maps into zap fields, error first
// when present
func collectFields(err error, fields ...map[string]interface{}) []zap.Field {
	out := make([]zap.Field, 0, len(fields)*4+1)
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			out = append(out, zap.Any(key, value))
		}
	}
	return out
}

// NewConsoleLogger creates a new console logger
func NewConsoleLogger(level string) interfaces.Logger {
	cfg := zap.NewDevelopmentConfig()
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(parsed)
	}
	zl, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		zl = zap.NewNop()
	}
	return &ZapLogger{zl: zl}
}

// NewTestLogger creates a logger for testing
func NewTestLogger() interfaces.Logger {
	return NewConsoleLogger("debug")
}

// NewLogger creates a new logger with default settings
func NewLogger() interfaces.Logger {
	return NewConsoleLogger("info")
}

// NewNopLogger creates a logger that discards all output
func NewNopLogger() interfaces.Logger {
	return &ZapLogger{zl: zap.NewNop()}
}
