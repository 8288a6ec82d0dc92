// Package logger provides the process-wide structured logger.
//
// JSON encoding for production, console for development. The level can be
// changed at runtime through the AtomicLevel.
package logger

import (
	"fmt"
	"log"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu          sync.RWMutex
	global      *zap.Logger
	atomicLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// Init builds the global logger.
// level: debug, info, warn, error
// format: json or console
func Init(level, format string) error {
	if err := atomicLevel.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("parse log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "console":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	case "json", "":
		cfg = zap.NewProductionConfig()
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = atomicLevel

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	mu.Lock()
	global = l
	mu.Unlock()
	return nil
}

// Set replaces the global logger. Tests use it with zaptest/observer loggers.
func Set(l *zap.Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// L returns the global logger, or a no-op logger before Init.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if global == nil {
		return zap.NewNop()
	}
	return global
}

// SetLevel changes the log level at runtime.
func SetLevel(level string) error {
	return atomicLevel.UnmarshalText([]byte(level))
}

// Level returns the current log level.
func Level() zapcore.Level {
	return atomicLevel.Level()
}

// StdLog adapts the global logger for libraries that want a *log.Logger.
func StdLog(level zapcore.Level) *log.Logger {
	l, err := zap.NewStdLogAt(L(), level)
	if err != nil {
		return zap.NewStdLog(L())
	}
	return l
}

// Sync flushes any buffered log entries.
func Sync() error {
	return L().Sync()
}
