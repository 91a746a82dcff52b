package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu     sync.RWMutex
	global = zap.NewNop()
)

// Init replaces the global logger. level is one of debug, info, warn, error.
func Init(level string, asJSON bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("logger.Init: %w", err)
	}

	cfg := zap.NewProductionConfig()
	if !asJSON {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = lvl > zapcore.DebugLevel

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("logger.Init: %w", err)
	}

	Set(l)
	return nil
}

// Set installs l as the global logger.
func Set(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	global = l
}

// L returns the global logger.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return global
}

type ctxKey struct{}

// WithFields returns a context whose log lines carry fields.
func WithFields(ctx context.Context, fields ...Field) context.Context {
	return context.WithValue(ctx, ctxKey{}, append(fieldsFrom(ctx), fields...))
}

func fieldsFrom(ctx context.Context) []Field {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(ctxKey{}).([]Field)
	return fields[:len(fields):len(fields)]
}

func logAt(ctx context.Context, lvl zapcore.Level, msg string, fields []Field) {
	l := L()
	if ce := l.Check(lvl, msg); ce != nil {
		ce.Write(append(fieldsFrom(ctx), fields...)...)
	}
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	logAt(ctx, LevelDebug, msg, fields)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	logAt(ctx, LevelInfo, msg, fields)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	logAt(ctx, LevelWarn, msg, fields)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	logAt(ctx, LevelError, msg, fields)
}

// Sync flushes buffered entries.
func Sync() error {
	return L().Sync()
}
