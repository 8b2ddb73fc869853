// Package logging provides the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger *zap.Logger
	globalSkip   *zap.Logger
	globalMu     sync.RWMutex
)

func init() {
	// Discard until SetGlobal is called; the dashboard may own the terminal.
	SetGlobal(zap.NewNop())
}

// Options selects the level and sink of a logger.
type Options struct {
	// Level is one of debug, info, warn, error (default: info)
	Level string

	// File enables a rotating log file. It takes precedence over Console.
	File       string
	MaxSize    int // megabytes before rotation
	MaxBackups int
	MaxAge     int // days
	Compress   bool

	// Console receives log lines when File is empty. A nil Console and an
	// empty File produce a no-op logger.
	Console io.Writer
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

// NewWithOptions creates a logger for opts.
func NewWithOptions(opts Options) (*zap.Logger, error) {
	var sink zapcore.WriteSyncer
	switch {
	case opts.File != "":
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    opts.MaxSize,
			MaxBackups: opts.MaxBackups,
			MaxAge:     opts.MaxAge,
			Compress:   opts.Compress,
		})
	case opts.Console != nil:
		sink = zapcore.Lock(zapcore.AddSync(opts.Console))
	default:
		return zap.NewNop(), nil
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig()),
		sink,
		zap.NewAtomicLevelAt(ParseLevel(opts.Level)),
	)
	return zap.New(core, zap.AddCaller(), zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

// Global returns the global logger.
func Global() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}

// SetGlobal sets the global logger.
func SetGlobal(l *zap.Logger) {
	globalMu.Lock()
	globalLogger = l
	globalSkip = l.WithOptions(zap.AddCallerSkip(1))
	globalMu.Unlock()
}

func skip() *zap.Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalSkip
}

// Info logs at info level using the global logger.
func Info(msg string, fields ...zap.Field) {
	skip().Info(msg, fields...)
}

// Warn logs at warn level using the global logger.
func Warn(msg string, fields ...zap.Field) {
	skip().Warn(msg, fields...)
}

// Error logs at error level using the global logger.
func Error(msg string, fields ...zap.Field) {
	skip().Error(msg, fields...)
}

// Debug logs at debug level using the global logger.
func Debug(msg string, fields ...zap.Field) {
	skip().Debug(msg, fields...)
}

// Named returns a child of the global logger for a component.
func Named(name string) *zap.Logger {
	return Global().Named(name)
}

// Sync flushes any buffered log entries.
func Sync() {
	_ = Global().Sync()
}
