// Package logger wraps zap construction so main can initialize logging
// with a level string.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the application logger.
type Logger struct {
	// Log is the underlying zap logger.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap logger; call Init to replace it
// with a configured one.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds the production logger at the given level ("Debug",
// "Info", "Warn", "Error").
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	log, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = log
	return nil
}
