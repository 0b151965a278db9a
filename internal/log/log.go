// Package log holds the process-wide zap logger used by docbind. It is a
// trimmed down variant of the usual global-logger pattern: an atomic pointer
// that can be replaced at runtime and an Init helper that builds a logger from
// Config, optionally writing to a rotating file.
package log

import (
	"os"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

var globalL atomic.Pointer[zap.Logger]

func init() {
	l, err := Init(DefaultConfig())
	if err != nil {
		l = zap.NewNop()
	}
	globalL.Store(l)
}

// L returns the global logger. It is safe for concurrent use.
func L() *zap.Logger { return globalL.Load() }

// ReplaceGlobals swaps the global logger and returns a function restoring the
// previous one.
func ReplaceGlobals(l *zap.Logger) func() {
	if l == nil {
		l = zap.NewNop()
	}
	prev := globalL.Swap(l)
	return func() { globalL.Store(prev) }
}

// Or returns l when non-nil, otherwise the global logger.
func Or(l *zap.Logger) *zap.Logger {
	if l != nil {
		return l
	}
	return L()
}

// Init builds a logger from cfg.
func Init(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, errors.Wrapf(err, "log: invalid level %q", cfg.Level)
		}
	}
	var outputs []zapcore.WriteSyncer
	if cfg.File.Filename != "" {
		lg, err := initFileLog(&cfg.File)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, zapcore.AddSync(lg))
	}
	if cfg.Stderr {
		outputs = append(outputs, zapcore.Lock(os.Stderr))
	}
	if len(outputs) == 0 {
		return zap.NewNop(), nil
	}
	core := zapcore.NewCore(cfg.encoder(), zap.CombineWriteSyncers(outputs...), level)
	return zap.New(core, cfg.options()...), nil
}

func initFileLog(cfg *FileLogConfig) (*lumberjack.Logger, error) {
	if st, err := os.Stat(cfg.Filename); err == nil && st.IsDir() {
		return nil, errors.Newf("log: %q is a directory", cfg.Filename)
	}
	maxSize := cfg.MaxSize
	if maxSize == 0 {
		maxSize = defaultLogMaxSize
	}
	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxDays,
		LocalTime:  true,
	}, nil
}
