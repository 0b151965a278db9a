package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const defaultLogMaxSize = 100 // MB

// FileLogConfig configures rotating file output.
type FileLogConfig struct {
	// Filename of the log file; empty disables file logging.
	Filename   string `json:"filename" yaml:"filename"`
	MaxSize    int    `json:"max-size" yaml:"max-size"`
	MaxDays    int    `json:"max-days" yaml:"max-days"`
	MaxBackups int    `json:"max-backups" yaml:"max-backups"`
}

// Config describes the library logger.
type Config struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
	// Format is "console" or "json".
	Format string `json:"format" yaml:"format"`
	// Stderr enables console output on stderr.
	Stderr        bool          `json:"stderr" yaml:"stderr"`
	File          FileLogConfig `json:"file" yaml:"file"`
	DisableCaller bool          `json:"disable-caller" yaml:"disable-caller"`
}

// DefaultConfig logs warnings and errors to stderr.
func DefaultConfig() Config {
	return Config{Level: "warn", Format: "console", Stderr: true}
}

func (cfg *Config) encoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.Format == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(ec)
}

func (cfg *Config) options() []zap.Option {
	var opts []zap.Option
	if !cfg.DisableCaller {
		opts = append(opts, zap.AddCaller())
	}
	return opts
}
