// Package logging builds the zap loggers used by the CLI and the HTTP
// service. Library packages never build their own; they take a *zap.Logger
// through options and stay silent by default.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	// Level is one of debug, info, warn or error. Empty means info.
	Level string
	// Development switches to colored console output with stack traces on
	// warnings.
	Development bool
	// OutputPaths are zap sink URLs or file paths, stderr when empty.
	OutputPaths []string
}

// DefaultConfig logs JSON at info level to stderr, keeping stdout free for
// command results.
func DefaultConfig() Config {
	return Config{Level: "info", OutputPaths: []string{"stderr"}}
}

func DevelopmentConfig() Config {
	return Config{Level: "debug", Development: true, OutputPaths: []string{"stderr"}}
}

func New(cfg Config) (*zap.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		zapCfg.EncoderConfig.EncodeDuration = zapcore.MillisDurationEncoder
		// pipeline workers can log per item; keep every entry
		zapCfg.Sampling = nil
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.OutputPaths = []string{"stderr"}
	if len(cfg.OutputPaths) > 0 {
		zapCfg.OutputPaths = cfg.OutputPaths
	}

	return zapCfg.Build()
}

// NewDefault never fails: if the sinks cannot be opened nothing is logged.
func NewDefault() *zap.Logger {
	return mustOrNop(New(DefaultConfig()))
}

func NewDevelopment() *zap.Logger {
	return mustOrNop(New(DevelopmentConfig()))
}

func mustOrNop(log *zap.Logger, err error) *zap.Logger {
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func parseLevel(level string) (zapcore.Level, error) {
	if level == "" {
		return zapcore.InfoLevel, nil
	}
	return zapcore.ParseLevel(level)
}
