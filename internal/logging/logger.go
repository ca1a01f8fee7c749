package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Emoji prefixes user-facing banner lines.
var Emoji = "\U0001F985" + " db-retain:"

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New builds the process logger. The console format is a development-style
// logger with colored levels; callers and stacktraces appear only at debug.
// The json format is zap's production encoder.
func New(level, format string) (*zap.Logger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(level))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}

	var cfg zap.Config
	switch strings.ToLower(format) {
	case "", FormatConsole:
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.DisableStacktrace = true
		cfg.EncoderConfig.EncodeCaller = nil
		if lvl == zapcore.DebugLevel {
			cfg.DisableStacktrace = false
			cfg.EncoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		}
	case FormatJSON:
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	default:
		return nil, fmt.Errorf("invalid log format %q (want console or json)", format)
	}

	cfg.Level = zap.NewAtomicLevelAt(lvl)
	// stdout carries reports and banners
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build config for logger: %v", err)
	}
	return logger, nil
}
