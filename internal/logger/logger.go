// Package logger builds the zap loggers used by arenactl and handed to the allocator.
package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects level, encoding and destination of log output.
type Config struct {
	// Level is the minimum level ("debug", "info", "warn", "error"). Defaults to info.
	Level string `yaml:"level"`
	// Format is "console" or "json".
	Format string `yaml:"format"`
	// Output is "stderr", "stdout" or a file path appended to.
	Output string `yaml:"output"`
}

// New returns a logger for cfg and a function that flushes it and closes its sink.
// The close function is safe to call on stderr/stdout loggers.
func New(cfg Config) (*zap.Logger, func() error, error) {
	level := zap.NewAtomicLevelAt(zap.InfoLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, nil, fmt.Errorf("logger: invalid level %q: %w", cfg.Level, err)
		}
	}

	sink, closeSink, err := writeSyncer(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	core := zapcore.NewCore(encoder(cfg.Format), sink, level)
	l := zap.New(core).With(zap.String("component", "arena"))

	closer := func() error {
		_ = l.Sync() // fails on terminals and pipes
		return closeSink()
	}
	return l, closer, nil
}

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeLevel = zapcore.CapitalLevelEncoder

	if strings.ToLower(format) == "json" {
		return zapcore.NewJSONEncoder(ec)
	}
	return zapcore.NewConsoleEncoder(ec)
}

func writeSyncer(output string) (zapcore.WriteSyncer, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(output) {
	case "stderr", "":
		return zapcore.AddSync(os.Stderr), noop, nil
	case "stdout":
		return zapcore.AddSync(os.Stdout), noop, nil
	default:
		f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("logger: open %s: %w", output, err)
		}
		return zapcore.AddSync(f), f.Close, nil
	}
}
