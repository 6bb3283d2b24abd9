// Package logger builds the process zap logger.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a JSON logger with ISO8601 timestamps in production and a
// coloured console logger otherwise. When shipper is non-nil every entry is
// also written to it as JSON.
func New(env string, shipper zapcore.WriteSyncer) (*zap.Logger, error) {
	cfg := config(env)

	if shipper == nil {
		logger, err := cfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build logger: %w", err)
		}
		return logger, nil
	}

	level := zap.NewAtomicLevelAt(cfg.Level.Level())

	consoleEncoder := zapcore.NewConsoleEncoder(cfg.EncoderConfig)
	if cfg.Encoding == "json" {
		consoleEncoder = zapcore.NewJSONEncoder(cfg.EncoderConfig)
	}
	consoleCore := zapcore.NewCore(consoleEncoder, zapcore.Lock(os.Stdout), level)

	shipEncoderCfg := cfg.EncoderConfig
	shipEncoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	shipCore := zapcore.NewCore(zapcore.NewJSONEncoder(shipEncoderCfg), shipper, level)

	return zap.New(zapcore.NewTee(consoleCore, shipCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func config(env string) zap.Config {
	if env == "production" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		return cfg
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return cfg
}
