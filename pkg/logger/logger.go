package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger. "production" yields JSON with ISO8601
// timestamps, anything else a colored console encoder. When sink is non-nil
// every entry is also written to it as JSON (CloudWatch Logs in deployments).
func New(env string, sink zapcore.WriteSyncer) (*zap.Logger, error) {
	var config zap.Config
	if env == "production" {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if sink == nil {
		l, err := config.Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build logger: %w", err)
		}
		return l, nil
	}

	level := zap.NewAtomicLevelAt(config.Level.Level())
	consoleCore := zapcore.NewCore(zapcore.NewConsoleEncoder(config.EncoderConfig), zapcore.Lock(os.Stdout), level)

	// the sink always receives JSON regardless of env
	jsonCfg := config.EncoderConfig
	jsonCfg.EncodeLevel = zapcore.LowercaseLevelEncoder
	sinkCore := zapcore.NewCore(zapcore.NewJSONEncoder(jsonCfg), sink, level)

	return zap.New(zapcore.NewTee(consoleCore, sinkCore), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
