package utils

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func NewLogger(environment string) *zap.Logger {
	config := zap.NewDevelopmentConfig()
	if environment == ENV_RELEASE {
		config = zap.NewProductionConfig()
		config.EncoderConfig.TimeKey = "time"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err := config.Build()
	if err != nil {
		panic("[LOG] Erro ao criar logger: " + err.Error())
	}

	return logger.With(zap.String("env", environment))
}
