package logger

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"goWayback/internal/config"
)

func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	logger, err := build(cfg)
	if err != nil {
		return nil, err
	}
	// каждый прогон экспорта помечаем своим run_id
	return logger.With(zap.String("run_id", uuid.NewString())), nil
}

func build(cfg *config.Config) (*zap.Logger, error) {
	switch cfg.Env {
	case "prod":
		// путь до файла логов
		logDir := "logs"
		logFile := filepath.Join(logDir, "export.log")

		if err := os.MkdirAll(logDir, 0755); err != nil {
			return nil, err
		}

		file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, err
		}

		writer := zapcore.AddSync(file)

		encoderCfg := zap.NewProductionEncoderConfig()
		encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

		core := zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			writer,
			zap.InfoLevel,
		)

		return zap.New(core), nil

	default:
		zapCfg := zap.NewDevelopmentConfig()
		zapCfg.Encoding = "console"
		return zapCfg.Build()
	}
}
