package logger

import (
	"context"

	"go-contractor/internal/config"
	"go-contractor/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewLogger builds the console logger and tees it into the Mongo logs collection.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// caller function name is stored with each DB record
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(mongodb, cfg)
	logger := zap.New(NewDBCore(baseLogger.Core(), dbWriter), zap.AddCaller())

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			_ = logger.Sync()
			dbWriter.Close()
			return nil
		},
	})

	return logger, nil
}
