package datastore

import (
	"context"
	"fmt"
	"time"

	"go-contractor/internal/config"
	"go-contractor/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// NewClient picks the report data store from DATASTORE_DRIVER.
func NewClient(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB, logger *zap.Logger) (Client, error) {
	if cfg.DatastoreDriver == "" || cfg.DatastoreDriver == "mongo" {
		logger.Info("Report datastore ready", zap.String("driver", "mongo"))
		return NewMongoClient(mongodb.DB), nil
	}

	if cfg.DatastoreDSN == "" {
		return nil, fmt.Errorf("DATASTORE_DSN is required for driver %s", cfg.DatastoreDriver)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := OpenSQL(ctx, cfg.DatastoreDriver, cfg.DatastoreDSN)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	logger.Info("Report datastore ready", zap.String("driver", client.Driver()))
	return client, nil
}
