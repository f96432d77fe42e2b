package database

import (
	"context"
	"log"
	"time"

	"go-contractor/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
)

// MongodbDB holds the application database: templates, schedules, audit logs,
// preferences and, with the mongo driver, the report data itself.
type MongodbDB struct {
	DB *mongo.Database
}

// NewDatabase creates a new MongoDB database connection with lifecycle management
func NewDatabase(lc fx.Lifecycle, cfg *config.Config) (*MongodbDB, error) {
	db, err := Connect(context.Background(), cfg.MongoURI, cfg.DBName)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Disconnecting from MongoDB...")
			return db.DB.Client().Disconnect(ctx)
		},
	})

	return db, nil
}

// Connect dials and pings MongoDB. Used directly by the command line tools.
func Connect(ctx context.Context, uri, name string) (*MongodbDB, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	log.Println("Connected to MongoDB!")
	return &MongodbDB{DB: client.Database(name)}, nil
}
