package preference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-contractor/internal/config"
	"go-contractor/internal/database"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Store persists preferences by a user-and-view key.
type Store interface {
	Load(ctx context.Context, key string) (ColumnPreferences, bool, error)
	Save(ctx context.Context, key string, prefs ColumnPreferences) error
}

// RedisStore keeps each layout as a JSON string under "<prefix><key>".
type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{Client: rdb, Prefix: "prefs:"}
}

func (s *RedisStore) Load(ctx context.Context, key string) (ColumnPreferences, bool, error) {
	data, err := s.Client.Get(ctx, s.Prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ColumnPreferences{}, false, nil
	}
	if err != nil {
		return ColumnPreferences{}, false, err
	}

	var prefs ColumnPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return ColumnPreferences{}, false, fmt.Errorf("decode preferences %s: %w", key, err)
	}
	return prefs, true, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, prefs ColumnPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.Prefix+key, data, 0).Err()
}

type preferenceDocument struct {
	Key               string `bson:"_id"`
	ColumnPreferences `bson:",inline"`
}

type MongoStore struct {
	Collection *mongo.Collection
}

func NewMongoStore(mongodb *database.MongodbDB) *MongoStore {
	return &MongoStore{Collection: mongodb.DB.Collection("column_preferences")}
}

func (s *MongoStore) Load(ctx context.Context, key string) (ColumnPreferences, bool, error) {
	var doc preferenceDocument
	err := s.Collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ColumnPreferences{}, false, nil
	}
	if err != nil {
		return ColumnPreferences{}, false, err
	}
	return doc.ColumnPreferences, true, nil
}

func (s *MongoStore) Save(ctx context.Context, key string, prefs ColumnPreferences) error {
	_, err := s.Collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		preferenceDocument{Key: key, ColumnPreferences: prefs},
		options.Replace().SetUpsert(true))
	return err
}

// NewStore picks the backend named by PREFERENCES_BACKEND.
func NewStore(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB, logger *zap.Logger) (Store, error) {
	if cfg.PreferencesBackend != "redis" {
		return NewMongoStore(mongodb), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Column preferences stored in Redis", zap.String("addr", cfg.RedisAddr))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return rdb.Close()
		},
	})
	return NewRedisStore(rdb), nil
}
