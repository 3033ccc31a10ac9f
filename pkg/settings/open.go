package settings

import (
	"context"
	"fmt"

	"github.com/natserract/ffcleverreach/pkg/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OpenStore builds the option store selected by cfg.SettingsBackend. db is
// only used by the postgres backend. The returned func releases the store.
func OpenStore(ctx context.Context, cfg *config.Config, db Querier, logger *zap.Logger) (Store, func(), error) {
	switch cfg.SettingsBackend {
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		logger.Info("Using redis settings store", zap.String("addr", cfg.RedisAddr))
		return NewRedisStore(client), func() { client.Close() }, nil
	case config.BackendPostgres:
		if db == nil {
			return nil, nil, fmt.Errorf("postgres settings backend needs a database")
		}
		logger.Info("Using postgres settings store")
		return NewPostgresStore(db), func() {}, nil
	default:
		logger.Warn("Using in-memory settings store, settings are lost on restart")
		return NewMemoryStore(), func() {}, nil
	}
}
