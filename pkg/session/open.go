package session

import (
	"context"
	"fmt"
	"hoteldesk/pkg/config"
	"hoteldesk/pkg/sealer"

	"github.com/redis/go-redis/v9"
)

// Open builds the store selected by cfg.SessionBackend. The returned close
// function releases any connection the store holds.
func Open(ctx context.Context, cfg *config.Config) (Store, func(), error) {
	noop := func() {}

	switch cfg.SessionBackend {
	case config.BackendMemory:
		return NewMemoryStore(Tokens{}), noop, nil

	case config.BackendFile:
		if cfg.SessionKey == "" {
			return NewFileStore(cfg.SessionFile), noop, nil
		}
		s, err := sealer.New(cfg.SessionKey)
		if err != nil {
			return nil, noop, err
		}
		return NewFileStore(cfg.SessionFile, WithSealer(s)), noop, nil

	case config.BackendMongo:
		client, err := ConnectMongo(ctx, cfg.MongoURI, cfg.MongoConnTimeout)
		if err != nil {
			return nil, noop, err
		}
		store := NewMongoStore(client.Database(cfg.MongoDatabaseName), cfg.SessionProfile, cfg.MongoConnTimeout)
		closeFn := func() {
			if err := client.Disconnect(context.Background()); err != nil {
				cfg.Log.Warn("Failed to disconnect from MongoDB", "error", err)
			}
		}
		cfg.Log.Debug("Using MongoDB session store", "database", cfg.MongoDatabaseName, "profile", cfg.SessionProfile)
		return store, closeFn, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		closeFn := func() {
			if err := client.Close(); err != nil {
				cfg.Log.Warn("Failed to close redis client", "error", err)
			}
		}
		cfg.Log.Debug("Using redis session store", "addr", cfg.RedisAddr, "profile", cfg.SessionProfile)
		return NewRedisStore(client, cfg.SessionProfile), closeFn, nil

	default:
		return nil, noop, fmt.Errorf("unknown session backend %q", cfg.SessionBackend)
	}
}
