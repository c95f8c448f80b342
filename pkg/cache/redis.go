package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ErrMiss is returned when a key is absent; callers fall back to computing.
var ErrMiss = errors.New("cache miss")

type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedis(addr, password string, db int, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connected", zap.String("addr", addr))

	return &Redis{client: client, logger: logger}, nil
}

func (r *Redis) GetInt(ctx context.Context, key string) (int, error) {
	v, err := r.client.Get(ctx, key).Int()
	if errors.Is(err, redis.Nil) {
		return 0, ErrMiss
	}
	return v, err
}

func (r *Redis) SetInt(ctx context.Context, key string, value int, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Del(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}
