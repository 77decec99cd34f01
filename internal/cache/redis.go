package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient implementa Client usando Redis.
type redisClient struct {
	client *redis.Client
	prefix string
	owned  bool
}

// NewRedis crea un cliente de cache Redis y verifica la conexión.
func NewRedis(ctx context.Context, cfg Config) (*redisClient, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("cache: redis ping failed: %w", err)
	}

	return &redisClient{client: rdb, prefix: cfg.Prefix, owned: true}, nil
}

// NewRedisFromClient reutiliza un *redis.Client existente (ej: compartido con el rate limiter).
// Close no cierra el cliente subyacente.
func NewRedisFromClient(rdb *redis.Client, prefix string) *redisClient {
	return &redisClient{client: rdb, prefix: prefix}
}

// Raw expone el cliente subyacente.
func (c *redisClient) Raw() *redis.Client { return c.client }

func (c *redisClient) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, prefixed(c.prefix, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return c.client.Set(ctx, prefixed(c.prefix, key), value, ttl).Err()
}

func (c *redisClient) Take(ctx context.Context, key string) (string, error) {
	val, err := c.client.GetDel(ctx, prefixed(c.prefix, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (c *redisClient) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, prefixed(c.prefix, key)).Err()
}

func (c *redisClient) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *redisClient) Close() error {
	if !c.owned {
		return nil
	}
	return c.client.Close()
}
