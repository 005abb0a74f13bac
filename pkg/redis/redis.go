// Package redis constructs go-redis clients from the central config.
// Sessions, rate limiting, caching, and the notification streams all
// share these constructors.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/bookline/bookline_backend/config"
)

// NewRedisFromCentral builds the general-purpose client.
func NewRedisFromCentral(cfg config.RedisConfig) (*goredis.Client, error) {
	return NewRedis(FromCentralConfig(cfg))
}

// NewStreamsRedisFromCentral builds a dedicated client for stream
// consumers. Blocking XREADGROUP calls hold the connection for the full
// block duration, so the read timeout must exceed it to avoid spurious
// i/o timeouts on idle streams.
func NewStreamsRedisFromCentral(cfg config.RedisConfig, minReadTimeout time.Duration) (*goredis.Client, error) {
	c := FromCentralConfig(cfg)
	if c.ReadTimeout() < minReadTimeout {
		c.ReadTimeoutSeconds = int(minReadTimeout / time.Second)
	}
	return NewRedis(c)
}

// NewRedis opens a client and verifies the server is reachable before
// returning it.
func NewRedis(cfg Config) (*goredis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is empty")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout(),
		ReadTimeout:  cfg.ReadTimeout(),
		WriteTimeout: cfg.WriteTimeout(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), cfg.DialTimeout())
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return rdb, nil
}
