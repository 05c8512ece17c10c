// Package redis opens the shared Redis connection used for consent sessions
// and rate limit buckets.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stacia/internal/platform/config"
)

type Client struct {
	*redis.Client
}

// New dials Redis and verifies it answers PING. An empty URL means Redis is
// not configured and yields a nil client.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	c := &Client{Client: redis.NewClient(opts)}
	if err := c.Health(ctx); err != nil {
		_ = c.Client.Close()
		return nil, err
	}
	return c, nil
}

// Health is registered as the "redis" check on /health.
func (c *Client) Health(ctx context.Context) error {
	if err := c.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
