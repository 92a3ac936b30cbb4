package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const feedCacheKey = "animehub:feed"

// FeedCache stores rendered feed snapshots keyed by limit. All snapshots live
// in one hash so a single DEL invalidates every limit at once.
type FeedCache interface {
	Get(ctx context.Context, limit int) ([]byte, bool, error)
	Set(ctx context.Context, limit int, payload []byte) error
	Invalidate(ctx context.Context) error
}

type redisFeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedCache wraps client. A nil client gives a cache that always misses.
func NewFeedCache(client *redis.Client, ttl time.Duration) FeedCache {
	return &redisFeedCache{client: client, ttl: ttl}
}

// NewRedisClient builds a client from a redis:// URL and verifies it answers.
func NewRedisClient(ctx context.Context, url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func (c *redisFeedCache) disabled() bool {
	return c == nil || c.client == nil || c.ttl <= 0
}

func (c *redisFeedCache) Get(ctx context.Context, limit int) ([]byte, bool, error) {
	if c.disabled() {
		return nil, false, nil
	}
	payload, err := c.client.HGet(ctx, feedCacheKey, strconv.Itoa(limit)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read feed cache: %w", err)
	}
	return payload, true, nil
}

func (c *redisFeedCache) Set(ctx context.Context, limit int, payload []byte) error {
	if c.disabled() {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, feedCacheKey, strconv.Itoa(limit), payload)
		pipe.Expire(ctx, feedCacheKey, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write feed cache: %w", err)
	}
	return nil
}

func (c *redisFeedCache) Invalidate(ctx context.Context) error {
	if c.disabled() {
		return nil
	}
	if err := c.client.Del(ctx, feedCacheKey).Err(); err != nil {
		return fmt.Errorf("invalidate feed cache: %w", err)
	}
	return nil
}
