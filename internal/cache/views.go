// Package cache provides the Redis-backed view counter. View increments are
// absorbed by Redis and periodically drained into the videos table so a hot
// video does not turn every fetch into a row update.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const viewKeyPrefix = "views:video:"

// Config holds Redis connection configuration.
type Config struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// ViewCounter accumulates per-video view increments in Redis.
type ViewCounter struct {
	client *redis.Client
}

// NewViewCounter connects to Redis and verifies the connection.
func NewViewCounter(ctx context.Context, cfg Config) (*ViewCounter, error) {
	if cfg.PoolSize <= 0 {
		cfg.PoolSize = 10
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &ViewCounter{client: client}, nil
}

// Close releases the underlying connection pool.
func (c *ViewCounter) Close() error {
	return c.client.Close()
}

// Increment records one view for the video and returns the pending count.
func (c *ViewCounter) Increment(ctx context.Context, videoID int64) (int64, error) {
	n, err := c.client.Incr(ctx, viewKey(videoID)).Result()
	if err != nil {
		return 0, fmt.Errorf("incr view counter: %w", err)
	}
	return n, nil
}

// Pending returns the not-yet-drained view count for the video.
func (c *ViewCounter) Pending(ctx context.Context, videoID int64) (int64, error) {
	n, err := c.client.Get(ctx, viewKey(videoID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read view counter: %w", err)
	}
	return n, nil
}

// Drain atomically takes all pending counters and returns them keyed by
// video id. Counters incremented after the GETDEL land in the next drain.
func (c *ViewCounter) Drain(ctx context.Context) (map[int64]int64, error) {
	pending := make(map[int64]int64)

	iter := c.client.Scan(ctx, 0, viewKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()

		videoID, err := strconv.ParseInt(strings.TrimPrefix(key, viewKeyPrefix), 10, 64)
		if err != nil {
			continue
		}

		raw, err := c.client.GetDel(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("drain view counter %s: %w", key, err)
		}

		count, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || count <= 0 {
			continue
		}
		pending[videoID] = count
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan view counters: %w", err)
	}

	return pending, nil
}

func viewKey(videoID int64) string {
	return viewKeyPrefix + strconv.FormatInt(videoID, 10)
}
