package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Client wraps a shared Redis connection and tracks whether it is usable.
// A failed startup connection produces a disabled client instead of an
// error: idempotency, rate limiting and job enqueueing all degrade to
// pass-through when Redis is down, so the process must keep running.
type Client struct {
	redis     *redis.Client
	available bool
	logger    zerolog.Logger
}

// Connect attempts a single connection to Redis at the given URL.
// On failure it logs a warning and returns a disabled client; the
// disabled state is permanent for the process lifetime so callers never
// retry-storm a dead backing store.
func Connect(ctx context.Context, url string, logger zerolog.Logger) *Client {
	opts, err := parseOptions(url)
	if err != nil {
		logger.Warn().Err(err).Str("redis_url", url).
			Msg("Invalid Redis URL, continuing without Redis (idempotency and rate limiting disabled)")
		CacheAvailable.Set(0)
		return &Client{logger: logger}
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opts.Addr).
			Msg("Redis connection failed, continuing without Redis (idempotency and rate limiting disabled)")
		_ = rdb.Close()
		CacheAvailable.Set(0)
		return &Client{logger: logger}
	}

	logger.Info().Str("addr", opts.Addr).Msg("Redis connected")
	CacheAvailable.Set(1)
	return &Client{redis: rdb, available: true, logger: logger}
}

// Disabled returns a client in permanent pass-through mode.
// Used by binaries without a configured Redis URL and by tests
// exercising degraded behavior.
func Disabled(logger zerolog.Logger) *Client {
	CacheAvailable.Set(0)
	return &Client{logger: logger}
}

// parseOptions accepts both redis:// URLs and bare host:port addresses.
func parseOptions(url string) (*redis.Options, error) {
	if strings.Contains(url, "://") {
		return redis.ParseURL(url)
	}
	if url == "" {
		return nil, fmt.Errorf("empty redis address")
	}
	return &redis.Options{Addr: url}, nil
}

// Available reports whether the backing store accepted the startup
// connection. Every dependent component checks this before operating.
func (c *Client) Available() bool {
	return c != nil && c.available
}

// Get retrieves the value stored under key.
// A missing key is (_, false, nil), not an error.
func (c *Client) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.redis.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		CacheErrors.WithLabelValues("get").Inc()
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

// SetWithTTL stores value under key with an absolute expiry.
func (c *Client) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := c.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		CacheErrors.WithLabelValues("set").Inc()
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// IncrWindow atomically increments the counter under key. When fresh is
// true the expiry is attached in the same transaction, so the window TTL
// is set exactly once, on the increment that creates the counter.
// Later increments within the window never extend it.
func (c *Client) IncrWindow(ctx context.Context, key string, window time.Duration, fresh bool) (int64, error) {
	pipe := c.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	if fresh {
		pipe.Expire(ctx, key, window)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		CacheErrors.WithLabelValues("incr").Inc()
		return 0, fmt.Errorf("redis incr: %w", err)
	}
	return incr.Val(), nil
}

// Close releases the underlying connection. Safe on a disabled client.
func (c *Client) Close() error {
	if c == nil || c.redis == nil {
		return nil
	}
	return c.redis.Close()
}
