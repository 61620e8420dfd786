package redis

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/turtacn/ChemGraph/internal/config"
	"github.com/turtacn/ChemGraph/internal/domain/library"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ChemGraph/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/ChemGraph/pkg/errors"
)

const (
	conversionNamespace = "conv"
	metricsCacheName    = "conversion"
)

// ConversionCache stores rendered conversion output under
// <prefix>conv:<key>. Concurrent loads of one key are collapsed.
type ConversionCache struct {
	client  *Client
	ttl     time.Duration
	logger  logging.Logger
	metrics *prometheus.AppMetrics
	group   singleflight.Group
}

var _ library.ConversionCache = (*ConversionCache)(nil)

type CacheOption func(*ConversionCache)

// WithTTL sets the lifetime of new entries; zero keeps them forever.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *ConversionCache) { c.ttl = ttl }
}

// WithMetrics records hits and misses.
func WithMetrics(m *prometheus.AppMetrics) CacheOption {
	return func(c *ConversionCache) { c.metrics = m }
}

func NewConversionCache(client *Client, log logging.Logger, opts ...CacheOption) *ConversionCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	c := &ConversionCache{client: client, ttl: config.DefaultRedisTTL, logger: log.Named("cache")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConversionCache) key(k string) string { return c.client.Key(conversionNamespace, k) }

// Get returns (nil, false, nil) on a miss.
func (c *ConversionCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if c.client.isClosed() {
		return nil, false, ErrClientClosed
	}
	data, err := c.client.rdb.Get(ctx, c.key(key)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		prometheus.RecordCacheAccess(c.metrics, metricsCacheName, false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "read conversion cache").WithDetail(key)
	}
	prometheus.RecordCacheAccess(c.metrics, metricsCacheName, true)
	return data, true, nil
}

func (c *ConversionCache) Set(ctx context.Context, key string, data []byte) error {
	if c.client.isClosed() {
		return ErrClientClosed
	}
	if err := c.client.rdb.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "write conversion cache").WithDetail(key)
	}
	return nil
}

// Delete drops keys; unknown keys are ignored.
func (c *ConversionCache) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.rdb.Del(ctx, full...).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "delete conversion cache entries")
	}
	return nil
}

// GetOrLoad returns the cached value for key or runs load once, however many
// callers are waiting, and caches its result. hit reports whether the value
// came from redis. A failing cache degrades to calling load.
func (c *ConversionCache) GetOrLoad(ctx context.Context, key string, load func(context.Context) ([]byte, error)) (data []byte, hit bool, err error) {
	data, hit, err = c.Get(ctx, key)
	if err != nil {
		c.logger.Warn("conversion cache unavailable", logging.String("key", key), logging.Err(err))
	}
	if hit {
		return data, true, nil
	}
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		out, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if err := c.Set(ctx, key, out); err != nil {
			c.logger.Warn("conversion cache write failed", logging.String("key", key), logging.Err(err))
		}
		return out, nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.([]byte), false, nil
}

//Personal.AI order the ending
