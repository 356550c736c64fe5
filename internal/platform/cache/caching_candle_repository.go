// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"stock_backtest/internal/feature/candles/domain/entity"
	"stock_backtest/internal/feature/candles/usecase"
	"stock_backtest/internal/platform/metrics"
)

const rangeKeyLayout = "20060102"

var _ usecase.CandleRepository = (*CachingCandleRepository)(nil)

// CachingCandleRepository decorates a CandleRepository with Redis caching.
// Latest-N reads and date-range reads are cached under separate keys of the
// same symbol/interval prefix, so one SCAN invalidates both after an upsert.
type CachingCandleRepository struct {
	inner     usecase.CandleRepository
	rdb       *redis.Client
	ttl       time.Duration
	ttlFunc   func() time.Duration
	namespace string
}

// NewCachingCandleRepository decorates a CandleRepository with Redis caching.
// If ttl is 0, it defaults to 5 minutes. If namespace is empty, it uses "candles".
func NewCachingCandleRepository(rdb *redis.Client, ttl time.Duration, inner usecase.CandleRepository, namespace string) *CachingCandleRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if namespace == "" {
		namespace = "candles"
	}
	return &CachingCandleRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// WithRefreshTTL makes every cache write expire at the next daily refresh
// as seen from clock at write time, instead of using the fixed ttl.
func (c *CachingCandleRepository) WithRefreshTTL(clock func() time.Time) *CachingCandleRepository {
	c.ttlFunc = func() time.Duration { return TimeUntilNextRefresh(clock()) }
	return c
}

// entryTTL returns the expiry for an entry written now.
func (c *CachingCandleRepository) entryTTL() time.Duration {
	if c.ttlFunc == nil {
		return c.ttl
	}
	if d := c.ttlFunc(); d > 0 {
		return d
	}
	return c.ttl
}

// UpsertBatch writes through to the inner repository and drops every cached
// query of the touched symbol/interval pairs.
func (c *CachingCandleRepository) UpsertBatch(ctx context.Context, candles []entity.Candle) error {
	if err := c.inner.UpsertBatch(ctx, candles); err != nil {
		return err
	}
	if c.rdb == nil || len(candles) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	for _, cd := range candles {
		prefix := c.cacheKeyPrefix(cd.Symbol, cd.Interval)
		if _, ok := seen[prefix]; ok {
			continue
		}
		seen[prefix] = struct{}{}
		// best effort
		_ = c.deleteByPattern(ctx, prefix+"*")
	}
	return nil
}

// Find returns the newest outputsize candles, reading through the cache.
func (c *CachingCandleRepository) Find(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	}
	key := c.cacheKeyPrefix(symbol, interval) + fmt.Sprintf("n:%d", outputsize)
	return c.readThrough(ctx, "find", key, func() ([]entity.Candle, error) {
		return c.inner.Find(ctx, symbol, interval, outputsize)
	})
}

// FindRange returns candles in [from, to] oldest first, reading through the cache.
func (c *CachingCandleRepository) FindRange(ctx context.Context, symbol, interval string, from, to time.Time) ([]entity.Candle, error) {
	if c.rdb == nil {
		return c.inner.FindRange(ctx, symbol, interval, from, to)
	}
	key := c.cacheKeyPrefix(symbol, interval) +
		fmt.Sprintf("r:%s:%s", from.Format(rangeKeyLayout), to.Format(rangeKeyLayout))
	return c.readThrough(ctx, "find_range", key, func() ([]entity.Candle, error) {
		return c.inner.FindRange(ctx, symbol, interval, from, to)
	})
}

// readThrough serves key from Redis, falling back to load and caching its result.
// Corrupted entries are deleted. Cache write failures are ignored.
func (c *CachingCandleRepository) readThrough(ctx context.Context, op, key string, load func() ([]entity.Candle, error)) ([]entity.Candle, error) {
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Candle
		if err := json.Unmarshal(b, &out); err == nil {
			metrics.CacheRequests.WithLabelValues(op, "hit").Inc()
			return out, nil
		}
		metrics.CacheRequests.WithLabelValues(op, "corrupt").Inc()
		_ = c.rdb.Del(ctx, key).Err()
	} else {
		metrics.CacheRequests.WithLabelValues(op, "miss").Inc()
	}

	out, err := load()
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.entryTTL()).Err()
	}
	return out, nil
}

// cacheKeyPrefix is shared by every query of one symbol/interval pair.
func (c *CachingCandleRepository) cacheKeyPrefix(symbol, interval string) string {
	return fmt.Sprintf("%s:%s:%s:",
		c.namespace,
		safe(symbol),
		safe(interval),
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingCandleRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
