package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

// JSONCache stores JSON-encoded values under a key prefix. Loads for the
// same key are collapsed into one call. A nil *JSONCache or a cache without a
// client always calls the loader.
type JSONCache struct {
	rdb    goredis.UniversalClient
	prefix string
	ttl    time.Duration
	log    *logger.Logger
	group  singleflight.Group
}

func NewJSONCache(rdb goredis.UniversalClient, prefix string, ttl time.Duration, log *logger.Logger) *JSONCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &JSONCache{
		rdb:    rdb,
		prefix: prefix,
		ttl:    ttl,
		log:    log.With("component", "JSONCache", "prefix", prefix),
	}
}

// GetOrLoad returns the cached value for key, or calls load on a miss. Cache errors
// are logged and fall through to load.
func GetOrLoad[T any](ctx context.Context, c *JSONCache, key string, load func(ctx context.Context) (T, error)) (T, error) {
	if c == nil || c.rdb == nil {
		return load(ctx)
	}
	fullKey := c.prefix + key

	raw, err := c.rdb.Get(ctx, fullKey).Bytes()
	if err == nil {
		var out T
		if uerr := json.Unmarshal(raw, &out); uerr == nil {
			return out, nil
		}
		c.log.Warn("Discarding undecodable cache entry", "key", fullKey)
	} else if !errors.Is(err, goredis.Nil) {
		c.log.Warn("Cache read failed", "key", fullKey, "error", err)
	}

	// The shared load outlives any single caller; a cancelled caller stops
	// waiting without failing the others collapsed onto the same key.
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(fullKey, func() (interface{}, error) {
		val, lerr := load(loadCtx)
		if lerr != nil {
			return val, lerr
		}
		if enc, merr := json.Marshal(val); merr == nil {
			if serr := c.rdb.Set(loadCtx, fullKey, enc, c.ttl).Err(); serr != nil {
				c.log.Warn("Cache write failed", "key", fullKey, "error", serr)
			}
		}
		return val, nil
	})
	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

// Invalidate deletes every key under the cache prefix.
func (c *JSONCache) Invalidate(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
