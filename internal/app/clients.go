package app

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/skillquest-backend/internal/clients/redis"
	"github.com/yungbote/skillquest-backend/internal/observability"
	"github.com/yungbote/skillquest-backend/internal/platform/gcp"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/realtime/bus"
)

// Clients holds the external connections. Redis-backed members are nil when
// REDIS_ADDR is unset and callers fall back to in-process behavior.
type Clients struct {
	Redis       *goredis.Client
	Catalog     *redis.JSONCache
	Leaderboard *redis.Leaderboard
	Bus         bus.Bus
	Bucket      gcp.BucketService
	Metrics     *observability.Metrics

	otelShutdown func(context.Context) error
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.MetricsEnabled {
		out.Metrics = observability.NewMetrics()
	}
	out.otelShutdown = observability.InitOTel(ctx, log, cfg.Otel)

	if cfg.Redis.Enabled() {
		rdb, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			_ = out.Close(context.Background())
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
		out.Catalog = redis.NewJSONCache(rdb, "catalog:", cfg.CatalogCacheTTL, log)
		out.Leaderboard = redis.NewLeaderboard(rdb, cfg.LeaderboardKey)
		b, err := bus.NewRedisBus(log, rdb, cfg.RedisChannel)
		if err != nil {
			_ = out.Close(context.Background())
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		out.Bus = b
	} else {
		log.Info("REDIS_ADDR not set; catalog cache, leaderboard set and realtime bus disabled")
	}

	bucket, err := resolveBucketService(ctx, log, cfg.Storage)
	if err != nil {
		_ = out.Close(context.Background())
		return Clients{}, err
	}
	out.Bucket = bucket
	return out, nil
}

// Close releases every client that was opened and reports all failures.
func (c *Clients) Close(ctx context.Context) error {
	var errs []error
	if c.Bus != nil {
		errs = append(errs, c.Bus.Close())
	}
	if c.Redis != nil {
		errs = append(errs, c.Redis.Close())
	}
	if c.Bucket != nil {
		errs = append(errs, c.Bucket.Close())
	}
	if c.otelShutdown != nil {
		errs = append(errs, c.otelShutdown(ctx))
	}
	return errors.Join(errs...)
}
