package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/skillquest-backend/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether an address was configured.
func (c Config) Enabled() bool { return strings.TrimSpace(c.Addr) != "" }

// NewClient dials and pings Redis. Callers own the returned client.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*goredis.Client, error) {
	addr := strings.TrimSpace(cfg.Addr)
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	if log != nil {
		log.Info("Redis connected", "addr", addr, "db", cfg.DB)
	}
	return rdb, nil
}
