package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// KeyPrefix is prepended to every key this service writes.
func (c Config) KeyPrefix() string {
	if p := strings.TrimSpace(c.Prefix); p != "" {
		return p
	}
	return "roadmap"
}

// NewClient connects and pings. Callers treat an empty Addr as "redis
// disabled" and never reach here.
func NewClient(ctx context.Context, cfg Config, log *logger.Logger) (*goredis.Client, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        cfg.Addr,
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
		log.Info("redis connected", "addr", cfg.Addr, "db", cfg.DB)
	}
	return rdb, nil
}
