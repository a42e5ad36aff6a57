package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/roadmap-backend/internal/clients/redis"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/llm"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type Clients struct {
	// Redis is nil when REDIS_ADDR is unset.
	Redis    *goredis.Client
	LLM      llm.Provider
	Identity services.IdentityVerifier
}

// wireClients never fails on missing credentials: the affected features
// answer 503 instead. A Redis address that cannot be reached is fatal.
func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	if strings.TrimSpace(cfg.Redis.Addr) != "" {
		rdb, err := redis.NewClient(ctx, cfg.Redis, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		out.Redis = rdb
	}

	provider, err := wireLLM(ctx, log, cfg.LLM, metrics)
	if err != nil {
		out.Close()
		return Clients{}, err
	}
	out.LLM = provider

	if cfg.Identity.Configured() {
		v, err := services.NewIdentityVerifier(ctx, cfg.Identity, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init identity verifier: %w", err)
		}
		out.Identity = v
	} else {
		log.Warn("identity provider not configured; login will answer 503")
	}
	return out, nil
}

func wireLLM(ctx context.Context, log *logger.Logger, cfg llm.Config, metrics *observability.Metrics) (llm.Provider, error) {
	if err := cfg.Validate(); err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			log.Warn("llm provider not configured; generation will answer 503", "error", err)
			return llm.Unconfigured{Reason: err}, nil
		}
		return nil, fmt.Errorf("llm config: %w", err)
	}
	var observer llm.Observer
	if metrics != nil {
		observer = metrics
	}
	provider, err := llm.NewProvider(ctx, cfg, log, observer)
	if err != nil {
		return nil, fmt.Errorf("init llm provider %s: %w", cfg.Provider, err)
	}
	return provider, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
		c.Redis = nil
	}
}
