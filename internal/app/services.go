package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/platform/logger"
	"github.com/yungbote/roadmap-backend/internal/services"
)

type Services struct {
	Generator services.ContentGenerator
	Roadmaps  services.RoadmapStore
	Tiers     *services.RoadmapTiers
	Actions   *services.Actions
	Sessions  services.SessionService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, reposet Repos) Services {
	log.Info("Wiring services...")

	categories := cfg.TopicCategories
	if len(categories) == 0 {
		categories = services.DefaultTopicCategories
	}
	store := services.NewRoadmapStore(db, log, reposet.Roadmap, reposet.NodeStatus, services.NewTopicCategorizer(categories))
	gen := services.NewContentGenerator(clients.LLM, cfg.Generator, log)
	tiers := services.NewRoadmapTiers(reposet.Guest, store, log)

	if cfg.Session.Secret == "" {
		log.Warn("SESSION_SECRET not set; login will answer 503")
	}
	return Services{
		Generator: gen,
		Roadmaps:  store,
		Tiers:     tiers,
		Actions:   services.NewActions(log, gen, tiers),
		Sessions:  services.NewSessionService(log, clients.Identity, reposet.Sessions, cfg.Session),
	}
}

// NewGenerator builds a standalone generator for the CLI. Unlike the server
// it fails fast when the provider is not configured.
func NewGenerator(ctx context.Context, log *logger.Logger, cfg Config) (services.ContentGenerator, error) {
	if err := cfg.LLM.Validate(); err != nil {
		return nil, err
	}
	provider, err := wireLLM(ctx, log, cfg.LLM, nil)
	if err != nil {
		return nil, err
	}
	return services.NewContentGenerator(provider, cfg.Generator, log), nil
}
