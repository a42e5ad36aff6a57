package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/db"
	"github.com/yungbote/roadmap-backend/internal/http"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

const sessionJanitorInterval = time.Hour

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *http.Server
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics

	pg           *db.PostgresService
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New loads config from the environment, opens and migrates the database
// and wires every layer.
func New(ctx context.Context) (*App, error) {
	log, err := logger.FromEnv()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(ctx, log, cfg)
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		pg.Close()
		log.Sync()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		pg.Close()
		log.Sync()
		return nil, err
	}
	reposet := wireRepos(theDB, log, cfg, clients)
	serviceset := wireServices(theDB, log, cfg, clients, reposet)
	handlerset := wireHandlers(theDB, log, cfg, serviceset, metrics)
	middleware := wireMiddleware(log, cfg, serviceset)
	server := wireServer(log, cfg, handlerset, middleware, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		pg:           pg,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background collectors and the expired-session janitor.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
	if a.Clients.Redis != nil {
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
	if a.Repos.sessionsInSQL() {
		go a.runSessionJanitor(ctx)
	}
}

func (a *App) runSessionJanitor(ctx context.Context) {
	log := a.Log.With("job", "session_janitor")
	ticker := time.NewTicker(sessionJanitorInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := a.Repos.UserSessions.FullDeleteExpired(dbctx.New(ctx), time.Now().UTC())
			if err != nil {
				log.Warn("delete expired sessions failed", "error", err)
				continue
			}
			if n > 0 {
				log.Info("deleted expired sessions", "count", n)
			}
		}
	}
}

// Run serves HTTP until ctx ends.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	addr := ":" + a.Cfg.Port
	a.Log.Info("Server listening", "addr", addr)
	return a.Server.Run(ctx, addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	a.Clients.Close()
	if a.pg != nil {
		a.pg.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
