package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/http"
	httpH "github.com/yungbote/roadmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Middleware struct {
	Session *httpMW.SessionMiddleware
}

type Handlers struct {
	Health  *httpH.HealthHandler
	Auth    *httpH.AuthHandler
	Roadmap *httpH.RoadmapHandler
	Content *httpH.ContentHandler
	Guest   *httpH.GuestHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Session: httpMW.NewSessionMiddleware(log, services.Sessions, cfg.Cookies),
	}
}

func wireHandlers(db *gorm.DB, log *logger.Logger, cfg Config, services Services, metrics *observability.Metrics) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:  httpH.NewHealthHandler(db),
		Auth:    httpH.NewAuthHandler(log, services.Sessions, cfg.Cookies, metrics),
		Roadmap: httpH.NewRoadmapHandler(log, services.Actions, metrics),
		Content: httpH.NewContentHandler(log, services.Actions),
		Guest:   httpH.NewGuestHandler(log, services.Actions),
	}
}

func wireServer(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:               log,
		Metrics:           metrics,
		ServiceName:       cfg.ServiceName,
		CORSOrigins:       cfg.CORSOrigins,
		Cookies:           cfg.Cookies,
		SessionMiddleware: middleware.Session,
		AuthHandler:       handlers.Auth,
		RoadmapHandler:    handlers.Roadmap,
		ContentHandler:    handlers.Content,
		GuestHandler:      handlers.Guest,
		HealthHandler:     handlers.Health,
	})
}
