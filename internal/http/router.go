package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/roadmap-backend/internal/http/handlers"
	httpMW "github.com/yungbote/roadmap-backend/internal/http/middleware"
	"github.com/yungbote/roadmap-backend/internal/observability"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log               *logger.Logger
	Metrics           *observability.Metrics
	ServiceName       string
	CORSOrigins       []string
	Cookies           httpMW.Cookies
	SessionMiddleware *httpMW.SessionMiddleware

	AuthHandler    *httpH.AuthHandler
	RoadmapHandler *httpH.RoadmapHandler
	ContentHandler *httpH.ContentHandler
	GuestHandler   *httpH.GuestHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	// Session handshake. Login and logout never resolve the caller, so
	// logout still clears the cookie while the session store is down.
	if cfg.AuthHandler != nil {
		handshake := r.Group("/api")
		handshake.POST("/login", cfg.AuthHandler.Login)
		handshake.POST("/logout", cfg.AuthHandler.Logout)
	}

	api := r.Group("/api")
	if cfg.SessionMiddleware != nil {
		api.Use(cfg.SessionMiddleware.AttachCaller())
	}
	if cfg.AuthHandler != nil {
		api.GET("/session", cfg.AuthHandler.Session)
	}

	// Open to guests; generation issues a guest id so the guest tier can
	// keep the result.
	open := api.Group("")
	{
		if cfg.RoadmapHandler != nil {
			open.POST("/roadmaps", httpMW.GuestID(cfg.Cookies, true), cfg.RoadmapHandler.Generate)
		}
		if cfg.ContentHandler != nil {
			open.POST("/insights", cfg.ContentHandler.Insight)
			open.POST("/follow-ups", cfg.ContentHandler.FollowUp)
			open.POST("/challenges", cfg.ContentHandler.Challenge)
			open.GET("/challenges/daily", cfg.ContentHandler.DailyChallenge)
		}
		if cfg.GuestHandler != nil {
			guest := open.Group("/guest", httpMW.GuestID(cfg.Cookies, false))
			guest.GET("/roadmaps", cfg.GuestHandler.History)
			guest.GET("/roadmaps/:id", cfg.GuestHandler.Get)
			guest.PUT("/roadmaps/:id/nodes/:nodeId/status", cfg.GuestHandler.UpdateStatus)
		}
	}

	protected := api.Group("")
	{
		if cfg.SessionMiddleware != nil {
			protected.Use(cfg.SessionMiddleware.RequireCaller())
		}
		if cfg.RoadmapHandler != nil {
			protected.GET("/roadmaps", cfg.RoadmapHandler.List)
			protected.GET("/roadmaps/:id", cfg.RoadmapHandler.Get)
			protected.PUT("/roadmaps/:id/nodes/:nodeId/status", cfg.RoadmapHandler.UpdateStatus)
			protected.POST("/roadmaps/adopt", httpMW.GuestID(cfg.Cookies, false), cfg.RoadmapHandler.Adopt)
			protected.GET("/dashboard", cfg.RoadmapHandler.Dashboard)
		}
	}

	return r
}
