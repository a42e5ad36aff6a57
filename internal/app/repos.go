package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type Repos struct {
	Roadmap    repos.RoadmapRepo
	NodeStatus repos.NodeStatusRepo

	// Sessions is Redis-backed when Redis is configured; UserSessions is
	// always the SQL table and is only written to when it is also Sessions.
	Sessions     repos.SessionStore
	UserSessions repos.UserSessionRepo

	Guest repos.GuestRoadmapStore
}

func wireRepos(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients) Repos {
	log.Info("Wiring repos...")
	out := Repos{
		Roadmap:      repos.NewRoadmapRepo(db, log),
		NodeStatus:   repos.NewNodeStatusRepo(db, log),
		UserSessions: repos.NewUserSessionRepo(db, log),
	}
	if clients.Redis != nil {
		prefix := cfg.Redis.KeyPrefix()
		out.Sessions = repos.NewRedisSessionStore(clients.Redis, prefix, log)
		out.Guest = repos.NewGuestRedisStore(clients.Redis, prefix, cfg.GuestTTL, log)
		return out
	}
	log.Warn("redis not configured; guest roadmaps are kept in process memory")
	out.Sessions = out.UserSessions
	out.Guest = repos.NewGuestMemoryStoreWithLimits(cfg.GuestTTL, cfg.GuestMemoryMaxGuests)
	return out
}

// sessionsInSQL reports whether the expired-session janitor has work to do.
func (r Repos) sessionsInSQL() bool {
	_, ok := r.Sessions.(repos.UserSessionRepo)
	return ok
}
