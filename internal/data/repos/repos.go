package repos

import (
	"time"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/repos/auth"
	"github.com/yungbote/roadmap-backend/internal/data/repos/guest"
	"github.com/yungbote/roadmap-backend/internal/data/repos/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type RoadmapRepo = roadmap.RoadmapRepo
type NodeStatusRepo = roadmap.NodeStatusRepo

type SessionStore = auth.SessionStore
type UserSessionRepo = auth.UserSessionRepo

type GuestRoadmapStore = guest.RoadmapStore

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return roadmap.NewRoadmapRepo(db, baseLog)
}
func NewNodeStatusRepo(db *gorm.DB, baseLog *logger.Logger) NodeStatusRepo {
	return roadmap.NewNodeStatusRepo(db, baseLog)
}

func NewUserSessionRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionRepo {
	return auth.NewUserSessionRepo(db, baseLog)
}
func NewRedisSessionStore(rdb goredis.UniversalClient, prefix string, baseLog *logger.Logger) SessionStore {
	return auth.NewRedisSessionStore(rdb, prefix, baseLog)
}

func NewGuestRedisStore(rdb goredis.UniversalClient, prefix string, ttl time.Duration, baseLog *logger.Logger) GuestRoadmapStore {
	return guest.NewRedisStore(rdb, prefix, ttl, baseLog)
}
func NewGuestMemoryStore() GuestRoadmapStore {
	return guest.NewMemoryStore()
}
func NewGuestMemoryStoreWithLimits(ttl time.Duration, maxGuests int) GuestRoadmapStore {
	return guest.NewMemoryStoreWithLimits(ttl, maxGuests)
}
