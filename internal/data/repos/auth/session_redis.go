package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type redisSessionStore struct {
	rdb    goredis.UniversalClient
	prefix string
	log    *logger.Logger
}

// NewRedisSessionStore keeps one key per session, expiring with the cookie.
func NewRedisSessionStore(rdb goredis.UniversalClient, prefix string, baseLog *logger.Logger) SessionStore {
	return &redisSessionStore{
		rdb:    rdb,
		prefix: prefix,
		log:    baseLog.With("repo", "RedisSessionStore"),
	}
}

func (s *redisSessionStore) key(id uuid.UUID) string {
	return fmt.Sprintf("%s:session:%s", s.prefix, id.String())
}

func (s *redisSessionStore) Put(ctx context.Context, sess *types.UserSession) error {
	if sess == nil {
		return errors.New("nil session")
	}
	if sess.ID == uuid.Nil {
		sess.ID = uuid.New()
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("session %s already expired", sess.ID)
	}
	return s.rdb.Set(ctx, s.key(sess.ID), sess.UserID, ttl).Err()
}

func (s *redisSessionStore) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	n, err := s.rdb.Exists(ctx, s.key(id)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (s *redisSessionStore) Revoke(ctx context.Context, id uuid.UUID) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}
