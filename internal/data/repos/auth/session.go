package auth

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// SessionStore records issued session ids so that logout can revoke a
// cookie before it expires.
type SessionStore interface {
	Put(ctx context.Context, sess *types.UserSession) error
	IsActive(ctx context.Context, id uuid.UUID) (bool, error)
	Revoke(ctx context.Context, id uuid.UUID) error
}

// UserSessionRepo is the durable SessionStore.
type UserSessionRepo interface {
	SessionStore
	Create(dbc dbctx.Context, sessions []*types.UserSession) ([]*types.UserSession, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.UserSession, error)
	FullDeleteExpired(dbc dbctx.Context, before time.Time) (int64, error)
}

type userSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
	now func() time.Time
}

func NewUserSessionRepo(db *gorm.DB, baseLog *logger.Logger) UserSessionRepo {
	return &userSessionRepo{
		db:  db,
		log: baseLog.With("repo", "UserSessionRepo"),
		now: time.Now,
	}
}

func (r *userSessionRepo) Create(dbc dbctx.Context, sessions []*types.UserSession) ([]*types.UserSession, error) {
	if len(sessions) == 0 {
		return []*types.UserSession{}, nil
	}
	if err := dbc.DB(r.db).Create(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *userSessionRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.UserSession, error) {
	var out []*types.UserSession
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.DB(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userSessionRepo) FullDeleteExpired(dbc dbctx.Context, before time.Time) (int64, error) {
	res := dbc.DB(r.db).Where("expires_at < ?", before).Delete(&types.UserSession{})
	return res.RowsAffected, res.Error
}

func (r *userSessionRepo) Put(ctx context.Context, sess *types.UserSession) error {
	if sess == nil {
		return errors.New("nil session")
	}
	_, err := r.Create(dbctx.New(ctx), []*types.UserSession{sess})
	return err
}

func (r *userSessionRepo) IsActive(ctx context.Context, id uuid.UUID) (bool, error) {
	rows, err := r.GetByIDs(dbctx.New(ctx), []uuid.UUID{id})
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, nil
	}
	return rows[0].Active(r.now()), nil
}

func (r *userSessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	return dbctx.New(ctx).DB(r.db).
		Model(&types.UserSession{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", r.now().UTC()).Error
}
