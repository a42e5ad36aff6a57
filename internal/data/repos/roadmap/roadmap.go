package roadmap

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type RoadmapRepo interface {
	Create(dbc dbctx.Context, roadmaps []*types.Roadmap) ([]*types.Roadmap, error)
	// GetByID returns nil, nil when no row matches.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error)
	// ListByUser returns the user's roadmaps newest first; limit <= 0 means all.
	ListByUser(dbc dbctx.Context, userID string, limit int) ([]*types.Roadmap, error)
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	repoLog := baseLog.With("repo", "RoadmapRepo")
	return &roadmapRepo{db: db, log: repoLog}
}

func (rr *roadmapRepo) Create(dbc dbctx.Context, roadmaps []*types.Roadmap) ([]*types.Roadmap, error) {
	if len(roadmaps) == 0 {
		return []*types.Roadmap{}, nil
	}
	now := time.Now().UTC()
	for _, r := range roadmaps {
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		r.UpdatedAt = now
	}
	if err := dbc.DB(rr.db).Create(&roadmaps).Error; err != nil {
		return nil, err
	}
	return roadmaps, nil
}

func (rr *roadmapRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Roadmap, error) {
	var out types.Roadmap
	err := dbc.DB(rr.db).Where("id = ?", id).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (rr *roadmapRepo) ListByUser(dbc dbctx.Context, userID string, limit int) ([]*types.Roadmap, error) {
	var results []*types.Roadmap
	q := dbc.DB(rr.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
