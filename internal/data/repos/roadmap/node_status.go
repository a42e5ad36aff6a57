package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

type NodeStatusRepo interface {
	// Upsert writes exactly one (roadmap, node) row; the last writer wins.
	Upsert(dbc dbctx.Context, roadmapID uuid.UUID, nodeID string, status string) error
	UpsertMany(dbc dbctx.Context, rows []*types.RoadmapNodeStatus) error
	ListByRoadmapIDs(dbc dbctx.Context, roadmapIDs []uuid.UUID) ([]*types.RoadmapNodeStatus, error)
}

type nodeStatusRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNodeStatusRepo(db *gorm.DB, baseLog *logger.Logger) NodeStatusRepo {
	repoLog := baseLog.With("repo", "NodeStatusRepo")
	return &nodeStatusRepo{db: db, log: repoLog}
}

var onRoadmapNode = clause.OnConflict{
	Columns:   []clause.Column{{Name: "roadmap_id"}, {Name: "node_id"}},
	DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
}

func (nr *nodeStatusRepo) Upsert(dbc dbctx.Context, roadmapID uuid.UUID, nodeID string, status string) error {
	row := &types.RoadmapNodeStatus{
		RoadmapID: roadmapID,
		NodeID:    nodeID,
		Status:    status,
		UpdatedAt: time.Now().UTC(),
	}
	return dbc.DB(nr.db).Clauses(onRoadmapNode).Create(row).Error
}

func (nr *nodeStatusRepo) UpsertMany(dbc dbctx.Context, rows []*types.RoadmapNodeStatus) error {
	if len(rows) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, r := range rows {
		r.UpdatedAt = now
	}
	return dbc.DB(nr.db).Clauses(onRoadmapNode).Create(&rows).Error
}

func (nr *nodeStatusRepo) ListByRoadmapIDs(dbc dbctx.Context, roadmapIDs []uuid.UUID) ([]*types.RoadmapNodeStatus, error) {
	var results []*types.RoadmapNodeStatus
	if len(roadmapIDs) == 0 {
		return results, nil
	}
	if err := dbc.DB(nr.db).
		Where("roadmap_id IN ?", roadmapIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
