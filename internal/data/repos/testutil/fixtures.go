package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

// SeedRoadmap stores a three-topic roadmap owned by userID.
func SeedRoadmap(tb testing.TB, ctx context.Context, tx *gorm.DB, userID, title string, createdAt time.Time) *types.Roadmap {
	tb.Helper()
	r := &types.Roadmap{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
		Level:  string(roadmap.LevelBeginner),
		Query:  title,
		Children: []roadmap.Node{
			{ID: uuid.NewString(), Title: title + " basics", Level: roadmap.LevelBeginner},
			{ID: uuid.NewString(), Title: title + " in practice", Level: roadmap.LevelIntermediate},
			{ID: uuid.NewString(), Title: title + " internals", Level: roadmap.LevelAdvanced},
		},
		CreatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed roadmap: %v", err)
	}
	return r
}

func SeedNodeStatus(tb testing.TB, ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, nodeID string, status roadmap.NodeStatus) *types.RoadmapNodeStatus {
	tb.Helper()
	s := &types.RoadmapNodeStatus{
		RoadmapID: roadmapID,
		NodeID:    nodeID,
		Status:    string(status),
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed node status: %v", err)
	}
	return s
}
