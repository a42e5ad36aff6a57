package domain

import (
	"github.com/yungbote/roadmap-backend/internal/domain/auth"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

type Roadmap = roadmap.Roadmap
type RoadmapNodeStatus = roadmap.RoadmapNodeStatus

type UserSession = auth.UserSession

type Node = roadmap.Node
type StoredRoadmap = roadmap.StoredRoadmap
type Level = roadmap.Level
type NodeStatus = roadmap.NodeStatus

// Models lists every gorm model, in migration order.
func Models() []any {
	return []any{
		&Roadmap{},
		&RoadmapNodeStatus{},
		&UserSession{},
	}
}
