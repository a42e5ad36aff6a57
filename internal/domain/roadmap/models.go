package roadmap

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Roadmap is the persisted form of a StoredRoadmap. Node statuses live in
// their own table so a status write touches exactly one row.
type Roadmap struct {
	ID       uuid.UUID                 `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string                    `gorm:"not null;index:idx_roadmap_user_created,priority:1;column:user_id" json:"user_id"`
	Title    string                    `gorm:"not null;column:title" json:"title"`
	Level    string                    `gorm:"not null;column:level" json:"level"`
	Query    string                    `gorm:"type:text;not null;column:query" json:"query"`
	Children datatypes.JSONSlice[Node] `gorm:"column:children" json:"children"`

	CreatedAt time.Time      `gorm:"not null;index:idx_roadmap_user_created,priority:2" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Roadmap) TableName() string { return "roadmap" }

func (r *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type RoadmapNodeStatus struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_roadmap_node_status,priority:1;column:roadmap_id" json:"roadmap_id"`
	NodeID    string    `gorm:"not null;uniqueIndex:idx_roadmap_node_status,priority:2;column:node_id" json:"node_id"`
	Status    string    `gorm:"not null;column:status" json:"status"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (RoadmapNodeStatus) TableName() string { return "roadmap_node_status" }

func (s *RoadmapNodeStatus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// ToStored assembles the API shape from a row and its status rows.
func ToStored(r *Roadmap, statuses []*RoadmapNodeStatus) *StoredRoadmap {
	if r == nil {
		return nil
	}
	created := r.CreatedAt.UTC()
	out := &StoredRoadmap{
		Node: Node{
			ID:       r.ID.String(),
			Title:    r.Title,
			Level:    Level(r.Level),
			Children: append([]Node(nil), r.Children...),
		},
		UserID:       r.UserID,
		Query:        r.Query,
		NodeStatuses: make(map[string]NodeStatus, len(statuses)),
		CreatedAt:    &created,
	}
	for _, s := range statuses {
		if s == nil || s.RoadmapID != r.ID {
			continue
		}
		out.NodeStatuses[s.NodeID] = NodeStatus(s.Status)
	}
	return out
}
