package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// RoadmapStore is the persistence gateway for owned roadmaps. It never
// checks ownership; callers do. Store errors are returned wrapped.
type RoadmapStore interface {
	// Save creates a record with a fresh id, empty statuses and a server
	// timestamp.
	Save(ctx context.Context, ownerID string, tree roadmap.Node, query string) (*roadmap.StoredRoadmap, error)
	// SaveWithStatuses is Save plus initial statuses, in one transaction.
	// Status keys that are not topics of tree are dropped.
	SaveWithStatuses(ctx context.Context, ownerID string, tree roadmap.Node, query string, statuses map[string]roadmap.NodeStatus) (*roadmap.StoredRoadmap, error)
	// Get returns ErrNotFound for unknown or malformed ids.
	Get(ctx context.Context, id string) (*roadmap.StoredRoadmap, error)
	// ListByOwner returns newest first; limit <= 0 means all.
	ListByOwner(ctx context.Context, ownerID string, limit int) ([]*roadmap.StoredRoadmap, error)
	// UpdateNodeStatus writes one (roadmap, node) entry; last write wins.
	UpdateNodeStatus(ctx context.Context, roadmapID, nodeID string, status roadmap.NodeStatus) error
	// DashboardStats aggregates over prefetched when non-nil, else loads
	// the owner's roadmaps.
	DashboardStats(ctx context.Context, ownerID string, prefetched []*roadmap.StoredRoadmap) (*DashboardStats, error)
}

type roadmapStore struct {
	db         *gorm.DB
	log        *logger.Logger
	roadmaps   repos.RoadmapRepo
	statuses   repos.NodeStatusRepo
	categories *TopicCategorizer
}

func NewRoadmapStore(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmaps repos.RoadmapRepo,
	statuses repos.NodeStatusRepo,
	categories *TopicCategorizer,
) RoadmapStore {
	if categories == nil {
		categories = NewTopicCategorizer(nil)
	}
	return &roadmapStore{
		db:         db,
		log:        baseLog.With("service", "RoadmapStore"),
		roadmaps:   roadmaps,
		statuses:   statuses,
		categories: categories,
	}
}

func (s *roadmapStore) Save(ctx context.Context, ownerID string, tree roadmap.Node, query string) (*roadmap.StoredRoadmap, error) {
	return s.SaveWithStatuses(ctx, ownerID, tree, query, nil)
}

func (s *roadmapStore) SaveWithStatuses(ctx context.Context, ownerID string, tree roadmap.Node, query string, statuses map[string]roadmap.NodeStatus) (*roadmap.StoredRoadmap, error) {
	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("save roadmap: %w", ErrUnauthorized)
	}
	children := make([]roadmap.Node, len(tree.Children))
	for i, c := range tree.Children {
		c.Children = nil
		if c.ID == "" {
			c.ID = uuid.NewString()
		}
		children[i] = c
	}
	check := roadmap.Node{ID: "root", Title: tree.Title, Level: tree.Level, Children: children}
	if !check.Level.Valid() {
		check.Level = roadmap.LevelBeginner
	}
	if err := check.Validate(); err != nil {
		return nil, invalidArg("The roadmap is malformed.", err)
	}

	row := &types.Roadmap{
		ID:       uuid.New(),
		UserID:   ownerID,
		Title:    strings.TrimSpace(check.Title),
		Level:    string(check.Level),
		Query:    query,
		Children: children,
	}
	var rows []*types.RoadmapNodeStatus
	for nodeID, st := range statuses {
		if !check.HasNode(nodeID) || !st.Valid() || st == roadmap.StatusNotStarted {
			continue
		}
		rows = append(rows, &types.RoadmapNodeStatus{RoadmapID: row.ID, NodeID: nodeID, Status: string(st)})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.New(ctx).WithTx(tx)
		if _, err := s.roadmaps.Create(dbc, []*types.Roadmap{row}); err != nil {
			return err
		}
		return s.statuses.UpsertMany(dbc, rows)
	})
	if err != nil {
		return nil, fmt.Errorf("save roadmap: %w", err)
	}
	s.log.Debug("roadmap saved", "owner_id", ownerID, "roadmap_id", row.ID, "topics", len(children))
	return roadmap.ToStored(row, rows), nil
}

func (s *roadmapStore) Get(ctx context.Context, id string) (*roadmap.StoredRoadmap, error) {
	rid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("get roadmap %q: %w", id, ErrNotFound)
	}
	dbc := dbctx.New(ctx)
	row, err := s.roadmaps.GetByID(dbc, rid)
	if err != nil {
		return nil, fmt.Errorf("get roadmap: %w", err)
	}
	if row == nil {
		return nil, fmt.Errorf("get roadmap %s: %w", rid, ErrNotFound)
	}
	sts, err := s.statuses.ListByRoadmapIDs(dbc, []uuid.UUID{rid})
	if err != nil {
		return nil, fmt.Errorf("get roadmap statuses: %w", err)
	}
	return roadmap.ToStored(row, sts), nil
}

func (s *roadmapStore) ListByOwner(ctx context.Context, ownerID string, limit int) ([]*roadmap.StoredRoadmap, error) {
	dbc := dbctx.New(ctx)
	rows, err := s.roadmaps.ListByUser(dbc, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	out := make([]*roadmap.StoredRoadmap, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	sts, err := s.statuses.ListByRoadmapIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("list roadmap statuses: %w", err)
	}
	byRoadmap := make(map[uuid.UUID][]*types.RoadmapNodeStatus, len(rows))
	for _, st := range sts {
		byRoadmap[st.RoadmapID] = append(byRoadmap[st.RoadmapID], st)
	}
	for _, r := range rows {
		out = append(out, roadmap.ToStored(r, byRoadmap[r.ID]))
	}
	return out, nil
}

func (s *roadmapStore) UpdateNodeStatus(ctx context.Context, roadmapID, nodeID string, status roadmap.NodeStatus) error {
	rid, err := uuid.Parse(strings.TrimSpace(roadmapID))
	if err != nil {
		return fmt.Errorf("update node status %q: %w", roadmapID, ErrNotFound)
	}
	if !status.Valid() {
		return invalidArg("Unknown status.", fmt.Errorf("status %q", status))
	}
	if err := s.statuses.Upsert(dbctx.New(ctx), rid, nodeID, string(status)); err != nil {
		return fmt.Errorf("update node status: %w", err)
	}
	return nil
}

func (s *roadmapStore) DashboardStats(ctx context.Context, ownerID string, prefetched []*roadmap.StoredRoadmap) (*DashboardStats, error) {
	list := prefetched
	if list == nil {
		var err error
		list, err = s.ListByOwner(ctx, ownerID, 0)
		if err != nil {
			return nil, err
		}
	}
	return ComputeDashboardStats(list, s.categories), nil
}
