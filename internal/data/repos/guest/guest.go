package guest

import (
	"context"
	"errors"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

var ErrNotFound = errors.New("guest roadmap not found")

// RoadmapStore keeps roadmaps for callers without an account, keyed by a
// guest id. It is the server-side local tier: nothing here is owned by a
// user, and entries can be promoted into the remote store after sign-in.
type RoadmapStore interface {
	// Save stores the snapshot and puts it at the head of the guest's
	// history, which is capped at roadmap.GuestHistoryLimit entries.
	Save(ctx context.Context, guestID string, snap roadmap.LocalSnapshot) error
	// Get returns ErrNotFound when the snapshot is absent.
	Get(ctx context.Context, guestID, roadmapID string) (*roadmap.LocalSnapshot, error)
	History(ctx context.Context, guestID string) ([]roadmap.HistoryEntry, error)
	List(ctx context.Context, guestID string) ([]roadmap.LocalSnapshot, error)
	SetNodeStatus(ctx context.Context, guestID, roadmapID, nodeID string, status roadmap.NodeStatus) error
	Delete(ctx context.Context, guestID string, roadmapIDs ...string) error
}
