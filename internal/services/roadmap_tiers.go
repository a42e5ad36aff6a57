package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/data/repos/guest"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

const adoptConcurrency = 4

// ErrAdoptLimit is reported for each roadmap past roadmap.GuestHistoryLimit
// in a single Adopt call. Those roadmaps are left where they were.
var ErrAdoptLimit = fmt.Errorf("Only %d roadmaps can be imported at once. Import the rest again.", roadmap.GuestHistoryLimit)

// RoadmapTiers puts guest (local) and owned (remote) storage behind one
// type. Roadmaps move from local to remote only through Adopt.
type RoadmapTiers struct {
	local  repos.GuestRoadmapStore
	remote RoadmapStore
	log    *logger.Logger
	now    func() time.Time
}

func NewRoadmapTiers(local repos.GuestRoadmapStore, remote RoadmapStore, baseLog *logger.Logger) *RoadmapTiers {
	if local == nil {
		local = repos.NewGuestMemoryStore()
	}
	return &RoadmapTiers{
		local:  local,
		remote: remote,
		log:    baseLog.With("service", "RoadmapTiers"),
		now:    time.Now,
	}
}

func (t *RoadmapTiers) Remote() RoadmapStore { return t.remote }

// SaveLocal records a transient roadmap for a guest and returns its
// ownerless view.
func (t *RoadmapTiers) SaveLocal(ctx context.Context, guestID string, tree roadmap.Node, query string) (*roadmap.StoredRoadmap, error) {
	snap := roadmap.LocalSnapshot{
		Roadmap:      tree,
		Query:        query,
		NodeStatuses: map[string]roadmap.NodeStatus{},
		SavedAt:      t.now().UTC(),
	}
	if err := t.local.Save(ctx, guestID, snap); err != nil {
		return nil, fmt.Errorf("save guest roadmap: %w", err)
	}
	return snap.Stored(), nil
}

func (t *RoadmapTiers) LocalHistory(ctx context.Context, guestID string) ([]roadmap.HistoryEntry, error) {
	return t.local.History(ctx, guestID)
}

func (t *RoadmapTiers) GetLocal(ctx context.Context, guestID, roadmapID string) (*roadmap.StoredRoadmap, error) {
	snap, err := t.local.Get(ctx, guestID, roadmapID)
	if errors.Is(err, guest.ErrNotFound) {
		return nil, fmt.Errorf("guest roadmap %s: %w", roadmapID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return snap.Stored(), nil
}

// SetLocalStatus rejects node ids that are not topics of the roadmap.
func (t *RoadmapTiers) SetLocalStatus(ctx context.Context, guestID, roadmapID, nodeID string, status roadmap.NodeStatus) error {
	snap, err := t.local.Get(ctx, guestID, roadmapID)
	if errors.Is(err, guest.ErrNotFound) {
		return fmt.Errorf("guest roadmap %s: %w", roadmapID, ErrNotFound)
	}
	if err != nil {
		return err
	}
	if !snap.Roadmap.HasNode(nodeID) {
		return invalidArg("That topic is not part of this roadmap.", fmt.Errorf("unknown node %q", nodeID))
	}
	return t.local.SetNodeStatus(ctx, guestID, roadmapID, nodeID, status)
}

type AdoptedRoadmap struct {
	LocalID  string `json:"localId"`
	RemoteID string `json:"remoteId"`
	Title    string `json:"title"`
}

type AdoptFailure struct {
	LocalID string `json:"localId"`
	Error   string `json:"error"`
}

type AdoptResult struct {
	Adopted []AdoptedRoadmap `json:"adopted"`
	Failed  []AdoptFailure   `json:"failed"`
}

type adoptCandidate struct {
	snap      roadmap.LocalSnapshot
	fromGuest bool
}

// Adopt promotes a guest's roadmaps into the caller's remote storage. It
// takes everything in the guest tier for guestID plus uploaded snapshots
// (client-side history). Uploaded statuses override guest-tier statuses
// for the same roadmap. Each roadmap gets a new remote id; topic ids and
// statuses carry over. Promoted entries are removed from the guest tier.
func (t *RoadmapTiers) Adopt(ctx context.Context, caller *Caller, guestID string, uploaded []roadmap.LocalSnapshot) (*AdoptResult, error) {
	if caller == nil {
		return nil, ErrUnauthorized
	}
	cands, overflow, err := t.adoptCandidates(ctx, guestID, uploaded)
	if err != nil {
		return nil, err
	}
	res := &AdoptResult{Adopted: []AdoptedRoadmap{}, Failed: []AdoptFailure{}}
	for _, c := range overflow {
		res.Failed = append(res.Failed, AdoptFailure{LocalID: c.snap.Roadmap.ID, Error: ErrAdoptLimit.Error()})
	}
	if len(overflow) > 0 {
		t.log.Warn("adopt limit exceeded", "guest_id", guestID, "skipped", len(overflow))
	}
	if len(cands) == 0 {
		return res, nil
	}

	adopted := make([]*roadmap.StoredRoadmap, len(cands))
	failures := make([]error, len(cands))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(adoptConcurrency)
	for i := range cands {
		g.Go(func() error {
			c := cands[i]
			stored, err := t.remote.SaveWithStatuses(gctx, caller.UserID, c.snap.Roadmap, c.snap.Query, c.snap.NodeStatuses)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = err
				return nil
			}
			adopted[i] = stored
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("adopt: %w", err)
	}

	var promoted []string
	for i, c := range cands {
		localID := c.snap.Roadmap.ID
		if failures[i] != nil {
			t.log.Warn("guest roadmap not adopted", "guest_id", guestID, "roadmap_id", localID, "error", failures[i])
			res.Failed = append(res.Failed, AdoptFailure{LocalID: localID, Error: ToAPIError(failures[i]).Error()})
			continue
		}
		res.Adopted = append(res.Adopted, AdoptedRoadmap{LocalID: localID, RemoteID: adopted[i].ID, Title: adopted[i].Title})
		if c.fromGuest {
			promoted = append(promoted, localID)
		}
	}
	if len(promoted) > 0 {
		if err := t.local.Delete(ctx, guestID, promoted...); err != nil {
			t.log.Warn("adopted roadmaps left in guest tier", "guest_id", guestID, "count", len(promoted), "error", err)
		}
	}
	t.log.Info("guest roadmaps adopted", "user_id", caller.UserID, "guest_id", guestID, "adopted", len(res.Adopted), "failed", len(res.Failed))
	return res, nil
}

// adoptCandidates returns at most roadmap.GuestHistoryLimit candidates,
// guest-tier entries first; the rest come back as overflow.
func (t *RoadmapTiers) adoptCandidates(ctx context.Context, guestID string, uploaded []roadmap.LocalSnapshot) ([]adoptCandidate, []adoptCandidate, error) {
	var out []adoptCandidate
	index := map[string]int{}

	if strings.TrimSpace(guestID) != "" {
		snaps, err := t.local.List(ctx, guestID)
		if err != nil {
			return nil, nil, fmt.Errorf("list guest roadmaps: %w", err)
		}
		for _, s := range snaps {
			index[s.Roadmap.ID] = len(out)
			out = append(out, adoptCandidate{snap: s, fromGuest: true})
		}
	}
	for _, s := range uploaded {
		id := strings.TrimSpace(s.Roadmap.ID)
		if i, ok := index[id]; ok && id != "" {
			merged := out[i].snap.NodeStatuses
			if merged == nil {
				merged = map[string]roadmap.NodeStatus{}
			}
			for k, v := range s.NodeStatuses {
				merged[k] = v
			}
			out[i].snap.NodeStatuses = merged
			continue
		}
		if id != "" {
			index[id] = len(out)
		}
		out = append(out, adoptCandidate{snap: s})
	}
	if len(out) > roadmap.GuestHistoryLimit {
		return out[:roadmap.GuestHistoryLimit], out[roadmap.GuestHistoryLimit:], nil
	}
	return out, nil, nil
}
