package guest

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

// Defaults for NewMemoryStore.
const (
	DefaultMemoryTTL       = 30 * 24 * time.Hour
	DefaultMemoryMaxGuests = 10000
)

type memoryStore struct {
	mu        sync.Mutex
	guests    map[string]*memoryGuest
	ttl       time.Duration
	maxGuests int
	now       func() time.Time
}

type memoryGuest struct {
	order     []string // newest first
	snapshots map[string]roadmap.LocalSnapshot
	touched   time.Time
}

// NewMemoryStore is used when no Redis is configured and in tests. Data
// does not survive a restart.
func NewMemoryStore() RoadmapStore {
	return NewMemoryStoreWithLimits(DefaultMemoryTTL, DefaultMemoryMaxGuests)
}

// NewMemoryStoreWithLimits expires a guest ttl after its last write, like
// the Redis store, and evicts the least recently written guest once
// maxGuests are held. Zero values fall back to the defaults.
func NewMemoryStoreWithLimits(ttl time.Duration, maxGuests int) RoadmapStore {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	if maxGuests <= 0 {
		maxGuests = DefaultMemoryMaxGuests
	}
	return &memoryStore{
		guests:    map[string]*memoryGuest{},
		ttl:       ttl,
		maxGuests: maxGuests,
		now:       time.Now,
	}
}

// lookup never creates an entry; expired guests are dropped on sight.
func (m *memoryStore) lookup(id string) *memoryGuest {
	g, ok := m.guests[id]
	if !ok {
		return nil
	}
	if m.now().Sub(g.touched) > m.ttl {
		delete(m.guests, id)
		return nil
	}
	return g
}

// create is only reached from Save.
func (m *memoryStore) create(id string) *memoryGuest {
	if g := m.lookup(id); g != nil {
		return g
	}
	if len(m.guests) >= m.maxGuests {
		m.evict()
	}
	g := &memoryGuest{snapshots: map[string]roadmap.LocalSnapshot{}}
	m.guests[id] = g
	return g
}

// evict drops expired guests, then the oldest one if still at capacity.
func (m *memoryStore) evict() {
	now := m.now()
	var oldestID string
	var oldest time.Time
	for id, g := range m.guests {
		if now.Sub(g.touched) > m.ttl {
			delete(m.guests, id)
			continue
		}
		if oldestID == "" || g.touched.Before(oldest) {
			oldestID, oldest = id, g.touched
		}
	}
	if len(m.guests) >= m.maxGuests && oldestID != "" {
		delete(m.guests, oldestID)
	}
}

func (m *memoryStore) Save(_ context.Context, guestID string, snap roadmap.LocalSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.create(guestID)
	g.touched = m.now()

	id := snap.Roadmap.ID
	snap.NodeStatuses = copyStatuses(snap.NodeStatuses)
	g.snapshots[id] = snap
	g.order = append([]string{id}, removeID(g.order, id)...)
	if len(g.order) > roadmap.GuestHistoryLimit {
		for _, dropped := range g.order[roadmap.GuestHistoryLimit:] {
			delete(g.snapshots, dropped)
		}
		g.order = g.order[:roadmap.GuestHistoryLimit]
	}
	return nil
}

func (m *memoryStore) Get(_ context.Context, guestID, roadmapID string) (*roadmap.LocalSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.lookup(guestID)
	if g == nil {
		return nil, ErrNotFound
	}
	snap, ok := g.snapshots[roadmapID]
	if !ok {
		return nil, ErrNotFound
	}
	snap.NodeStatuses = copyStatuses(snap.NodeStatuses)
	return &snap, nil
}

func (m *memoryStore) History(_ context.Context, guestID string) ([]roadmap.HistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.lookup(guestID)
	if g == nil {
		return []roadmap.HistoryEntry{}, nil
	}
	out := make([]roadmap.HistoryEntry, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.snapshots[id].Entry())
	}
	return out, nil
}

func (m *memoryStore) List(_ context.Context, guestID string) ([]roadmap.LocalSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.lookup(guestID)
	if g == nil {
		return []roadmap.LocalSnapshot{}, nil
	}
	out := make([]roadmap.LocalSnapshot, 0, len(g.order))
	for _, id := range g.order {
		snap := g.snapshots[id]
		snap.NodeStatuses = copyStatuses(snap.NodeStatuses)
		out = append(out, snap)
	}
	return out, nil
}

func (m *memoryStore) SetNodeStatus(_ context.Context, guestID, roadmapID, nodeID string, status roadmap.NodeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.lookup(guestID)
	if g == nil {
		return ErrNotFound
	}
	snap, ok := g.snapshots[roadmapID]
	if !ok {
		return ErrNotFound
	}
	if snap.NodeStatuses == nil {
		snap.NodeStatuses = map[string]roadmap.NodeStatus{}
	}
	snap.NodeStatuses[nodeID] = status
	g.snapshots[roadmapID] = snap
	g.touched = m.now()
	return nil
}

func (m *memoryStore) Delete(_ context.Context, guestID string, roadmapIDs ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := m.lookup(guestID)
	if g == nil {
		return nil
	}
	for _, id := range roadmapIDs {
		delete(g.snapshots, id)
		g.order = removeID(g.order, id)
	}
	if len(g.order) == 0 {
		delete(m.guests, guestID)
	}
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func copyStatuses(in map[string]roadmap.NodeStatus) map[string]roadmap.NodeStatus {
	out := make(map[string]roadmap.NodeStatus, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
