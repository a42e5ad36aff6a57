package roadmap

import "time"

// GuestHistoryLimit caps how many entries a guest history keeps.
const GuestHistoryLimit = 50

// HistoryEntry is one line of a guest's local history, newest first.
type HistoryEntry struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Query   string    `json:"query"`
	SavedAt time.Time `json:"savedAt"`
}

// LocalSnapshot is a guest roadmap as kept outside the remote store, either
// by the guest tier or by a browser that uploads it for adoption.
type LocalSnapshot struct {
	Roadmap      Node                  `json:"roadmap"`
	Query        string                `json:"query"`
	NodeStatuses map[string]NodeStatus `json:"nodeStatuses"`
	SavedAt      time.Time             `json:"savedAt"`
}

func (s LocalSnapshot) Entry() HistoryEntry {
	return HistoryEntry{ID: s.Roadmap.ID, Title: s.Roadmap.Title, Query: s.Query, SavedAt: s.SavedAt}
}

// Stored renders the snapshot in the transient (ownerless) API shape.
func (s LocalSnapshot) Stored() *StoredRoadmap {
	statuses := s.NodeStatuses
	if statuses == nil {
		statuses = map[string]NodeStatus{}
	}
	return &StoredRoadmap{Node: s.Roadmap, Query: s.Query, NodeStatuses: statuses}
}
