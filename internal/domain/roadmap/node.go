package roadmap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Node is a single topic. A roadmap is a root Node whose Children form one
// flat, level-tagged list; deeper nesting is tolerated on input but never
// produced or relied upon.
type Node struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Level    Level  `json:"level"`
	Children []Node `json:"children,omitempty"`
}

// StoredRoadmap is a roadmap plus ownership and progress. UserID is empty
// and CreatedAt nil for transient guest roadmaps.
type StoredRoadmap struct {
	Node
	UserID       string                `json:"userId,omitempty"`
	Query        string                `json:"query"`
	NodeStatuses map[string]NodeStatus `json:"nodeStatuses"`
	CreatedAt    *time.Time            `json:"createdAt,omitempty"`
}

var (
	ErrEmptyTitle    = errors.New("roadmap title is empty")
	ErrNoChildren    = errors.New("roadmap has no topics")
	ErrDuplicateNode = errors.New("duplicate node id")
)

// Validate checks the root and its direct children.
func (n Node) Validate() error {
	if strings.TrimSpace(n.Title) == "" {
		return ErrEmptyTitle
	}
	if !n.Level.Valid() {
		return fmt.Errorf("root: invalid level %q", n.Level)
	}
	if len(n.Children) == 0 {
		return ErrNoChildren
	}
	seen := map[string]struct{}{n.ID: {}}
	for i, c := range n.Children {
		if strings.TrimSpace(c.Title) == "" {
			return fmt.Errorf("child %d: %w", i, ErrEmptyTitle)
		}
		if !c.Level.Valid() {
			return fmt.Errorf("child %d: invalid level %q", i, c.Level)
		}
		if c.ID != "" {
			if _, dup := seen[c.ID]; dup {
				return fmt.Errorf("child %d: %w %q", i, ErrDuplicateNode, c.ID)
			}
			seen[c.ID] = struct{}{}
		}
	}
	return nil
}

// AssignIDs gives the root and every descendant a fresh UUID.
func (n *Node) AssignIDs() {
	n.ID = uuid.NewString()
	for i := range n.Children {
		n.Children[i].AssignIDs()
	}
}

func (n Node) HasNode(id string) bool {
	for _, c := range n.Children {
		if c.ID == id {
			return true
		}
	}
	return false
}

// GroupByLevel buckets the children by difficulty, preserving order.
func (n Node) GroupByLevel() map[Level][]Node {
	out := make(map[Level][]Node, len(Levels))
	for _, l := range Levels {
		out[l] = nil
	}
	for _, c := range n.Children {
		out[c.Level] = append(out[c.Level], c)
	}
	return out
}

// NodeContent is the context string handed to the content generators.
func NodeContent(n Node) string {
	return fmt.Sprintf("%s (%s)", strings.TrimSpace(n.Title), n.Level)
}

// Progress counts completed and skipped topics among the children. Status
// keys for ids that are not children are ignored.
type Progress struct {
	Total     int
	Completed int
	Skipped   int
}

func (p Progress) Trackable() int { return p.Total - p.Skipped }

// Percent is completed/trackable*100, or 0 when nothing is trackable.
func (p Progress) Percent() float64 {
	if p.Trackable() <= 0 {
		return 0
	}
	return float64(p.Completed) / float64(p.Trackable()) * 100
}

func (r StoredRoadmap) Progress() Progress {
	p := Progress{Total: len(r.Children)}
	for _, c := range r.Children {
		switch StatusOf(r.NodeStatuses, c.ID) {
		case StatusCompleted:
			p.Completed++
		case StatusSkipped:
			p.Skipped++
		}
	}
	return p
}
