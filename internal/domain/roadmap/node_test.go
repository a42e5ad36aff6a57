package roadmap

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTree() Node {
	return Node{
		Title: "Learn Rust",
		Level: LevelBeginner,
		Children: []Node{
			{Title: "Ownership", Level: LevelBeginner},
			{Title: "Traits", Level: LevelIntermediate},
			{Title: "Unsafe", Level: LevelAdvanced},
			{Title: "Cargo", Level: LevelBeginner},
		},
	}
}

func TestAssignIDsAndValidate(t *testing.T) {
	tree := sampleTree()
	require.NoError(t, tree.Validate())

	tree.AssignIDs()
	require.NoError(t, tree.Validate())

	seen := map[string]bool{tree.ID: true}
	for _, c := range tree.Children {
		_, err := uuid.Parse(c.ID)
		require.NoError(t, err)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
	assert.True(t, tree.HasNode(tree.Children[2].ID))
	assert.False(t, tree.HasNode(tree.ID), "root is not a trackable node")
}

func TestValidateRejectsBadTrees(t *testing.T) {
	empty := sampleTree()
	empty.Title = "  "
	assert.ErrorIs(t, empty.Validate(), ErrEmptyTitle)

	noKids := sampleTree()
	noKids.Children = nil
	assert.ErrorIs(t, noKids.Validate(), ErrNoChildren)

	badLevel := sampleTree()
	badLevel.Children[1].Level = "Expert"
	assert.Error(t, badLevel.Validate())

	dup := sampleTree()
	dup.Children[0].ID = "a"
	dup.Children[1].ID = "a"
	assert.True(t, errors.Is(dup.Validate(), ErrDuplicateNode))
}

func TestGroupByLevelKeepsOrder(t *testing.T) {
	groups := sampleTree().GroupByLevel()
	require.Len(t, groups[LevelBeginner], 2)
	assert.Equal(t, "Ownership", groups[LevelBeginner][0].Title)
	assert.Equal(t, "Cargo", groups[LevelBeginner][1].Title)
	assert.Len(t, groups[LevelIntermediate], 1)
	assert.Len(t, groups[LevelAdvanced], 1)
}

func TestProgressIgnoresStrayKeysAndSkipped(t *testing.T) {
	tree := sampleTree()
	tree.AssignIDs()
	r := StoredRoadmap{
		Node: tree,
		NodeStatuses: map[string]NodeStatus{
			tree.Children[0].ID: StatusCompleted,
			tree.Children[1].ID: StatusSkipped,
			tree.Children[2].ID: StatusInProgress,
			"not-a-node":        StatusCompleted,
		},
	}
	p := r.Progress()
	assert.Equal(t, Progress{Total: 4, Completed: 1, Skipped: 1}, p)
	assert.InDelta(t, 100.0/3.0, p.Percent(), 0.0001)

	allSkipped := Progress{Total: 2, Skipped: 2}
	assert.Equal(t, 0.0, allSkipped.Percent())
}

func TestParseHelpers(t *testing.T) {
	l, err := ParseLevel("intermediate")
	require.NoError(t, err)
	assert.Equal(t, LevelIntermediate, l)
	_, err = ParseLevel("expert")
	assert.Error(t, err)

	s, err := ParseNodeStatus(" Completed ")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)
	_, err = ParseNodeStatus("done")
	assert.Error(t, err)

	assert.Equal(t, StatusNotStarted, StatusOf(nil, "x"))
	assert.Equal(t, "Ownership (Beginner)", NodeContent(Node{Title: " Ownership ", Level: LevelBeginner}))
}

func TestToStored(t *testing.T) {
	id := uuid.New()
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	row := &Roadmap{ID: id, UserID: "u1", Title: "Go", Level: "Beginner", Query: "learn go",
		Children: []Node{{ID: "n1", Title: "Syntax", Level: LevelBeginner}}, CreatedAt: created}
	out := ToStored(row, []*RoadmapNodeStatus{
		{RoadmapID: id, NodeID: "n1", Status: "completed"},
		{RoadmapID: uuid.New(), NodeID: "n1", Status: "skipped"},
	})
	require.NotNil(t, out)
	assert.Equal(t, id.String(), out.ID)
	assert.Equal(t, StatusCompleted, out.NodeStatuses["n1"])
	assert.Equal(t, created, *out.CreatedAt)
}
