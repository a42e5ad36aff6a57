package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

func TestStoreSaveThenGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := newOwner()
	tree := sampleTree("Learn Go")

	saved, err := store.Save(ctx, owner, tree, "learn go")
	require.NoError(t, err)
	require.NotNil(t, saved.CreatedAt)
	assert.NotEqual(t, tree.ID, saved.ID, "records get a server id")

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Learn Go", got.Title)
	assert.Equal(t, owner, got.UserID)
	assert.Equal(t, "learn go", got.Query)
	assert.Empty(t, got.NodeStatuses)
	assert.NotNil(t, got.CreatedAt)
	assert.Equal(t, tree.Children, got.Children)
}

func TestStoreGetUnknown(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(context.Background(), "6f1c2b9e-3f9b-4a55-9d8e-1d2f3a4b5c6d")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStoreUpdateNodeStatusIsTargetedAndIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tree := sampleTree("Rust")
	saved, err := store.Save(ctx, newOwner(), tree, "rust")
	require.NoError(t, err)

	a, b := tree.Children[0].ID, tree.Children[1].ID
	require.NoError(t, store.UpdateNodeStatus(ctx, saved.ID, b, roadmap.StatusInProgress))
	for i := 0; i < 2; i++ {
		require.NoError(t, store.UpdateNodeStatus(ctx, saved.ID, a, roadmap.StatusCompleted))
	}

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]roadmap.NodeStatus{
		a: roadmap.StatusCompleted,
		b: roadmap.StatusInProgress,
	}, got.NodeStatuses)
}

func TestStoreConcurrentWritesSameNodeLastWriteWins(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tree := sampleTree("Piano")
	saved, err := store.Save(ctx, newOwner(), tree, "piano")
	require.NoError(t, err)
	target, other := tree.Children[0].ID, tree.Children[2].ID
	require.NoError(t, store.UpdateNodeStatus(ctx, saved.ID, other, roadmap.StatusSkipped))

	var wg sync.WaitGroup
	for _, st := range []roadmap.NodeStatus{roadmap.StatusCompleted, roadmap.StatusInProgress} {
		wg.Add(1)
		go func(st roadmap.NodeStatus) {
			defer wg.Done()
			assert.NoError(t, store.UpdateNodeStatus(ctx, saved.ID, target, st))
		}(st)
	}
	wg.Wait()

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Contains(t, []roadmap.NodeStatus{roadmap.StatusCompleted, roadmap.StatusInProgress}, got.NodeStatuses[target])
	assert.Equal(t, roadmap.StatusSkipped, got.NodeStatuses[other])
	assert.Len(t, got.NodeStatuses, 2)
}

func TestStoreListByOwnerNewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	owner := newOwner()
	for _, title := range []string{"first", "second", "third"} {
		_, err := store.Save(ctx, owner, sampleTree(title), title)
		require.NoError(t, err)
		time.Sleep(5 * time.Millisecond)
	}
	_, err := store.Save(ctx, newOwner(), sampleTree("someone else"), "x")
	require.NoError(t, err)

	list, err := store.ListByOwner(ctx, owner, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "third", list[0].Title)
	assert.Equal(t, "first", list[2].Title)

	limited, err := store.ListByOwner(ctx, owner, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStoreSaveWithStatusesDropsUnknownNodes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	tree := sampleTree("Chess")
	saved, err := store.SaveWithStatuses(ctx, newOwner(), tree, "chess", map[string]roadmap.NodeStatus{
		tree.Children[0].ID: roadmap.StatusCompleted,
		"ghost":             roadmap.StatusCompleted,
	})
	require.NoError(t, err)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]roadmap.NodeStatus{tree.Children[0].ID: roadmap.StatusCompleted}, got.NodeStatuses)
}

func TestDashboardStatsZero(t *testing.T) {
	store := newTestStore(t)
	stats, err := store.DashboardStats(context.Background(), newOwner(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.RoadmapsCreated)
	assert.Equal(t, 0, stats.SkillsCompleted)
	assert.Equal(t, 0, stats.AverageProgress)
	assert.NotNil(t, stats.TopicDistribution)
	assert.Empty(t, stats.TopicDistribution)
}

func TestComputeDashboardStats(t *testing.T) {
	mk := func(query string, statuses ...roadmap.NodeStatus) *roadmap.StoredRoadmap {
		tree := sampleTree(query)
		r := &roadmap.StoredRoadmap{Node: tree, Query: query, NodeStatuses: map[string]roadmap.NodeStatus{}}
		for i, st := range statuses {
			r.NodeStatuses[tree.Children[i].ID] = st
		}
		return r
	}
	list := []*roadmap.StoredRoadmap{
		// 2 completed of 3 trackable
		mk("Learn React", roadmap.StatusCompleted, roadmap.StatusCompleted),
		// 1 completed of 2 trackable (one skipped)
		mk("python for data", roadmap.StatusCompleted, roadmap.StatusSkipped),
		// nothing trackable contributes 0
		mk("public speaking", roadmap.StatusSkipped, roadmap.StatusSkipped, roadmap.StatusSkipped),
		mk("Woodworking"),
	}
	stats := ComputeDashboardStats(list, nil)
	assert.Equal(t, 4, stats.RoadmapsCreated)
	assert.Equal(t, 3, stats.SkillsCompleted)
	// (66.67 + 50 + 0 + 0) / 4 = 29.17
	assert.Equal(t, 29, stats.AverageProgress)
	assert.Equal(t, []TopicCount{
		{Name: "Soft Skills", Value: 1},
		{Name: "Data Science", Value: 1},
		{Name: "Web Dev & Design", Value: 1},
		{Name: "Other", Value: 1},
	}, stats.TopicDistribution)
}

func TestTopicCategorizerPriority(t *testing.T) {
	c := NewTopicCategorizer(nil)
	assert.Equal(t, "Soft Skills", c.Categorize("Become a team leader in AI"))
	assert.Equal(t, "AI/ML", c.Categorize("Machine Learning with Python"))
	assert.Equal(t, "Data Science", c.Categorize("Python basics"))
	assert.Equal(t, "Web Dev & Design", c.Categorize("React hooks"))
	assert.Equal(t, OtherCategory, c.Categorize("Knitting"))

	custom := NewTopicCategorizer([]TopicCategory{{Name: "Music", Keywords: []string{" Piano "}}})
	assert.Equal(t, "Music", custom.Categorize("learn piano"))
	assert.Equal(t, OtherCategory, custom.Categorize("react"))
}
