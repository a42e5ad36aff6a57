package services

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/apierr"
)

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	var ae *apierr.Error
	require.ErrorAs(t, err, &ae)
	return ae.Status
}

const learnPython = `{"title": "Python", "level": "Beginner", "children": [
	{"title": "Syntax", "level": "Beginner"}, {"title": "Types", "level": "Beginner"}, {"title": "Control flow", "level": "Beginner"},
	{"title": "Modules", "level": "Intermediate"}, {"title": "Testing", "level": "Intermediate"}, {"title": "Packaging", "level": "Intermediate"},
	{"title": "Async", "level": "Advanced"}, {"title": "C extensions", "level": "Advanced"}, {"title": "Performance", "level": "Advanced"}
]}`

func TestGenerateRoadmapForUserAuthenticatedVsGuest(t *testing.T) {
	f := newActionsFixture(t)
	ctx := context.Background()
	f.mock.AddJSON(learnPython)
	f.mock.AddJSON(learnPython)
	f.mock.AddJSON(learnPython)

	caller := &Caller{UserID: newOwner()}
	owned, err := f.actions.GenerateRoadmapForUser(ctx, caller, "", "Learn Python")
	require.NoError(t, err)
	assert.Equal(t, caller.UserID, owned.UserID)
	assert.NotNil(t, owned.CreatedAt)
	for _, lvl := range roadmap.Levels {
		assert.GreaterOrEqual(t, len(owned.GroupByLevel()[lvl]), 3)
	}

	guest, err := f.actions.GenerateRoadmapForUser(ctx, nil, "", "Learn Python")
	require.NoError(t, err)
	assert.Empty(t, guest.UserID)
	assert.Nil(t, guest.CreatedAt)
	assert.NotEmpty(t, guest.ID)
	assert.Len(t, guest.Children, len(owned.Children))

	kept, err := f.actions.GenerateRoadmapForUser(ctx, nil, "guest-1", "Learn Python")
	require.NoError(t, err)
	hist, err := f.actions.GuestHistory(ctx, "guest-1")
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, kept.ID, hist[0].ID)
	assert.Equal(t, "Learn Python", hist[0].Query)
}

func TestGenerateRoadmapForUserMapsFailures(t *testing.T) {
	f := newActionsFixture(t)
	f.mock.AddJSON(`{"title": "", "level": "Beginner", "children": [{"title": "a", "level": "Beginner"}]}`)

	_, err := f.actions.GenerateRoadmapForUser(context.Background(), nil, "", "x")
	assert.Equal(t, http.StatusBadGateway, statusOf(t, err))
}

func TestFetchRoadmapOwnership(t *testing.T) {
	f := newActionsFixture(t)
	ctx := context.Background()
	owner := &Caller{UserID: newOwner()}
	saved, err := f.store.Save(ctx, owner.UserID, sampleTree("Mine"), "mine")
	require.NoError(t, err)

	got, err := f.actions.FetchRoadmap(ctx, owner, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", got.Title)

	_, err = f.actions.FetchRoadmap(ctx, nil, saved.ID)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	_, forbidden := f.actions.FetchRoadmap(ctx, &Caller{UserID: newOwner()}, saved.ID)
	_, missing := f.actions.FetchRoadmap(ctx, owner, "00000000-0000-0000-0000-000000000001")
	assert.Equal(t, http.StatusNotFound, statusOf(t, forbidden))
	assert.Equal(t, http.StatusNotFound, statusOf(t, missing))
	assert.Equal(t, missing.Error(), forbidden.Error(), "forbidden and missing are indistinguishable")
	assert.Equal(t, "Roadmap not found or you don't have permission to view it.", forbidden.Error())
}

func TestUpdateStatusPolicy(t *testing.T) {
	f := newActionsFixture(t)
	ctx := context.Background()
	owner := &Caller{UserID: newOwner()}
	tree := sampleTree("Drums")
	saved, err := f.store.Save(ctx, owner.UserID, tree, "drums")
	require.NoError(t, err)
	nodeID := tree.Children[1].ID

	assert.Equal(t, http.StatusUnauthorized, statusOf(t, f.actions.UpdateStatus(ctx, nil, saved.ID, nodeID, "completed")))
	assert.Equal(t, http.StatusNotFound, statusOf(t, f.actions.UpdateStatus(ctx, &Caller{UserID: newOwner()}, saved.ID, nodeID, "completed")))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, f.actions.UpdateStatus(ctx, owner, saved.ID, "ghost", "completed")))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, f.actions.UpdateStatus(ctx, owner, saved.ID, nodeID, "done")))

	require.NoError(t, f.actions.UpdateStatus(ctx, owner, saved.ID, nodeID, "completed"))
	got, err := f.actions.FetchRoadmap(ctx, owner, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]roadmap.NodeStatus{nodeID: roadmap.StatusCompleted}, got.NodeStatuses)
}

func TestDashboardAndHistory(t *testing.T) {
	f := newActionsFixture(t)
	ctx := context.Background()
	owner := &Caller{UserID: newOwner()}

	view, err := f.actions.Dashboard(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Stats.RoadmapsCreated)
	assert.Empty(t, view.RecentRoadmaps)

	for _, q := range []string{"react", "python", "public speaking", "ai ethics"} {
		_, err := f.store.Save(ctx, owner.UserID, sampleTree(q), q)
		require.NoError(t, err)
	}
	view, err = f.actions.Dashboard(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Stats.RoadmapsCreated)
	assert.Len(t, view.RecentRoadmaps, RecentRoadmapsLimit)
	assert.Len(t, view.Stats.TopicDistribution, 4)

	hist, err := f.actions.History(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, hist, 4)

	_, err = f.actions.Dashboard(ctx, nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	_, err = f.actions.History(ctx, nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestDailyChallengeTopics(t *testing.T) {
	f := newActionsFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		f.mock.AddJSON(`{"challenge": "Do a thing", "estimatedTime": "15 minutes"}`)
	}

	out, err := f.actions.DailyChallenge(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "Learning something new", out.Topic)
	assert.Equal(t, roadmap.LevelBeginner, out.Level)

	owner := &Caller{UserID: newOwner()}
	out, err = f.actions.DailyChallenge(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Setting a new learning goal", out.Topic)

	tree := sampleTree("Guitar")
	saved, err := f.store.Save(ctx, owner.UserID, tree, "guitar")
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateNodeStatus(ctx, saved.ID, tree.Children[0].ID, roadmap.StatusCompleted))
	require.NoError(t, f.store.UpdateNodeStatus(ctx, saved.ID, tree.Children[1].ID, roadmap.StatusSkipped))
	f.actions.pick = func(int) int { return 0 }

	out, err = f.actions.DailyChallenge(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Internals", out.Topic, "open topics are preferred")
	assert.Equal(t, roadmap.LevelAdvanced, out.Level)
	assert.Equal(t, saved.ID, out.RoadmapID)
	assert.Equal(t, "Do a thing", out.Challenge.Challenge)
}

func TestGuestStatusAndAdopt(t *testing.T) {
	f := newActionsFixture(t)
	ctx := context.Background()
	f.mock.AddJSON(learnPython)

	local, err := f.actions.GenerateRoadmapForUser(ctx, nil, "guest-9", "Learn Python")
	require.NoError(t, err)
	nodeID := local.Children[0].ID

	require.NoError(t, f.actions.UpdateGuestStatus(ctx, "guest-9", local.ID, nodeID, "completed"))
	assert.Equal(t, http.StatusBadRequest, statusOf(t, f.actions.UpdateGuestStatus(ctx, "guest-9", local.ID, "ghost", "completed")))
	assert.Equal(t, http.StatusNotFound, statusOf(t, f.actions.UpdateGuestStatus(ctx, "guest-0", local.ID, nodeID, "completed")))

	snap, err := f.actions.GuestRoadmap(ctx, "guest-9", local.ID)
	require.NoError(t, err)
	assert.Equal(t, roadmap.StatusCompleted, snap.NodeStatuses[nodeID])

	// A roadmap that only ever lived in the browser.
	browserTree := sampleTree("Browser only")
	uploaded := []roadmap.LocalSnapshot{{
		Roadmap:      browserTree,
		Query:        "browser",
		NodeStatuses: map[string]roadmap.NodeStatus{browserTree.Children[2].ID: roadmap.StatusInProgress},
	}}

	_, err = f.actions.Adopt(ctx, nil, "guest-9", uploaded)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))

	owner := &Caller{UserID: newOwner()}
	res, err := f.actions.Adopt(ctx, owner, "guest-9", uploaded)
	require.NoError(t, err)
	require.Len(t, res.Adopted, 2)
	assert.Empty(t, res.Failed)

	byLocal := map[string]AdoptedRoadmap{}
	for _, a := range res.Adopted {
		assert.NotEqual(t, a.LocalID, a.RemoteID, "adopted roadmaps get server ids")
		byLocal[a.LocalID] = a
	}

	remote, err := f.actions.FetchRoadmap(ctx, owner, byLocal[local.ID].RemoteID)
	require.NoError(t, err)
	assert.Equal(t, roadmap.StatusCompleted, remote.NodeStatuses[nodeID], "guest progress survives sign-in")

	remote, err = f.actions.FetchRoadmap(ctx, owner, byLocal[browserTree.ID].RemoteID)
	require.NoError(t, err)
	assert.Equal(t, roadmap.StatusInProgress, remote.NodeStatuses[browserTree.Children[2].ID])

	hist, err := f.actions.GuestHistory(ctx, "guest-9")
	require.NoError(t, err)
	assert.Empty(t, hist, "promoted roadmaps leave the guest tier")

	again, err := f.actions.Adopt(ctx, owner, "guest-9", nil)
	require.NoError(t, err)
	assert.Empty(t, again.Adopted)
}

func TestAdoptReportsRoadmapsPastTheLimit(t *testing.T) {
	f := newActionsFixture(t)
	ctx := context.Background()

	uploaded := make([]roadmap.LocalSnapshot, 0, roadmap.GuestHistoryLimit+5)
	for i := 0; i < roadmap.GuestHistoryLimit+5; i++ {
		uploaded = append(uploaded, roadmap.LocalSnapshot{Roadmap: sampleTree(fmt.Sprintf("Topic %d", i)), Query: "topic"})
	}

	res, err := f.actions.Adopt(ctx, &Caller{UserID: newOwner()}, "", uploaded)
	require.NoError(t, err)
	assert.Len(t, res.Adopted, roadmap.GuestHistoryLimit)
	require.Len(t, res.Failed, 5)
	assert.Equal(t, len(uploaded), len(res.Adopted)+len(res.Failed), "every upload is accounted for")
	for i, failed := range res.Failed {
		assert.Equal(t, uploaded[roadmap.GuestHistoryLimit+i].Roadmap.ID, failed.LocalID)
		assert.Equal(t, ErrAdoptLimit.Error(), failed.Error)
	}
}
