package services

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	"github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/llm"
)

func newTestStore(t *testing.T) RoadmapStore {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return NewRoadmapStore(db, log, repos.NewRoadmapRepo(db, log), repos.NewNodeStatusRepo(db, log), nil)
}

type actionsFixture struct {
	actions *Actions
	store   RoadmapStore
	guests  repos.GuestRoadmapStore
	mock    *llm.MockProvider
}

func newActionsFixture(t *testing.T) *actionsFixture {
	t.Helper()
	log := testutil.Logger(t)
	store := newTestStore(t)
	guests := repos.NewGuestMemoryStore()
	mock := llm.NewMockProvider()
	gen := NewContentGenerator(mock, DefaultGeneratorConfig(), log)
	return &actionsFixture{
		actions: NewActions(log, gen, NewRoadmapTiers(guests, store, log)),
		store:   store,
		guests:  guests,
		mock:    mock,
	}
}

func newOwner() string { return "uid-" + uuid.NewString() }

func sampleTree(title string) roadmap.Node {
	n := roadmap.Node{
		Title: title,
		Level: roadmap.LevelBeginner,
		Children: []roadmap.Node{
			{Title: "Basics", Level: roadmap.LevelBeginner},
			{Title: "Patterns", Level: roadmap.LevelIntermediate},
			{Title: "Internals", Level: roadmap.LevelAdvanced},
		},
	}
	n.AssignIDs()
	return n
}
