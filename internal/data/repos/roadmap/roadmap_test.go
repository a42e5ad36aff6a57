package roadmap

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/roadmap-backend/internal/domain"
	domroadmap "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

func newRoadmap(userID, title string, created time.Time) *types.Roadmap {
	return &types.Roadmap{
		UserID: userID,
		Title:  title,
		Level:  string(domroadmap.LevelBeginner),
		Query:  "learn " + title,
		Children: []domroadmap.Node{
			{ID: "n1", Title: "Basics", Level: domroadmap.LevelBeginner},
			{ID: "n2", Title: "Patterns", Level: domroadmap.LevelIntermediate},
		},
		CreatedAt: created,
	}
}

func TestRoadmapRepo(t *testing.T) {
	conn := testutil.DB(t)
	repo := NewRoadmapRepo(conn, testutil.Logger(t))
	dbc := dbctx.New(context.Background())

	base := time.Now().UTC().Add(-time.Hour)
	created, err := repo.Create(dbc, []*types.Roadmap{
		newRoadmap("alice", "Go", base),
		newRoadmap("alice", "Rust", base.Add(time.Minute)),
		newRoadmap("bob", "Python", base.Add(2*time.Minute)),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: unexpected result: %+v", created)
	}

	got, err := repo.GetByID(dbc, created[0].ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Title != "Go" || len(got.Children) != 2 || got.Children[1].Title != "Patterns" {
		t.Fatalf("GetByID: unexpected result: %+v", got)
	}

	missing, err := repo.GetByID(dbc, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("GetByID (missing): got=%+v err=%v", missing, err)
	}

	list, err := repo.ListByUser(dbc, "alice", 0)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 2 || list[0].Title != "Rust" || list[1].Title != "Go" {
		t.Fatalf("ListByUser: expected newest first, got %+v", list)
	}

	limited, err := repo.ListByUser(dbc, "alice", 1)
	if err != nil || len(limited) != 1 {
		t.Fatalf("ListByUser (limit): got=%d err=%v", len(limited), err)
	}

	bobs, err := repo.ListByUser(dbc, "bob", 0)
	if err != nil || len(bobs) != 1 || bobs[0].Title != "Python" {
		t.Fatalf("ListByUser (bob): got=%+v err=%v", bobs, err)
	}

	none, err := repo.ListByUser(dbc, "carol", 0)
	if err != nil || len(none) != 0 {
		t.Fatalf("ListByUser (empty): got=%d err=%v", len(none), err)
	}
}

func TestNodeStatusRepoLastWriteWins(t *testing.T) {
	conn := testutil.DB(t)
	log := testutil.Logger(t)
	roadmaps := NewRoadmapRepo(conn, log)
	statuses := NewNodeStatusRepo(conn, log)
	dbc := dbctx.New(context.Background())

	created, err := roadmaps.Create(dbc, []*types.Roadmap{newRoadmap("alice", "Go", time.Now().UTC())})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created[0].ID

	if err := statuses.Upsert(dbc, id, "n1", "in-progress"); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := statuses.Upsert(dbc, id, "n1", "completed"); err != nil {
		t.Fatalf("Upsert (again): %v", err)
	}
	if err := statuses.Upsert(dbc, id, "n2", "skipped"); err != nil {
		t.Fatalf("Upsert (n2): %v", err)
	}

	rows, err := statuses.ListByRoadmapIDs(dbc, []uuid.UUID{id})
	if err != nil {
		t.Fatalf("ListByRoadmapIDs: %v", err)
	}
	got := map[string]string{}
	for _, r := range rows {
		got[r.NodeID] = r.Status
	}
	if len(rows) != 2 || got["n1"] != "completed" || got["n2"] != "skipped" {
		t.Fatalf("ListByRoadmapIDs: unexpected rows: %v", got)
	}
}

func TestNodeStatusRepoConcurrentWritesOnDifferentNodes(t *testing.T) {
	conn := testutil.DB(t)
	log := testutil.Logger(t)
	roadmaps := NewRoadmapRepo(conn, log)
	statuses := NewNodeStatusRepo(conn, log)
	dbc := dbctx.New(context.Background())

	created, err := roadmaps.Create(dbc, []*types.Roadmap{newRoadmap("alice", "Go", time.Now().UTC())})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	id := created[0].ID

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for _, w := range []struct{ node, status string }{{"n1", "completed"}, {"n2", "skipped"}} {
		wg.Add(1)
		go func(node, status string) {
			defer wg.Done()
			errs <- statuses.Upsert(dbc, id, node, status)
		}(w.node, w.status)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("Upsert: %v", err)
		}
	}

	rows, err := statuses.ListByRoadmapIDs(dbc, []uuid.UUID{id})
	if err != nil {
		t.Fatalf("ListByRoadmapIDs: %v", err)
	}
	got := map[string]string{}
	for _, r := range rows {
		got[r.NodeID] = r.Status
	}
	if got["n1"] != "completed" || got["n2"] != "skipped" {
		t.Fatalf("both writes should survive, got %v", got)
	}
}
