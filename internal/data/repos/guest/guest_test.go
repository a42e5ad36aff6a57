package guest

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	"github.com/yungbote/roadmap-backend/internal/domain/roadmap"
)

func stores(t *testing.T) map[string]RoadmapStore {
	t.Helper()
	out := map[string]RoadmapStore{"memory": NewMemoryStore()}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		return out
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Logf("redis unavailable, skipping redis store: %v", err)
		return out
	}
	t.Cleanup(func() { _ = rdb.Close() })
	prefix := fmt.Sprintf("test-%d", time.Now().UnixNano())
	out["redis"] = NewRedisStore(rdb, prefix, time.Minute, testutil.Logger(t))
	return out
}

func snapshot(id, title string, at time.Time) roadmap.LocalSnapshot {
	return roadmap.LocalSnapshot{
		Roadmap: roadmap.Node{
			ID:    id,
			Title: title,
			Level: roadmap.LevelBeginner,
			Children: []roadmap.Node{
				{ID: id + "-a", Title: "Basics", Level: roadmap.LevelBeginner},
				{ID: id + "-b", Title: "Projects", Level: roadmap.LevelIntermediate},
			},
		},
		Query:   "learn " + title,
		SavedAt: at,
	}
}

func TestStoreSaveGetAndStatus(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)

			require.NoError(t, store.Save(ctx, "g1", snapshot("r1", "Go", now)))

			got, err := store.Get(ctx, "g1", "r1")
			require.NoError(t, err)
			assert.Equal(t, "Go", got.Roadmap.Title)
			assert.Len(t, got.Roadmap.Children, 2)
			assert.Empty(t, got.NodeStatuses)

			require.NoError(t, store.SetNodeStatus(ctx, "g1", "r1", "r1-a", roadmap.StatusCompleted))
			require.NoError(t, store.SetNodeStatus(ctx, "g1", "r1", "r1-a", roadmap.StatusSkipped))
			got, err = store.Get(ctx, "g1", "r1")
			require.NoError(t, err)
			assert.Equal(t, roadmap.StatusSkipped, got.NodeStatuses["r1-a"])

			_, err = store.Get(ctx, "g2", "r1")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, store.SetNodeStatus(ctx, "g1", "missing", "x", roadmap.StatusCompleted), ErrNotFound)
		})
	}
}

func TestStoreHistoryNewestFirstAndCapped(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Now().UTC().Truncate(time.Second)
			total := roadmap.GuestHistoryLimit + 3
			for i := 0; i < total; i++ {
				id := fmt.Sprintf("r%02d", i)
				require.NoError(t, store.Save(ctx, "g", snapshot(id, id, base.Add(time.Duration(i)*time.Second))))
			}

			hist, err := store.History(ctx, "g")
			require.NoError(t, err)
			require.Len(t, hist, roadmap.GuestHistoryLimit)
			assert.Equal(t, fmt.Sprintf("r%02d", total-1), hist[0].ID)
			assert.Equal(t, "r03", hist[len(hist)-1].ID)

			_, err = store.Get(ctx, "g", "r00")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreResaveMovesToFrontAndDelete(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			now := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, store.Save(ctx, "g", snapshot("a", "A", now)))
			require.NoError(t, store.Save(ctx, "g", snapshot("b", "B", now)))
			require.NoError(t, store.Save(ctx, "g", snapshot("a", "A2", now)))

			hist, err := store.History(ctx, "g")
			require.NoError(t, err)
			require.Len(t, hist, 2)
			assert.Equal(t, "A2", hist[0].Title)
			assert.Equal(t, "b", hist[1].ID)

			require.NoError(t, store.SetNodeStatus(ctx, "g", "b", "b-a", roadmap.StatusInProgress))
			all, err := store.List(ctx, "g")
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, roadmap.StatusInProgress, all[1].NodeStatuses["b-a"])

			require.NoError(t, store.Delete(ctx, "g", "a", "b"))
			hist, err = store.History(ctx, "g")
			require.NoError(t, err)
			assert.Empty(t, hist)
		})
	}
}
