package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/roadmap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/roadmap-backend/internal/domain"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

func TestUserSessionRepo(t *testing.T) {
	db := testutil.DB(t)
	ctx := context.Background()
	repo := NewUserSessionRepo(db, testutil.Logger(t))

	live := &types.UserSession{UserID: "uid-1", ExpiresAt: time.Now().Add(time.Hour)}
	require.NoError(t, repo.Put(ctx, live))
	require.NotEqual(t, uuid.Nil, live.ID)

	ok, err := repo.IsActive(ctx, live.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.IsActive(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok, "unknown ids are never active")

	require.NoError(t, repo.Revoke(ctx, live.ID))
	ok, err = repo.IsActive(ctx, live.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	stale := &types.UserSession{UserID: "uid-2", ExpiresAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repo.Put(ctx, stale))
	ok, err = repo.IsActive(ctx, stale.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.FullDeleteExpired(dbctx.New(ctx), time.Now())
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
