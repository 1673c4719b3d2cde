package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/users/profiles/repository"
	"portalku_backend/internals/features/users/session"
)

// Server dan CLI berbagi tabel profiles tapi masing-masing punya hub sendiri.
func TestRoleSyncEvictsPrincipalChangedByAnotherProcess(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()

	serverHub := session.NewHub()
	store := session.NewStore(serverHub, 5*time.Minute)
	defer store.Close()
	watcher := NewRoleSync(repo, serverHub, time.Hour)

	server := NewResolver(repo, serverHub)
	id := Identity{UserID: uuid.New(), Email: "guru@kampus.id"}
	_, err := server.Ensure(ctx, id, constants.RoleTeacher, "Bu Guru")
	require.NoError(t, err)
	_, err = watcher.RunOnce(ctx)
	require.NoError(t, err)

	store.Put(session.Principal{UserID: id.UserID, Role: constants.RoleTeacher})
	time.Sleep(time.Millisecond)

	cli := NewResolver(repo, session.NewHub())
	require.NoError(t, cli.SetRole(ctx, id.UserID, constants.RoleStudent))

	_, cached := store.Get(id.UserID)
	assert.True(t, cached, "other process hub does not reach the server")

	n, err := watcher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	_, cached = store.Get(id.UserID)
	assert.False(t, cached)

	n, err = watcher.RunOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a change is published once")
}

func TestRoleSyncBackendError(t *testing.T) {
	repo := repository.NewMemoryRepository()
	repo.Err = errors.New("db down")
	_, err := NewRoleSync(repo, session.NewHub(), time.Minute).RunOnce(context.Background())
	assert.Error(t, err)
}
