package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/users/profiles/model"
	"portalku_backend/internals/features/users/profiles/repository"
	"portalku_backend/internals/features/users/session"
	"portalku_backend/internals/helpers/apperr"
)

func TestResolveCreatesStudentOnce(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	r := NewResolver(repo, nil)
	id := Identity{UserID: uuid.New(), Email: "ana@kampus.id"}

	first, err := r.Resolve(ctx, id)
	require.NoError(t, err)
	second, err := r.Resolve(ctx, id)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, constants.RoleStudent, first.Role)
	assert.Equal(t, "ana@kampus.id", first.FullName)
	assert.Equal(t, 1, repo.Len())
}

func TestResolveConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	r := NewResolver(repo, nil)
	id := Identity{UserID: uuid.New(), Email: "budi@kampus.id"}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := r.Resolve(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, id.UserID, p.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, repo.Len())
}

func TestEnsureKeepsExistingRole(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	r := NewResolver(repo, nil)
	id := Identity{UserID: uuid.New(), Email: "guru@kampus.id"}

	p, err := r.Ensure(ctx, id, constants.RoleTeacher, "Bu Sari")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, p.Role)
	assert.Equal(t, "Bu Sari", p.FullName)

	p, err = r.Ensure(ctx, id, constants.RoleStudent, "Other")
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, p.Role)

	_, err = r.Ensure(ctx, Identity{UserID: uuid.New()}, "admin", "")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestResolveBackendError(t *testing.T) {
	repo := repository.NewMemoryRepository()
	repo.Err = errors.New("connection refused")
	r := NewResolver(repo, nil)

	_, err := r.Resolve(context.Background(), Identity{UserID: uuid.New(), Email: "x@y.z"})
	assert.True(t, apperr.Is(err, apperr.KindBackend))
	assert.Equal(t, 0, repo.Len())
}

func TestSetRolePublishesRoleChanged(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	hub := session.NewHub()
	r := NewResolver(repo, hub)
	id := Identity{UserID: uuid.New(), Email: "c@d.e"}
	_, err := r.Resolve(ctx, id)
	require.NoError(t, err)

	var got []session.Event
	hub.Subscribe(func(e session.Event) { got = append(got, e) })

	require.NoError(t, r.SetRole(ctx, id.UserID, constants.RoleTeacher))
	p, err := r.Resolve(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, constants.RoleTeacher, p.Role)
	require.Len(t, got, 1)
	assert.Equal(t, session.RoleChanged, got[0].Kind)

	err = r.SetRole(ctx, uuid.New(), constants.RoleTeacher)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

// gatedRepo menahan FindByID sampai gate ditutup, lalu menghormati ctx pemanggil.
type gatedRepo struct {
	*repository.MemoryRepository
	entered chan struct{}
	gate    chan struct{}
	once    sync.Once
}

func (g *gatedRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.ProfileModel, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.gate
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return g.MemoryRepository.FindByID(ctx, id)
}

func TestResolveSharedFlightSurvivesFirstCallerCancel(t *testing.T) {
	repo := &gatedRepo{
		MemoryRepository: repository.NewMemoryRepository(),
		entered:          make(chan struct{}),
		gate:             make(chan struct{}),
	}
	r := NewResolver(repo, nil)
	id := Identity{UserID: uuid.New(), Email: "citra@kampus.id"}

	firstCtx, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := r.Resolve(firstCtx, id)
		firstErr <- err
	}()
	<-repo.entered

	type result struct {
		p   *model.ProfileModel
		err error
	}
	second := make(chan result, 1)
	go func() {
		p, err := r.Resolve(context.Background(), id)
		second <- result{p, err}
	}()
	time.Sleep(20 * time.Millisecond) // biar pemanggil kedua ikut flight yang sama

	cancel()
	select {
	case err := <-firstErr:
		assert.Error(t, err)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller did not return")
	}

	close(repo.gate)
	select {
	case res := <-second:
		require.NoError(t, res.err)
		assert.Equal(t, id.UserID, res.p.ID)
	case <-time.After(time.Second):
		t.Fatal("second caller did not return")
	}
	assert.Equal(t, 1, repo.Len())
}
