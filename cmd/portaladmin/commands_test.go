package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	profileModel "portalku_backend/internals/features/users/profiles/model"
	profileRepo "portalku_backend/internals/features/users/profiles/repository"
	profileService "portalku_backend/internals/features/users/profiles/service"
	routes "portalku_backend/internals/route"
)

func memoryOpener(repo *profileRepo.MemoryRepository) opener {
	return func(ctx context.Context, needStore bool) (*env, error) {
		deps := &routes.Deps{Profiles: profileService.NewResolver(repo, nil)}
		return &env{Deps: deps, close: func() {}}, nil
	}
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(open)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetRole(t *testing.T) {
	repo := profileRepo.NewMemoryRepository()
	id := uuid.New()
	_, err := repo.InsertIfAbsent(context.Background(), &profileModel.ProfileModel{ID: id, Role: "student", FullName: "Budi"})
	require.NoError(t, err)

	out, err := run(t, memoryOpener(repo), "set-role", "--user", id.String(), "--role", "teacher")
	require.NoError(t, err)
	assert.Contains(t, out, "teacher")

	p, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "teacher", p.Role)
}

func TestSetRoleRejectsBadInput(t *testing.T) {
	repo := profileRepo.NewMemoryRepository()
	open := memoryOpener(repo)

	_, err := run(t, open, "set-role", "--user", "bukan-uuid", "--role", "teacher")
	assert.Error(t, err)

	_, err = run(t, open, "set-role", "--user", uuid.NewString(), "--role", "admin")
	assert.Error(t, err)

	// profil belum ada
	_, err = run(t, open, "set-role", "--user", uuid.NewString(), "--role", "student")
	assert.Error(t, err)

	_, err = run(t, open, "set-role", "--role", "student")
	assert.Error(t, err)
}
