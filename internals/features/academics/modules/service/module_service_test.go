package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/modules/dto"
	"portalku_backend/internals/features/academics/modules/repository"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

var (
	teacher = session.Principal{UserID: uuid.New(), Role: constants.RoleTeacher}
	student = session.Principal{UserID: uuid.New(), Role: constants.RoleStudent}
)

func TestModuleLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryRepository()
	svc := NewService(repo)
	base := time.Date(2025, 1, 1, 8, 0, 0, 0, time.UTC)
	tick := 0
	svc.Now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	_, err := svc.Create(ctx, student, dto.CreateModuleRequest{Title: "Algoritma"})
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	_, err = svc.Create(ctx, teacher, dto.CreateModuleRequest{Title: "  "})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	a, err := svc.Create(ctx, teacher, dto.CreateModuleRequest{Title: "Algoritma"})
	require.NoError(t, err)
	b, err := svc.Create(ctx, teacher, dto.CreateModuleRequest{Title: "Basis Data"})
	require.NoError(t, err)

	rows, total, err := svc.List(ctx, helper.Paging{Page: 1, PerPage: 20, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.Equal(t, b.ID, rows[0].ID)

	ok, err := svc.Exists(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.Exists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	repo.Content = func(id uuid.UUID) int64 {
		if id == a.ID {
			return 2
		}
		return 0
	}
	err = svc.Delete(ctx, teacher, a.ID)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.True(t, apperr.Is(svc.Delete(ctx, student, b.ID), apperr.KindPermission))
	require.NoError(t, svc.Delete(ctx, teacher, b.ID))
	assert.True(t, apperr.Is(svc.Delete(ctx, teacher, b.ID), apperr.KindNotFound))
}
