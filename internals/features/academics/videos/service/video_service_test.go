package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/videos/dto"
	"portalku_backend/internals/features/academics/videos/repository"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

func TestYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":         "dQw4w9WgXcQ",
		"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s":       "dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ":           "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?si=abc":                 "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":           "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/dQw4w9WgXcQ":          "dQw4w9WgXcQ",
		"https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ":  "dQw4w9WgXcQ",
		"https://vimeo.com/123456":                            "",
		"https://www.youtube.com/watch?v=short":               "",
		"https://www.youtube.com/channel/UCabcdefghijklmnopq": "",
	}
	for in, want := range cases {
		got, ok := YouTubeID(in)
		assert.Equal(t, want != "", ok, in)
		assert.Equal(t, want, got, in)
	}
}

func TestVideoLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewService(repository.NewMemoryRepository())
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	svc.Now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	teacher := session.Principal{UserID: uuid.New(), Role: constants.RoleTeacher}
	student := session.Principal{UserID: uuid.New(), Role: constants.RoleStudent}

	_, err := svc.Add(ctx, student, dto.CreateVideoRequest{Title: "Intro", URL: "ftp://example.com/x"})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Contains(t, ae.Fields, "url")

	_, err = svc.Add(ctx, student, dto.CreateVideoRequest{Title: "", URL: "https://example.com"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	a, err := svc.Add(ctx, student, dto.CreateVideoRequest{Title: "Unit 1", URL: " https://youtu.be/dQw4w9WgXcQ "})
	require.NoError(t, err)
	require.NotNil(t, a.YouTubeID)
	assert.Equal(t, "dQw4w9WgXcQ", *a.YouTubeID)

	b, err := svc.Add(ctx, teacher, dto.CreateVideoRequest{Title: "Unit 2", URL: "https://example.com/video.mp4"})
	require.NoError(t, err)
	assert.Nil(t, b.YouTubeID)

	rows, total, err := svc.List(ctx, helper.Paging{Limit: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Equal(t, b.ID, rows[0].ID)

	resp := dto.FromModel(*a)
	require.NotNil(t, resp.EmbedURL)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", *resp.EmbedURL)

	assert.True(t, apperr.Is(svc.Delete(ctx, student, a.ID), apperr.KindPermission))
	require.NoError(t, svc.Delete(ctx, teacher, a.ID))
	assert.True(t, apperr.Is(svc.Delete(ctx, teacher, a.ID), apperr.KindNotFound))
}
