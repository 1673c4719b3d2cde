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
	"portalku_backend/internals/features/users/auth/dto"
	"portalku_backend/internals/features/users/auth/repository"
	profileRepo "portalku_backend/internals/features/users/profiles/repository"
	profileService "portalku_backend/internals/features/users/profiles/service"
	"portalku_backend/internals/features/users/session"
	"portalku_backend/internals/helpers/apperr"
)

type fakeGoogle struct {
	id  GoogleIdentity
	err error
}

func (f fakeGoogle) Verify(idToken string, audience []string) (GoogleIdentity, error) {
	return f.id, f.err
}

type fixture struct {
	svc  *Service
	repo *repository.MemoryRepository
	hub  *session.Hub
	now  time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		repo: repository.NewMemoryRepository(),
		hub:  session.NewHub(),
		now:  time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
	}
	tokens := NewTokenIssuer("test-secret", time.Hour, 30*time.Second)
	tokens.Now = func() time.Time { return f.now }
	f.svc = &Service{
		Repo:     f.repo,
		Profiles: profileService.NewResolver(profileRepo.NewMemoryRepository(), f.hub),
		Tokens:   tokens,
		Hub:      f.hub,
		Store:    session.NewStore(f.hub, time.Minute),
		Now:      func() time.Time { return f.now },
	}
	return f
}

func TestSignUpAndSignIn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var events []session.EventKind
	f.hub.Subscribe(func(e session.Event) { events = append(events, e.Kind) })

	res, err := f.svc.SignUp(ctx, dto.RegisterRequest{
		Email: " Guru@Kampus.id ", Password: "rahasia123", FullName: "Bu Sari", Role: "teacher",
	})
	require.NoError(t, err)
	assert.Equal(t, "guru@kampus.id", res.User.Email)
	assert.Equal(t, constants.RoleTeacher, res.User.Role)
	assert.Equal(t, "Bu Sari", res.User.DisplayName)
	assert.NotEmpty(t, res.AccessToken)

	_, err = f.svc.SignUp(ctx, dto.RegisterRequest{Email: "guru@kampus.id", Password: "rahasia123", FullName: "X"})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	in, err := f.svc.SignIn(ctx, dto.LoginRequest{Email: "GURU@kampus.id", Password: "rahasia123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.UserID, in.User.UserID)

	_, err = f.svc.SignIn(ctx, dto.LoginRequest{Email: "guru@kampus.id", Password: "salah-sekali"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	assert.Equal(t, []session.EventKind{session.SignedIn, session.SignedIn}, events)
}

func TestSignUpDefaultsToStudent(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.SignUp(context.Background(), dto.RegisterRequest{
		Email: "ana@kampus.id", Password: "rahasia123", FullName: "Ana",
	})
	require.NoError(t, err)
	assert.Equal(t, constants.RoleStudent, res.User.Role)
}

func TestSignUpValidation(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.SignUp(context.Background(), dto.RegisterRequest{
		Email: "bukan-email", Password: "pendek", FullName: "", Role: "admin",
	})
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	for _, field := range []string{"email", "password", "full_name", "role"} {
		assert.Contains(t, ae.Fields, field)
	}
}

func TestAuthenticateAndSignOut(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res, err := f.svc.SignUp(ctx, dto.RegisterRequest{Email: "ana@kampus.id", Password: "rahasia123", FullName: "Ana"})
	require.NoError(t, err)

	p, err := f.svc.Authenticate(ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, res.User, p)

	watch, cancel := f.hub.Watch(p.UserID, 2)
	defer cancel()

	require.NoError(t, f.svc.SignOut(ctx, res.AccessToken, p))
	_, err = f.svc.Authenticate(ctx, res.AccessToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))

	e := <-watch
	assert.Equal(t, session.SignedOut, e.Kind)
	_, cached := f.svc.Store.Get(p.UserID)
	assert.False(t, cached)

	f.now = f.now.Add(3 * time.Hour)
	n, err := f.svc.CleanupBlacklist(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAuthenticateExpiredToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res, err := f.svc.SignUp(ctx, dto.RegisterRequest{Email: "ana@kampus.id", Password: "rahasia123", FullName: "Ana"})
	require.NoError(t, err)

	f.now = f.now.Add(time.Hour + 20*time.Second)
	_, err = f.svc.Authenticate(ctx, res.AccessToken)
	assert.NoError(t, err, "inside skew")

	f.now = f.now.Add(time.Minute)
	_, err = f.svc.Authenticate(ctx, res.AccessToken)
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestInactiveUserRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	res, err := f.svc.SignUp(ctx, dto.RegisterRequest{Email: "ana@kampus.id", Password: "rahasia123", FullName: "Ana"})
	require.NoError(t, err)
	f.repo.SetActive(res.User.UserID, false)
	f.svc.Store.Drop(res.User.UserID)

	_, err = f.svc.Authenticate(ctx, res.AccessToken)
	assert.True(t, apperr.Is(err, apperr.KindPermission))
	_, err = f.svc.SignIn(ctx, dto.LoginRequest{Email: "ana@kampus.id", Password: "rahasia123"})
	assert.True(t, apperr.Is(err, apperr.KindPermission))
}

func TestSignInGoogle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.SignInGoogle(ctx, dto.GoogleLoginRequest{IDToken: "x"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized), "disabled without client id")

	f.svc.GoogleClientID = "client-1"
	f.svc.Google = fakeGoogle{id: GoogleIdentity{Sub: "g-1", Email: "Budi@Gmail.com", Name: "Budi"}}
	first, err := f.svc.SignInGoogle(ctx, dto.GoogleLoginRequest{IDToken: "x"})
	require.NoError(t, err)
	assert.Equal(t, "budi@gmail.com", first.User.Email)
	assert.Equal(t, constants.RoleStudent, first.User.Role)
	assert.Equal(t, "Budi", first.User.DisplayName)

	second, err := f.svc.SignInGoogle(ctx, dto.GoogleLoginRequest{IDToken: "x"})
	require.NoError(t, err)
	assert.Equal(t, first.User.UserID, second.User.UserID)

	f.svc.Google = fakeGoogle{err: errors.New("bad audience")}
	_, err = f.svc.SignInGoogle(ctx, dto.GoogleLoginRequest{IDToken: "x"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthorized))
}

func TestSignInGoogleLinksExistingEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	reg, err := f.svc.SignUp(ctx, dto.RegisterRequest{Email: "ana@kampus.id", Password: "rahasia123", FullName: "Ana", Role: "teacher"})
	require.NoError(t, err)

	f.svc.GoogleClientID = "client-1"
	f.svc.Google = fakeGoogle{id: GoogleIdentity{Sub: "g-9", Email: "ana@kampus.id", Name: "Ana G"}}
	res, err := f.svc.SignInGoogle(ctx, dto.GoogleLoginRequest{IDToken: "x"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.UserID, res.User.UserID)
	assert.Equal(t, constants.RoleTeacher, res.User.Role)

	u, err := f.repo.FindUserByGoogleID(ctx, "g-9")
	require.NoError(t, err)
	assert.Equal(t, reg.User.UserID, u.ID)
}

func TestTokenIssuerRejectsForeignSignature(t *testing.T) {
	a := NewTokenIssuer("secret-a", time.Hour, 0)
	b := NewTokenIssuer("secret-b", time.Hour, 0)
	tok, _, err := a.Issue(uuid.New(), "x@y.z")
	require.NoError(t, err)
	_, err = b.Parse(tok)
	assert.Error(t, err)
}
