package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"portalku_backend/internals/configs"
	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/users/auth/dto"
	"portalku_backend/internals/features/users/auth/model"
	"portalku_backend/internals/features/users/auth/repository"
	profileModel "portalku_backend/internals/features/users/profiles/model"
	profileService "portalku_backend/internals/features/users/profiles/service"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

const tokenTypeBearer = "Bearer"

var errBadCredentials = apperr.Unauthorized("invalid email or password")

type Service struct {
	Repo     repository.Repository
	Profiles *profileService.Resolver
	Tokens   *TokenIssuer
	Hub      *session.Hub
	Store    *session.Store

	Google         GoogleVerifier
	GoogleClientID string

	// BlacklistFallback dipakai kalau exp token tidak bisa dibaca saat logout.
	BlacklistFallback time.Duration
	Now               func() time.Time
}

// NewService merakit service dari konfigurasi (JWT_*, GOOGLE_CLIENT_ID, BLACKLIST_TTL_FALLBACK).
func NewService(repo repository.Repository, profiles *profileService.Resolver, hub *session.Hub, store *session.Store) *Service {
	return &Service{
		Repo:              repo,
		Profiles:          profiles,
		Tokens:            NewTokenIssuer(configs.JWTSecret, configs.Duration("JWT_ACCESS_TTL"), configs.Duration("JWT_EXP_SKEW")),
		Hub:               hub,
		Store:             store,
		Google:            FuturendaVerifier{},
		GoogleClientID:    configs.GoogleClientID,
		BlacklistFallback: configs.Duration("BLACKLIST_TTL_FALLBACK"),
		Now:               time.Now,
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

/* ==========================
   REGISTER / LOGIN
========================== */

func (s *Service) SignUp(ctx context.Context, in dto.RegisterRequest) (*dto.AuthResponse, error) {
	in.Normalize()
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Backend(errors.Wrap(err, "hash password"))
	}
	user := &model.UserModel{
		ID:           uuid.New(),
		Email:        in.Email,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ValidationFields(map[string][]string{"email": {"already registered"}})
		}
		return nil, apperr.Backend(err)
	}

	prof, err := s.Profiles.Ensure(ctx, profileService.Identity{UserID: user.ID, Email: user.Email}, in.Role, in.FullName)
	if err != nil {
		return nil, err
	}
	log.Printf("[AUTH] register %s role=%s", user.Email, prof.Role)
	return s.issue(user, prof)
}

func (s *Service) SignIn(ctx context.Context, in dto.LoginRequest) (*dto.AuthResponse, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}
	user, err := s.Repo.FindUserByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errBadCredentials
		}
		return nil, apperr.Backend(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, errBadCredentials
	}
	if !user.IsActive {
		return nil, apperr.PermissionDenied("account is disabled")
	}
	prof, err := s.Profiles.Resolve(ctx, profileService.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return nil, err
	}
	return s.issue(user, prof)
}

// SignInGoogle: user dicari via google_id, lalu email (link akun), kalau belum ada dibuat baru.
func (s *Service) SignInGoogle(ctx context.Context, in dto.GoogleLoginRequest) (*dto.AuthResponse, error) {
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}
	if s.Google == nil || s.GoogleClientID == "" {
		return nil, apperr.Unauthorized("google sign-in is not configured")
	}
	gid, err := s.Google.Verify(in.IDToken, []string{s.GoogleClientID})
	if err != nil {
		log.Printf("[AUTH] google verify gagal: %v", err)
		return nil, apperr.Unauthorized("invalid Google ID token")
	}
	email := strings.ToLower(strings.TrimSpace(gid.Email))

	user, err := s.Repo.FindUserByGoogleID(ctx, gid.Sub)
	if errors.Is(err, repository.ErrNotFound) {
		user, err = s.Repo.FindUserByEmail(ctx, email)
		switch {
		case err == nil:
			if err := s.Repo.LinkGoogleID(ctx, user.ID, gid.Sub); err != nil {
				return nil, apperr.Backend(err)
			}
		case errors.Is(err, repository.ErrNotFound):
			user, err = s.createGoogleUser(ctx, email, gid.Sub)
		}
	}
	if err != nil {
		if _, ok := apperr.As(err); ok {
			return nil, err
		}
		return nil, apperr.Backend(err)
	}
	if !user.IsActive {
		return nil, apperr.PermissionDenied("account is disabled")
	}

	prof, err := s.Profiles.Ensure(ctx, profileService.Identity{UserID: user.ID, Email: user.Email}, constants.RoleStudent, gid.Name)
	if err != nil {
		return nil, err
	}
	return s.issue(user, prof)
}

func (s *Service) createGoogleUser(ctx context.Context, email, googleID string) (*model.UserModel, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(randomSecret()), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	user := &model.UserModel{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		GoogleID:     &googleID,
		IsActive:     true,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.ValidationFields(map[string][]string{"email": {"already registered"}})
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) issue(user *model.UserModel, prof *profileModel.ProfileModel) (*dto.AuthResponse, error) {
	tok, exp, err := s.Tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	p := principalOf(user.ID, user.Email, prof)
	if s.Hub != nil {
		s.Hub.Publish(session.Event{Kind: session.SignedIn, UserID: p.UserID, Principal: &p, At: s.now()})
	}
	return &dto.AuthResponse{AccessToken: tok, TokenType: tokenTypeBearer, ExpiresAt: exp, User: p}, nil
}

/* ==========================
   LOGOUT
========================== */

// SignOut blacklists the token until it expires and announces signed_out.
func (s *Service) SignOut(ctx context.Context, rawToken string, p session.Principal) error {
	rawToken = strings.TrimSpace(rawToken)
	if rawToken != "" {
		until := s.now().Add(s.fallbackTTL())
		if claims, err := s.Tokens.Parse(rawToken); err == nil {
			until = claims.ExpiresAt.Add(s.Tokens.Skew + time.Minute)
		}
		if err := s.Repo.BlacklistToken(ctx, rawToken, until); err != nil {
			return apperr.Backend(err)
		}
	}
	if s.Hub != nil && p.UserID != uuid.Nil {
		s.Hub.Publish(session.Event{Kind: session.SignedOut, UserID: p.UserID, At: s.now()})
	}
	return nil
}

func (s *Service) fallbackTTL() time.Duration {
	if s.BlacklistFallback > 0 {
		return s.BlacklistFallback
	}
	return 2 * time.Minute
}

/* ==========================
   REQUEST AUTH (dipakai middleware)
========================== */

// Authenticate turns a raw bearer token into the request principal.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (session.Principal, error) {
	black, err := s.Repo.IsBlacklisted(ctx, rawToken)
	if err != nil {
		return session.Principal{}, apperr.Backend(err)
	}
	if black {
		return session.Principal{}, apperr.Unauthorized("token is blacklisted")
	}
	claims, err := s.Tokens.Parse(rawToken)
	if err != nil {
		log.Printf("[AUTH] token ditolak: %v", err)
		return session.Principal{}, apperr.Unauthorized("invalid or expired token")
	}
	return s.CurrentPrincipal(ctx, claims.UserID, claims.Email)
}

// CurrentPrincipal reads the cache first, then the user and profile rows.
func (s *Service) CurrentPrincipal(ctx context.Context, userID uuid.UUID, email string) (session.Principal, error) {
	if s.Store != nil {
		if p, ok := s.Store.Get(userID); ok {
			return p, nil
		}
	}
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return session.Principal{}, apperr.Unauthorized("user not found")
		}
		return session.Principal{}, apperr.Backend(err)
	}
	if !user.IsActive {
		return session.Principal{}, apperr.PermissionDenied("account is disabled")
	}
	prof, err := s.Profiles.Resolve(ctx, profileService.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return session.Principal{}, err
	}
	p := principalOf(user.ID, user.Email, prof)
	if s.Store != nil {
		s.Store.Put(p)
	}
	return p, nil
}

func (s *Service) CleanupBlacklist(ctx context.Context) (int64, error) {
	return s.Repo.CleanupExpiredBlacklist(ctx, s.now())
}

/* ==========================
   UTIL
========================== */

func principalOf(id uuid.UUID, email string, prof *profileModel.ProfileModel) session.Principal {
	return session.Principal{UserID: id, Email: email, Role: prof.Role, DisplayName: prof.FullName}
}

func randomSecret() string {
	b := make([]byte, 24)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
