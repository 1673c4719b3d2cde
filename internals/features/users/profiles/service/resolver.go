package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/users/profiles/model"
	"portalku_backend/internals/features/users/profiles/repository"
	"portalku_backend/internals/features/users/session"
	"portalku_backend/internals/helpers/apperr"
)

const flightTimeout = 10 * time.Second

// Identity is what the token proves about the caller.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

type Resolver struct {
	Repo repository.Repository
	Hub  *session.Hub // optional, receives role_changed

	group singleflight.Group
}

func NewResolver(repo repository.Repository, hub *session.Hub) *Resolver {
	return &Resolver{Repo: repo, Hub: hub}
}

// Resolve returns the caller's profile, creating a student profile on first access.
// Concurrent calls for the same user share one lookup.
func (r *Resolver) Resolve(ctx context.Context, id Identity) (*model.ProfileModel, error) {
	if id.UserID == uuid.Nil {
		return nil, apperr.Unauthorized("missing identity")
	}
	// flight tidak ikut batal bersama request pertama; tiap pemanggil tetap menunggu ctx miliknya
	ch := r.group.DoChan(id.UserID.String(), func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flightTimeout)
		defer cancel()
		return r.ensure(fctx, id, constants.RoleStudent, "")
	})
	select {
	case <-ctx.Done():
		return nil, apperr.Backend(errors.Wrap(ctx.Err(), "resolve profile"))
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		p := *res.Val.(*model.ProfileModel)
		return &p, nil
	}
}

// Ensure creates the profile with the given role if none exists yet. An
// existing profile is returned untouched.
func (r *Resolver) Ensure(ctx context.Context, id Identity, role, fullName string) (*model.ProfileModel, error) {
	if !constants.IsValidRole(role) {
		return nil, apperr.ValidationFields(map[string][]string{"role": {"must be teacher or student"}})
	}
	return r.ensure(ctx, id, role, fullName)
}

func (r *Resolver) ensure(ctx context.Context, id Identity, role, fullName string) (*model.ProfileModel, error) {
	p, err := r.Repo.FindByID(ctx, id.UserID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Backend(err)
	}

	name := strings.TrimSpace(fullName)
	if name == "" {
		name = displayNameFromEmail(id.Email)
	}
	row := &model.ProfileModel{ID: id.UserID, Role: role, FullName: name}
	created, err := r.Repo.InsertIfAbsent(ctx, row)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	if created {
		log.Printf("[PROFILE] created profile %s role=%s", id.UserID, role)
	}

	p, err = r.Repo.FindByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("profile")
		}
		return nil, apperr.Backend(err)
	}
	return p, nil
}

// SetRole is a backend-only mutation (admin CLI). The portal API never calls it.
func (r *Resolver) SetRole(ctx context.Context, userID uuid.UUID, role string) error {
	if !constants.IsValidRole(role) {
		return apperr.ValidationFields(map[string][]string{"role": {"must be teacher or student"}})
	}
	if err := r.Repo.UpdateRole(ctx, userID, role); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("profile")
		}
		return apperr.Backend(err)
	}
	if r.Hub != nil {
		r.Hub.Publish(session.Event{Kind: session.RoleChanged, UserID: userID})
	}
	return nil
}

func displayNameFromEmail(email string) string {
	email = strings.TrimSpace(email)
	if email == "" {
		return "user"
	}
	return email
}
