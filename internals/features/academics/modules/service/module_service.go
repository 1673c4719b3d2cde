package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/modules/dto"
	"portalku_backend/internals/features/academics/modules/model"
	"portalku_backend/internals/features/academics/modules/repository"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
)

type Service struct {
	Repo repository.Repository
	Now  func() time.Time
}

func NewService(repo repository.Repository) *Service {
	return &Service{Repo: repo, Now: time.Now}
}

func (s *Service) List(ctx context.Context, p helper.Paging) ([]model.ModuleModel, int64, error) {
	rows, total, err := s.Repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, apperr.Backend(err)
	}
	return rows, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ModuleModel, error) {
	m, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("module")
		}
		return nil, apperr.Backend(err)
	}
	return m, nil
}

// Exists is used by other features to validate a module_id reference.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, err := s.Get(ctx, id)
	if apperr.Is(err, apperr.KindNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *Service) Create(ctx context.Context, caller session.Principal, in dto.CreateModuleRequest) (*model.ModuleModel, error) {
	if !caller.IsTeacher() {
		return nil, apperr.PermissionDenied(constants.RoleErrorTeacher("modul"))
	}
	in.Normalize()
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}
	m := &model.ModuleModel{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		CreatedBy:   caller.UserID,
		CreatedAt:   s.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, m); err != nil {
		return nil, apperr.Backend(err)
	}
	return m, nil
}

// Delete refuses while homework, assignments, projects or notes still point at the module.
func (s *Service) Delete(ctx context.Context, caller session.Principal, id uuid.UUID) error {
	if !caller.IsTeacher() {
		return apperr.PermissionDenied(constants.RoleErrorTeacher("modul"))
	}
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.Repo.ContentCount(ctx, id)
	if err != nil {
		return apperr.Backend(err)
	}
	if n > 0 {
		return apperr.Validation("module still has content; delete its work items and notes first")
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("module")
		}
		return apperr.Backend(err)
	}
	return nil
}
