package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/videos/dto"
	"portalku_backend/internals/features/academics/videos/model"
	"portalku_backend/internals/features/academics/videos/repository"
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

func (s *Service) List(ctx context.Context, p helper.Paging) ([]model.VideoModel, int64, error) {
	rows, total, err := s.Repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, apperr.Backend(err)
	}
	return rows, total, nil
}

func (s *Service) Add(ctx context.Context, caller session.Principal, in dto.CreateVideoRequest) (*model.VideoModel, error) {
	if !constants.IsValidRole(caller.Role) {
		return nil, apperr.PermissionDenied("Role tidak dikenali")
	}
	in.Normalize()
	if err := helper.ValidateStruct(in); err != nil {
		return nil, err
	}
	v := &model.VideoModel{
		ID:        uuid.New(),
		Title:     in.Title,
		URL:       in.URL,
		CreatedBy: caller.UserID,
		CreatedAt: s.Now().UTC(),
	}
	if id, ok := YouTubeID(in.URL); ok {
		v.YouTubeID = &id
	}
	if err := s.Repo.Create(ctx, v); err != nil {
		return nil, apperr.Backend(err)
	}
	log.Printf("[VIDEOS] added %s by %s", v.ID, caller.UserID)
	return v, nil
}

func (s *Service) Delete(ctx context.Context, caller session.Principal, id uuid.UUID) error {
	if !caller.IsTeacher() {
		return apperr.PermissionDenied(constants.RoleErrorTeacher("video"))
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("video")
		}
		return apperr.Backend(err)
	}
	return nil
}
