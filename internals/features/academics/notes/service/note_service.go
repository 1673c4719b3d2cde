package service

import (
	"bytes"
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"portalku_backend/internals/configs"
	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/notes/dto"
	"portalku_backend/internals/features/academics/notes/model"
	"portalku_backend/internals/features/academics/notes/repository"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
	"portalku_backend/internals/helpers/imagex"
	"portalku_backend/internals/helpers/storage"
)

const URLTTL = 30 * time.Minute

type ModuleChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	Repo           repository.Repository
	Tracker        *storage.Tracker
	Modules        ModuleChecker    // optional
	Optimize       imagex.Optimizer // nil = simpan apa adanya
	MaxUploadBytes int64
	Now            func() time.Time
}

func NewService(repo repository.Repository, tracker *storage.Tracker, modules ModuleChecker, opt imagex.Optimizer) *Service {
	return &Service{
		Repo:           repo,
		Tracker:        tracker,
		Modules:        modules,
		Optimize:       opt,
		MaxUploadBytes: configs.Int64("UPLOAD_MAX_BYTES"),
		Now:            time.Now,
	}
}

func (s *Service) List(ctx context.Context, moduleID *uuid.UUID, p helper.Paging) ([]model.NoteModel, int64, error) {
	rows, total, err := s.Repo.List(ctx, moduleID, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, apperr.Backend(err)
	}
	return rows, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.NoteModel, error) {
	n, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("note")
		}
		return nil, apperr.Backend(err)
	}
	return n, nil
}

// Upload terbuka untuk semua user yang login (guru & siswa).
func (s *Service) Upload(ctx context.Context, caller session.Principal, in dto.CreateNoteRequest, file *storage.File) (*model.NoteModel, error) {
	if !constants.IsValidRole(caller.Role) {
		return nil, apperr.PermissionDenied("Role tidak dikenali")
	}
	in.Normalize()
	fields := map[string][]string{}
	if err := helper.ValidateStruct(in); err != nil {
		ae, ok := apperr.As(err)
		if !ok || ae.Fields == nil {
			return nil, err
		}
		for k, v := range ae.Fields {
			fields[k] = v
		}
	}
	if file == nil || file.Body == nil || file.Size <= 0 {
		fields["file"] = append(fields["file"], "is required")
	} else if s.MaxUploadBytes > 0 && file.Size > s.MaxUploadBytes {
		fields["file"] = append(fields["file"], "is too large")
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	folder := "general"
	var moduleID *uuid.UUID
	if in.ModuleID != nil {
		id, _ := uuid.Parse(*in.ModuleID)
		if s.Modules != nil {
			ok, err := s.Modules.Exists(ctx, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, apperr.ValidationFields(map[string][]string{"module_id": {"module not found"}})
			}
		}
		moduleID = &id
		folder = id.String()
	}

	file, err := s.optimize(file)
	if err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	key := storage.BuildObjectKey([]string{folder, caller.UserID.String()}, file.Name, now)
	staged, err := s.Tracker.Stage(ctx, storage.BucketNotes, key, file.Body, file.Size, file.ContentType)
	if err != nil {
		return nil, err
	}

	n := &model.NoteModel{
		ID:          uuid.New(),
		ModuleID:    moduleID,
		Title:       in.Title,
		FilePath:    staged.Key,
		FileName:    file.Name,
		ContentType: file.ContentType,
		FileType:    constants.DetectFileTypeFromExt(file.Name),
		Size:        file.Size,
		UploaderID:  caller.UserID,
		CreatedAt:   now,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		staged.Abort(ctx)
		return nil, apperr.Backend(err)
	}
	staged.Commit(ctx)
	log.Printf("[NOTES] uploaded %s (%s, %d bytes) by %s", n.ID, n.FileType, n.Size, caller.UserID)
	return n, nil
}

// optimize re-encodes raster images to WebP. An encoder failure keeps the original bytes.
func (s *Service) optimize(file *storage.File) (*storage.File, error) {
	if s.Optimize == nil {
		return file, nil
	}
	data, err := io.ReadAll(io.LimitReader(file.Body, file.Size+1))
	if err != nil {
		return nil, apperr.Validation("gagal membaca file")
	}
	orig := &storage.File{Name: file.Name, ContentType: file.ContentType, Size: int64(len(data)), Body: bytes.NewReader(data)}

	res, ok, err := s.Optimize(data, file.Name)
	if err != nil {
		log.Printf("[NOTES] optimasi webp gagal, pakai file asli: %v", err)
		return orig, nil
	}
	if !ok || len(res.Data) == 0 {
		return orig, nil
	}
	return &storage.File{Name: res.FileName, ContentType: res.ContentType, Size: int64(len(res.Data)), Body: bytes.NewReader(res.Data)}, nil
}

// Delete (guru): hapus row dulu, lalu object secara best-effort.
func (s *Service) Delete(ctx context.Context, caller session.Principal, id uuid.UUID) error {
	if !caller.IsTeacher() {
		return apperr.PermissionDenied(constants.RoleErrorTeacher("catatan"))
	}
	n, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("note")
		}
		return apperr.Backend(err)
	}
	storage.RemoveQuietly(ctx, s.Tracker.Store, storage.BucketNotes, n.FilePath)
	return nil
}

func (s *Service) DownloadURL(ctx context.Context, id uuid.UUID) (storage.SignedLink, error) {
	n, err := s.Get(ctx, id)
	if err != nil {
		return storage.SignedLink{}, err
	}
	return storage.Resolve(ctx, s.Tracker.Store, storage.BucketNotes, n.FilePath, URLTTL, s.Now().UTC())
}

func (s *Service) HasReference(ctx context.Context, bucket, key string) (bool, error) {
	if bucket != storage.BucketNotes {
		return false, nil
	}
	return s.Repo.HasObject(ctx, key)
}
