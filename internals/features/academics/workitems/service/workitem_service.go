package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"portalku_backend/internals/configs"
	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/workitems/dto"
	"portalku_backend/internals/features/academics/workitems/model"
	"portalku_backend/internals/features/academics/workitems/repository"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
	"portalku_backend/internals/helpers/dbtime"
	"portalku_backend/internals/helpers/storage"
)

// ModuleChecker is satisfied by the modules service.
type ModuleChecker interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type SubmitInput struct {
	File    *storage.File
	Project dto.ProjectFields
}

// Service serves one work-item kind. The three kinds are three instances.
type Service struct {
	Spec           model.KindSpec
	Repo           repository.Repository
	Tracker        *storage.Tracker
	Modules        ModuleChecker // optional
	Loc            *time.Location
	MaxUploadBytes int64
	Now            func() time.Time
}

func NewService(kind model.Kind, repo repository.Repository, tracker *storage.Tracker, modules ModuleChecker) *Service {
	return &Service{
		Spec:           model.MustSpec(kind),
		Repo:           repo,
		Tracker:        tracker,
		Modules:        modules,
		Loc:            configs.AppLocation(),
		MaxUploadBytes: configs.Int64("UPLOAD_MAX_BYTES"),
		Now:            time.Now,
	}
}

func (s *Service) now() time.Time { return s.Now().UTC() }

func (s *Service) label() string { return string(s.Spec.Kind) }

/* =========================
   WORK ITEMS
========================= */

func (s *Service) List(ctx context.Context, moduleID *uuid.UUID, p helper.Paging) ([]model.WorkItemModel, int64, error) {
	rows, total, err := s.Repo.ListItems(ctx, s.Spec, repository.ItemFilter{
		ModuleID: moduleID,
		Offset:   p.Offset,
		Limit:    p.Limit,
	})
	if err != nil {
		return nil, 0, apperr.Backend(err)
	}
	return rows, total, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.WorkItemModel, error) {
	it, err := s.Repo.FindItem(ctx, s.Spec, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound(s.label())
		}
		return nil, apperr.Backend(err)
	}
	return it, nil
}

func (s *Service) Create(ctx context.Context, caller session.Principal, in dto.CreateWorkItemRequest) (*model.WorkItemModel, error) {
	if !caller.IsTeacher() {
		return nil, apperr.PermissionDenied(constants.RoleErrorTeacher(s.label()))
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

	deadline, derr := in.DeadlineInput().Resolve(s.Loc)
	switch {
	case derr != nil:
		fields["deadline"] = append(fields["deadline"], derr.Error())
	case deadline == nil && s.Spec.DeadlineRequired:
		fields["deadline"] = append(fields["deadline"], "is required")
	}
	if in.MaxSubmissions != nil && !s.Spec.Limited {
		fields["max_submissions"] = append(fields["max_submissions"], "is only supported for homework")
	}
	if len(fields) > 0 {
		return nil, apperr.ValidationFields(fields)
	}

	var moduleID *uuid.UUID
	if in.ModuleID != nil {
		id, _ := uuid.Parse(*in.ModuleID) // sudah lolos tag uuid
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
	}

	now := s.now()
	it := &model.WorkItemModel{
		ID:                uuid.New(),
		ModuleID:          moduleID,
		Title:             in.Title,
		Description:       in.Description,
		Deadline:          deadline,
		Points:            in.Points,
		MaxSubmissions:    in.MaxSubmissions,
		AllowedExtensions: pq.StringArray(in.AllowedExtensions),
		CreatedBy:         caller.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if s.Spec.Limited && it.MaxSubmissions == nil {
		n := s.Spec.DefaultMax
		it.MaxSubmissions = &n
	}
	if err := s.Repo.CreateItem(ctx, s.Spec, it); err != nil {
		return nil, apperr.Backend(err)
	}
	log.Printf("[%s] created %s by %s", s.Spec.ItemsTable, it.ID, caller.UserID)
	return it, nil
}

// Delete removes submissions and item in one transaction, then tries to drop
// the submitted files. File removal never fails the call.
func (s *Service) Delete(ctx context.Context, caller session.Principal, id uuid.UUID) error {
	if !caller.IsTeacher() {
		return apperr.PermissionDenied(constants.RoleErrorTeacher(s.label()))
	}
	paths, err := s.Repo.DeleteItemCascade(ctx, s.Spec, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound(s.label())
		}
		return apperr.Backend(err)
	}
	log.Printf("[%s] deleted %s (%d submission file)", s.Spec.ItemsTable, id, len(paths))
	storage.RemoveQuietly(ctx, s.Tracker.Store, s.Spec.Bucket, paths...)
	return nil
}

/* =========================
   SUBMISSIONS
========================= */

func (s *Service) Submit(ctx context.Context, caller session.Principal, itemID uuid.UUID, in SubmitInput) (sub *model.SubmissionModel, err error) {
	defer func() {
		s.observe(err)
	}()

	if !caller.IsStudent() {
		return nil, apperr.PermissionDenied(constants.RoleErrorStudent("submission"))
	}
	if in.File == nil || in.File.Body == nil || in.File.Size <= 0 {
		return nil, apperr.ValidationFields(map[string][]string{"file": {"is required"}})
	}
	if s.MaxUploadBytes > 0 && in.File.Size > s.MaxUploadBytes {
		return nil, apperr.ValidationFields(map[string][]string{"file": {"is too large"}})
	}

	item, err := s.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if ext := storage.Ext(in.File.Name); !item.AllowsExtension(ext) {
		return nil, apperr.ValidationFields(map[string][]string{
			"file": {"extension ." + ext + " is not allowed"},
		})
	}

	now := s.now()
	if dbtime.Passed(item.Deadline, now) {
		return nil, apperr.DeadlineExpired(*item.Deadline)
	}

	limit := s.Spec.EffectiveMax(item)
	if limit > 0 {
		n, err := s.Repo.CountAttempts(ctx, s.Spec, item.ID, caller.UserID)
		if err != nil {
			return nil, apperr.Backend(err)
		}
		if n >= limit {
			return nil, apperr.LimitExceeded(limit)
		}
	}

	row := &model.SubmissionModel{
		ID:          uuid.New(),
		WorkItemID:  item.ID,
		StudentID:   caller.UserID,
		FileName:    in.File.Name,
		ContentType: in.File.ContentType,
		Size:        in.File.Size,
		SubmittedAt: now,
	}
	if s.Spec.ProjectFields {
		in.Project.Normalize()
		if err := helper.ValidateStruct(in.Project); err != nil {
			return nil, err
		}
		row.Title = in.Project.Title
		row.Description = in.Project.Description
		if links := in.Project.LinkMap(); len(links) > 0 {
			row.Links = make(map[string]any, len(links))
			for k, v := range links {
				row.Links[k] = v
			}
		}
	}

	key := storage.BuildObjectKey([]string{item.ID.String(), caller.UserID.String()}, in.File.Name, now)
	staged, err := s.Tracker.Stage(ctx, s.Spec.Bucket, key, in.File.Body, in.File.Size, in.File.ContentType)
	if err != nil {
		return nil, err
	}
	row.FilePath = staged.Key

	if err := s.Repo.InsertSubmission(ctx, s.Spec, row, limit); err != nil {
		staged.Abort(ctx)
		if errors.Is(err, repository.ErrLimitReached) {
			return nil, apperr.LimitExceeded(limit)
		}
		return nil, apperr.Backend(err)
	}
	staged.Commit(ctx)

	log.Printf("[%s] submission %s attempt=%d student=%s", s.Spec.SubmissionsTable, row.ID, row.Attempt, caller.UserID)
	return row, nil
}

func (s *Service) observe(err error) {
	kind := ""
	if err != nil {
		kind = string(apperr.KindOf(err))
	}
	submissionOutcome(s.label(), kind)
}

// ListFor: guru melihat semua, siswa hanya miliknya sendiri.
func (s *Service) ListFor(ctx context.Context, caller session.Principal, itemID uuid.UUID) ([]model.SubmissionModel, error) {
	if _, err := s.Get(ctx, itemID); err != nil {
		return nil, err
	}
	var only *uuid.UUID
	if !caller.IsTeacher() {
		id := caller.UserID
		only = &id
	}
	rows, err := s.Repo.ListSubmissions(ctx, s.Spec, itemID, only)
	if err != nil {
		return nil, apperr.Backend(err)
	}
	return rows, nil
}

func (s *Service) Grade(ctx context.Context, caller session.Principal, submissionID uuid.UUID, in dto.GradeRequest) (*model.SubmissionModel, error) {
	if !caller.IsTeacher() {
		return nil, apperr.PermissionDenied(constants.RoleErrorTeacher("penilaian"))
	}
	if in.Empty() {
		return nil, apperr.Validation("nothing to update")
	}

	upd := model.GradeUpdate{GradedBy: caller.UserID, GradedAt: s.now()}
	if in.Verified != nil {
		upd.SetVerified, upd.Verified = true, *in.Verified
	}
	if in.Marks.Present {
		upd.SetMarks = true
		if in.Marks.Value != nil {
			v, msg := normalizeMarks(*in.Marks.Value)
			if msg != "" {
				return nil, apperr.ValidationFields(map[string][]string{"marks": {msg}})
			}
			upd.Marks = &v
		}
	}
	if in.Feedback.Present {
		upd.SetFeedback = true
		if in.Feedback.Value != nil && *in.Feedback.Value != "" {
			fb := *in.Feedback.Value
			upd.Feedback = &fb
		}
	}

	row, err := s.Repo.UpdateGrade(ctx, s.Spec, submissionID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.NotFound("submission")
		}
		return nil, apperr.Backend(err)
	}
	return row, nil
}

// normalizeMarks rounds to the column's two decimals and rejects what the column cannot hold.
func normalizeMarks(v float64) (float64, string) {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return 0, "must be a finite number"
	case v < 0:
		return 0, "must be greater than or equal to 0"
	}
	v = math.Round(v*100) / 100
	if v > model.MaxMarks {
		return 0, fmt.Sprintf("must be at most %.2f", model.MaxMarks)
	}
	return v, ""
}

// ResolveDownloadURL signs the submission file for the kind's TTL.
func (s *Service) ResolveDownloadURL(ctx context.Context, caller session.Principal, submissionID uuid.UUID) (storage.SignedLink, error) {
	row, err := s.Repo.FindSubmission(ctx, s.Spec, submissionID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return storage.SignedLink{}, apperr.NotFound("submission")
		}
		return storage.SignedLink{}, apperr.Backend(err)
	}
	if !caller.IsTeacher() && row.StudentID != caller.UserID {
		return storage.SignedLink{}, apperr.PermissionDenied("Hanya guru atau pemilik submission yang boleh mengunduh")
	}
	return storage.Resolve(ctx, s.Tracker.Store, s.Spec.Bucket, row.FilePath, s.Spec.URLTTL, s.now())
}

// HasReference lets the orphan reaper ask whether a key in this kind's bucket is still used.
func (s *Service) HasReference(ctx context.Context, bucket, key string) (bool, error) {
	if bucket != s.Spec.Bucket {
		return false, nil
	}
	return s.Repo.HasObject(ctx, s.Spec, key)
}
