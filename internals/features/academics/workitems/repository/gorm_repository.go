package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"portalku_backend/internals/features/academics/workitems/model"
	helper "portalku_backend/internals/helpers"
)

const insertRetries = 3

type GormRepository struct{ DB *gorm.DB }

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) items(ctx context.Context, spec model.KindSpec) *gorm.DB {
	return r.DB.WithContext(ctx).Table(spec.ItemsTable)
}

func (r *GormRepository) subs(ctx context.Context, spec model.KindSpec) *gorm.DB {
	return r.DB.WithContext(ctx).Table(spec.SubmissionsTable)
}

func (r *GormRepository) ListItems(ctx context.Context, spec model.KindSpec, f ItemFilter) ([]model.WorkItemModel, int64, error) {
	var (
		rows  []model.WorkItemModel
		total int64
	)
	q := r.items(ctx, spec)
	if f.ModuleID != nil {
		q = q.Where("module_id = ?", *f.ModuleID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *GormRepository) FindItem(ctx context.Context, spec model.KindSpec, id uuid.UUID) (*model.WorkItemModel, error) {
	var it model.WorkItemModel
	if err := r.items(ctx, spec).Where("id = ?", id).Take(&it).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &it, nil
}

func (r *GormRepository) CreateItem(ctx context.Context, spec model.KindSpec, item *model.WorkItemModel) error {
	return r.items(ctx, spec).Create(item).Error
}

func (r *GormRepository) DeleteItemCascade(ctx context.Context, spec model.KindSpec, id uuid.UUID) ([]string, error) {
	var paths []string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(spec.SubmissionsTable).
			Where("work_item_id = ?", id).
			Pluck("file_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Table(spec.SubmissionsTable).
			Where("work_item_id = ?", id).
			Delete(&model.SubmissionModel{}).Error; err != nil {
			return err
		}
		res := tx.Table(spec.ItemsTable).Where("id = ?", id).Delete(&model.WorkItemModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

func (r *GormRepository) CountAttempts(ctx context.Context, spec model.KindSpec, itemID, studentID uuid.UUID) (int, error) {
	var n int64
	err := r.subs(ctx, spec).
		Where("work_item_id = ? AND student_id = ?", itemID, studentID).
		Count(&n).Error
	return int(n), err
}

// InsertSubmission computes MAX(attempt)+1 inside a transaction. The unique
// index on (work_item_id, student_id, attempt) turns a concurrent race into a
// unique violation, which is retried against the fresh maximum.
func (r *GormRepository) InsertSubmission(ctx context.Context, spec model.KindSpec, sub *model.SubmissionModel, max int) error {
	for i := 0; i < insertRetries; i++ {
		err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var last int
			if err := tx.Table(spec.SubmissionsTable).
				Select("COALESCE(MAX(attempt), 0)").
				Where("work_item_id = ? AND student_id = ?", sub.WorkItemID, sub.StudentID).
				Scan(&last).Error; err != nil {
				return err
			}
			if max > 0 && last >= max {
				return ErrLimitReached
			}
			sub.Attempt = last + 1
			return tx.Table(spec.SubmissionsTable).Create(sub).Error
		})
		if err == nil || errors.Is(err, ErrLimitReached) {
			return err
		}
		if !helper.IsUniqueViolation(err) {
			return err
		}
	}
	return ErrConflict
}

func (r *GormRepository) ListSubmissions(ctx context.Context, spec model.KindSpec, itemID uuid.UUID, studentID *uuid.UUID) ([]model.SubmissionModel, error) {
	var rows []model.SubmissionModel
	q := r.subs(ctx, spec).Where("work_item_id = ?", itemID)
	if studentID != nil {
		q = q.Where("student_id = ?", *studentID)
	}
	err := q.Order("submitted_at DESC").Order("attempt DESC").Find(&rows).Error
	return rows, err
}

func (r *GormRepository) FindSubmission(ctx context.Context, spec model.KindSpec, id uuid.UUID) (*model.SubmissionModel, error) {
	var s model.SubmissionModel
	if err := r.subs(ctx, spec).Where("id = ?", id).Take(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (r *GormRepository) UpdateGrade(ctx context.Context, spec model.KindSpec, id uuid.UUID, g model.GradeUpdate) (*model.SubmissionModel, error) {
	updates := map[string]any{
		"graded_by": g.GradedBy,
		"graded_at": g.GradedAt,
	}
	if g.SetVerified {
		updates["verified"] = g.Verified
	}
	if g.SetMarks {
		updates["marks"] = g.Marks
	}
	if g.SetFeedback {
		updates["feedback"] = g.Feedback
	}
	res := r.subs(ctx, spec).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindSubmission(ctx, spec, id)
}

func (r *GormRepository) HasObject(ctx context.Context, spec model.KindSpec, path string) (bool, error) {
	var exists bool
	err := r.DB.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM `+spec.SubmissionsTable+` WHERE file_path = ?)`, path).
		Scan(&exists).Error
	return exists, err
}
