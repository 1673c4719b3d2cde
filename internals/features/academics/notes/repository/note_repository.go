package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"portalku_backend/internals/features/academics/notes/model"
)

var ErrNotFound = errors.New("note not found")

type Repository interface {
	List(ctx context.Context, moduleID *uuid.UUID, offset, limit int) ([]model.NoteModel, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.NoteModel, error)
	Create(ctx context.Context, n *model.NoteModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasObject(ctx context.Context, path string) (bool, error)
}

/* ===================== gorm ===================== */

type GormRepository struct{ DB *gorm.DB }

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) List(ctx context.Context, moduleID *uuid.UUID, offset, limit int) ([]model.NoteModel, int64, error) {
	var (
		rows  []model.NoteModel
		total int64
	)
	q := r.DB.WithContext(ctx).Model(&model.NoteModel{})
	if moduleID != nil {
		q = q.Where("module_id = ?", *moduleID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	if err := q.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.NoteModel, error) {
	var n model.NoteModel
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&n).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}

func (r *GormRepository) Create(ctx context.Context, n *model.NoteModel) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.NoteModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) HasObject(ctx context.Context, path string) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&model.NoteModel{}).Where("file_path = ?", path).Limit(1).Count(&n).Error
	return n > 0, err
}

/* ===================== memory ===================== */

type MemoryRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.NoteModel

	// Err dipakai test untuk mensimulasikan DB error.
	Err error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: map[uuid.UUID]model.NoteModel{}}
}

func (r *MemoryRepository) List(ctx context.Context, moduleID *uuid.UUID, offset, limit int) ([]model.NoteModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, 0, r.Err
	}
	out := make([]model.NoteModel, 0, len(r.rows))
	for _, n := range r.rows {
		if moduleID != nil && (n.ModuleID == nil || *n.ModuleID != *moduleID) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, total, nil
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.NoteModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	n, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &n, nil
}

func (r *MemoryRepository) Create(ctx context.Context, n *model.NoteModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.rows[n.ID] = *n
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}

func (r *MemoryRepository) HasObject(ctx context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.rows {
		if n.FilePath == path {
			return true, nil
		}
	}
	return false, nil
}
