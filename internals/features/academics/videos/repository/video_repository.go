package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"portalku_backend/internals/features/academics/videos/model"
)

var ErrNotFound = errors.New("video not found")

type Repository interface {
	List(ctx context.Context, offset, limit int) ([]model.VideoModel, int64, error)
	Create(ctx context.Context, v *model.VideoModel) error
	Delete(ctx context.Context, id uuid.UUID) error
}

/* ===================== gorm ===================== */

type GormRepository struct{ DB *gorm.DB }

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) List(ctx context.Context, offset, limit int) ([]model.VideoModel, int64, error) {
	var (
		rows  []model.VideoModel
		total int64
	)
	q := r.DB.WithContext(ctx).Model(&model.VideoModel{})
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

func (r *GormRepository) Create(ctx context.Context, v *model.VideoModel) error {
	return r.DB.WithContext(ctx).Create(v).Error
}

func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.VideoModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

/* ===================== memory ===================== */

type MemoryRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.VideoModel
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: map[uuid.UUID]model.VideoModel{}}
}

func (r *MemoryRepository) List(ctx context.Context, offset, limit int) ([]model.VideoModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.VideoModel, 0, len(r.rows))
	for _, v := range r.rows {
		out = append(out, v)
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

func (r *MemoryRepository) Create(ctx context.Context, v *model.VideoModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[v.ID] = *v
	return nil
}

func (r *MemoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return ErrNotFound
	}
	delete(r.rows, id)
	return nil
}
