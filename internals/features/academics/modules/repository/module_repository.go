package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"portalku_backend/internals/features/academics/modules/model"
)

var ErrNotFound = errors.New("module not found")

type Repository interface {
	List(ctx context.Context, offset, limit int) ([]model.ModuleModel, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.ModuleModel, error)
	Create(ctx context.Context, m *model.ModuleModel) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ContentCount counts work items and notes attached to the module.
	ContentCount(ctx context.Context, id uuid.UUID) (int64, error)
}

/* ===================== gorm ===================== */

type GormRepository struct{ DB *gorm.DB }

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) List(ctx context.Context, offset, limit int) ([]model.ModuleModel, int64, error) {
	var (
		rows  []model.ModuleModel
		total int64
	)
	q := r.DB.WithContext(ctx).Model(&model.ModuleModel{})
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

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ModuleModel, error) {
	var m model.ModuleModel
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *GormRepository) Create(ctx context.Context, m *model.ModuleModel) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&model.ModuleModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) ContentCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Raw(`
		SELECT
		  (SELECT COUNT(*) FROM homeworks   WHERE module_id = @id) +
		  (SELECT COUNT(*) FROM assignments WHERE module_id = @id) +
		  (SELECT COUNT(*) FROM projects    WHERE module_id = @id) +
		  (SELECT COUNT(*) FROM notes       WHERE module_id = @id)`,
		map[string]any{"id": id}).Scan(&n).Error
	return n, err
}

/* ===================== memory ===================== */

type MemoryRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.ModuleModel

	// Content is consulted by ContentCount; nil means empty.
	Content func(id uuid.UUID) int64
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: map[uuid.UUID]model.ModuleModel{}}
}

func (r *MemoryRepository) List(ctx context.Context, offset, limit int) ([]model.ModuleModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ModuleModel, 0, len(r.rows))
	for _, m := range r.rows {
		out = append(out, m)
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

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ModuleModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (r *MemoryRepository) Create(ctx context.Context, m *model.ModuleModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[m.ID] = *m
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

func (r *MemoryRepository) ContentCount(ctx context.Context, id uuid.UUID) (int64, error) {
	if r.Content == nil {
		return 0, nil
	}
	return r.Content(id), nil
}
