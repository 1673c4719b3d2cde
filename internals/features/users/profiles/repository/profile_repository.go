package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portalku_backend/internals/features/users/profiles/model"
)

var ErrNotFound = errors.New("profile not found")

type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProfileModel, error)
	// InsertIfAbsent reports whether a row was created.
	InsertIfAbsent(ctx context.Context, p *model.ProfileModel) (bool, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
	// UpdatedSince lists rows whose updated_at is after since, oldest first.
	UpdatedSince(ctx context.Context, since time.Time) ([]model.ProfileModel, error)
}

type GormRepository struct{ DB *gorm.DB }

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProfileModel, error) {
	var p model.ProfileModel
	if err := r.DB.WithContext(ctx).Where("id = ?", id).Take(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *GormRepository) InsertIfAbsent(ctx context.Context, p *model.ProfileModel) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	res := r.DB.WithContext(ctx).Model(&model.ProfileModel{}).
		Where("id = ?", id).
		Updates(map[string]any{"role": role, "updated_at": gorm.Expr("now()")}) // jam DB, bukan jam proses CLI
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepository) UpdatedSince(ctx context.Context, since time.Time) ([]model.ProfileModel, error) {
	var rows []model.ProfileModel
	err := r.DB.WithContext(ctx).
		Where("updated_at > ?", since).
		Order("updated_at ASC").
		Limit(1000).
		Find(&rows).Error
	return rows, err
}
