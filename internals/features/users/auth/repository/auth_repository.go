package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"portalku_backend/internals/features/users/auth/model"
	helper "portalku_backend/internals/helpers"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type Repository interface {
	CreateUser(ctx context.Context, u *model.UserModel) error
	FindUserByID(ctx context.Context, id uuid.UUID) (*model.UserModel, error)
	FindUserByEmail(ctx context.Context, email string) (*model.UserModel, error)
	FindUserByGoogleID(ctx context.Context, googleID string) (*model.UserModel, error)
	LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error

	BlacklistToken(ctx context.Context, token string, until time.Time) error
	IsBlacklisted(ctx context.Context, token string) (bool, error)
	CleanupExpiredBlacklist(ctx context.Context, now time.Time) (int64, error)
}

/* ====================== GORM ====================== */

type GormRepository struct{ DB *gorm.DB }

func NewGormRepository(db *gorm.DB) *GormRepository { return &GormRepository{DB: db} }

func (r *GormRepository) findOne(ctx context.Context, where string, arg any) (*model.UserModel, error) {
	var u model.UserModel
	if err := r.DB.WithContext(ctx).Where(where, arg).Take(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *GormRepository) CreateUser(ctx context.Context, u *model.UserModel) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if err := r.DB.WithContext(ctx).Create(u).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (r *GormRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*model.UserModel, error) {
	return r.findOne(ctx, "id = ?", id)
}

func (r *GormRepository) FindUserByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *GormRepository) FindUserByGoogleID(ctx context.Context, googleID string) (*model.UserModel, error) {
	return r.findOne(ctx, "google_id = ?", googleID)
}

func (r *GormRepository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	err := r.DB.WithContext(ctx).Model(&model.UserModel{}).
		Where("id = ? AND google_id IS NULL", id).
		Update("google_id", googleID).Error
	if helper.IsUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

/* ====================== BLACKLIST TOKEN ====================== */

func (r *GormRepository) BlacklistToken(ctx context.Context, token string, until time.Time) error {
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "token"}}, DoNothing: true}).
		Create(&model.TokenBlacklist{Token: token, ExpiredAt: until.UTC()}).Error
}

func (r *GormRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.DB.WithContext(ctx).
		Raw(`SELECT EXISTS(SELECT 1 FROM token_blacklist WHERE token = ?)`, token).
		Scan(&exists).Error
	return exists, err
}

func (r *GormRepository) CleanupExpiredBlacklist(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Exec(`DELETE FROM token_blacklist WHERE expired_at <= ?`, now.UTC())
	return res.RowsAffected, res.Error
}
