package model

import (
	"time"

	"github.com/google/uuid"
)

// ProfileModel: satu baris per user. PK = user id, jadi lazy-create selalu idempotent.
type ProfileModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Role      string    `gorm:"column:role;type:varchar(16);not null;default:'student'" json:"role"`
	FullName  string    `gorm:"column:full_name;type:varchar(150);not null" json:"full_name"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime;index:idx_profiles_updated_at" json:"updated_at"`
}

func (ProfileModel) TableName() string {
	return "profiles"
}
