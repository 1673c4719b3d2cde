package model

import (
	"time"

	"github.com/google/uuid"
)

type ModuleModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description *string   `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedBy   uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt   time.Time `gorm:"column:created_at;type:timestamptz;not null;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
}

func (ModuleModel) TableName() string { return "modules" }
