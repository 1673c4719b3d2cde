package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// WorkItemModel backs homeworks, assignments and projects. The table comes
// from the KindSpec, so the struct carries no TableName and no named indexes.
type WorkItemModel struct {
	ID                uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ModuleID          *uuid.UUID     `gorm:"column:module_id;type:uuid" json:"module_id,omitempty"`
	Title             string         `gorm:"column:title;type:varchar(200);not null" json:"title"`
	Description       *string        `gorm:"column:description;type:text" json:"description,omitempty"`
	Deadline          *time.Time     `gorm:"column:deadline;type:timestamptz" json:"deadline,omitempty"`
	Points            int            `gorm:"column:points;not null;default:0" json:"points"`
	MaxSubmissions    *int           `gorm:"column:max_submissions" json:"max_submissions,omitempty"`
	AllowedExtensions pq.StringArray `gorm:"column:allowed_extensions;type:text[]" json:"allowed_extensions,omitempty"`
	CreatedBy         uuid.UUID      `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt         time.Time      `gorm:"column:created_at;type:timestamptz;not null" json:"created_at"`
	UpdatedAt         time.Time      `gorm:"column:updated_at;type:timestamptz;autoUpdateTime" json:"updated_at"`
}

// AllowsExtension reports whether ext (lower-case, no dot) may be submitted.
func (w *WorkItemModel) AllowsExtension(ext string) bool {
	if len(w.AllowedExtensions) == 0 {
		return true
	}
	for _, e := range w.AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
