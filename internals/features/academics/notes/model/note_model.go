package model

import (
	"time"

	"github.com/google/uuid"
)

type NoteModel struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ModuleID    *uuid.UUID `gorm:"column:module_id;type:uuid;index:idx_notes_module_id" json:"module_id,omitempty"`
	Title       string     `gorm:"column:title;type:varchar(200);not null" json:"title"`
	FilePath    string     `gorm:"column:file_path;type:text;not null" json:"file_path"`
	FileName    string     `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	ContentType string     `gorm:"column:content_type;type:varchar(120)" json:"content_type"`
	FileType    string     `gorm:"column:file_type;type:varchar(20);not null;default:'other'" json:"file_type"`
	Size        int64      `gorm:"column:size;not null;default:0" json:"size"`
	UploaderID  uuid.UUID  `gorm:"column:uploader_id;type:uuid;not null" json:"uploader_id"`
	CreatedAt   time.Time  `gorm:"column:created_at;type:timestamptz;not null;index:idx_notes_created_at" json:"created_at"`
}

func (NoteModel) TableName() string { return "notes" }
