package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SubmissionModel backs the three *_submissions tables.
// (work_item_id, student_id, attempt) is unique; the index is created in migrations.
type SubmissionModel struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	WorkItemID  uuid.UUID `gorm:"column:work_item_id;type:uuid;not null" json:"work_item_id"`
	StudentID   uuid.UUID `gorm:"column:student_id;type:uuid;not null" json:"student_id"`
	Attempt     int       `gorm:"column:attempt;not null" json:"attempt"`
	FilePath    string    `gorm:"column:file_path;type:text;not null" json:"file_path"`
	FileName    string    `gorm:"column:file_name;type:varchar(255);not null" json:"file_name"`
	ContentType string    `gorm:"column:content_type;type:varchar(120)" json:"content_type"`
	Size        int64     `gorm:"column:size;not null;default:0" json:"size"`
	SubmittedAt time.Time `gorm:"column:submitted_at;type:timestamptz;not null" json:"submitted_at"`

	Verified bool       `gorm:"column:verified;not null;default:false" json:"verified"`
	Marks    *float64   `gorm:"column:marks;type:numeric(6,2)" json:"marks"`
	Feedback *string    `gorm:"column:feedback;type:text" json:"feedback"`
	GradedBy *uuid.UUID `gorm:"column:graded_by;type:uuid" json:"graded_by"`
	GradedAt *time.Time `gorm:"column:graded_at;type:timestamptz" json:"graded_at"`

	// project submissions only
	Title       *string           `gorm:"column:title;type:varchar(200)" json:"title,omitempty"`
	Description *string           `gorm:"column:description;type:text" json:"description,omitempty"`
	Links       datatypes.JSONMap `gorm:"column:links;type:jsonb" json:"links,omitempty"`
}

// MaxMarks is the largest value the numeric(6,2) marks column holds.
const MaxMarks = 9999.99

// GradeUpdate carries only the grading columns a teacher sent.
type GradeUpdate struct {
	SetVerified bool
	Verified    bool

	SetMarks bool
	Marks    *float64

	SetFeedback bool
	Feedback    *string

	GradedBy uuid.UUID
	GradedAt time.Time
}
