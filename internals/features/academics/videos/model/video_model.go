package model

import (
	"time"

	"github.com/google/uuid"
)

type VideoModel struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"column:title;type:varchar(200);not null" json:"title"`
	URL       string    `gorm:"column:url;type:text;not null" json:"url"`
	YouTubeID *string   `gorm:"column:youtube_id;type:varchar(32)" json:"youtube_id,omitempty"`
	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at;type:timestamptz;not null;index:idx_videos_created_at" json:"created_at"`
}

func (VideoModel) TableName() string { return "videos" }
