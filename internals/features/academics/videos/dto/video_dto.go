package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"portalku_backend/internals/features/academics/videos/model"
)

type CreateVideoRequest struct {
	Title string `json:"title" form:"title" validate:"required,max=200"`
	URL   string `json:"url" form:"url" validate:"required,http_url,max=2048"`
}

func (r *CreateVideoRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.URL = strings.TrimSpace(r.URL)
}

type VideoResponse struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	YouTubeID    *string   `json:"youtube_id,omitempty"`
	EmbedURL     *string   `json:"embed_url,omitempty"`
	ThumbnailURL *string   `json:"thumbnail_url,omitempty"`
	CreatedBy    uuid.UUID `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
}

func FromModel(m model.VideoModel) VideoResponse {
	out := VideoResponse{
		ID:        m.ID,
		Title:     m.Title,
		URL:       m.URL,
		YouTubeID: m.YouTubeID,
		CreatedBy: m.CreatedBy,
		CreatedAt: m.CreatedAt,
	}
	if m.YouTubeID != nil {
		embed := "https://www.youtube.com/embed/" + *m.YouTubeID
		thumb := "https://img.youtube.com/vi/" + *m.YouTubeID + "/hqdefault.jpg"
		out.EmbedURL, out.ThumbnailURL = &embed, &thumb
	}
	return out
}

func FromModels(rows []model.VideoModel) []VideoResponse {
	out := make([]VideoResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
