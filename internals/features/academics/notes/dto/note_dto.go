package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"portalku_backend/internals/features/academics/notes/model"
)

type CreateNoteRequest struct {
	Title    string  `form:"title" json:"title" validate:"required,max=200"`
	ModuleID *string `form:"module_id" json:"module_id" validate:"omitempty,uuid"`
}

func (r *CreateNoteRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.ModuleID != nil {
		v := strings.TrimSpace(*r.ModuleID)
		if v == "" {
			r.ModuleID = nil
		} else {
			r.ModuleID = &v
		}
	}
}

type NoteResponse struct {
	ID          uuid.UUID  `json:"id"`
	ModuleID    *uuid.UUID `json:"module_id,omitempty"`
	Title       string     `json:"title"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type,omitempty"`
	FileType    string     `json:"file_type"`
	Size        int64      `json:"size"`
	UploaderID  uuid.UUID  `json:"uploader_id"`
	CreatedAt   time.Time  `json:"created_at"`
}

func FromModel(m model.NoteModel) NoteResponse {
	return NoteResponse{
		ID:          m.ID,
		ModuleID:    m.ModuleID,
		Title:       m.Title,
		FileName:    m.FileName,
		ContentType: m.ContentType,
		FileType:    m.FileType,
		Size:        m.Size,
		UploaderID:  m.UploaderID,
		CreatedAt:   m.CreatedAt,
	}
}

func FromModels(rows []model.NoteModel) []NoteResponse {
	out := make([]NoteResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
