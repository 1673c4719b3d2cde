package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"portalku_backend/internals/features/academics/modules/model"
	"portalku_backend/internals/helpers/markdown"
)

type CreateModuleRequest struct {
	Title       string  `json:"title" form:"title" validate:"required,max=200"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=20000"`
}

func (r *CreateModuleRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Description != nil {
		d := strings.TrimSpace(*r.Description)
		if d == "" {
			r.Description = nil
		} else {
			r.Description = &d
		}
	}
}

type ModuleResponse struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description,omitempty"`
	DescriptionHTML *string   `json:"description_html,omitempty"`
	CreatedBy       uuid.UUID `json:"created_by"`
	CreatedAt       time.Time `json:"created_at"`
}

func FromModel(m model.ModuleModel) ModuleResponse {
	return ModuleResponse{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		DescriptionHTML: markdown.RenderPtr(m.Description),
		CreatedBy:       m.CreatedBy,
		CreatedAt:       m.CreatedAt,
	}
}

func FromModels(rows []model.ModuleModel) []ModuleResponse {
	out := make([]ModuleResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromModel(r))
	}
	return out
}
