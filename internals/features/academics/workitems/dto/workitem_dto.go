package dto

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"portalku_backend/internals/features/academics/workitems/model"
	"portalku_backend/internals/helpers/dbtime"
	"portalku_backend/internals/helpers/markdown"
)

/* =========================
   REQUEST
========================= */

type CreateWorkItemRequest struct {
	ModuleID          *string  `json:"module_id" form:"module_id" validate:"omitempty,uuid"`
	Title             string   `json:"title" form:"title" validate:"required,max=200"`
	Description       *string  `json:"description" form:"description" validate:"omitempty,max=20000"`
	Points            int      `json:"points" form:"points" validate:"min=0"`
	MaxSubmissions    *int     `json:"max_submissions" form:"max_submissions" validate:"omitempty,min=1"`
	AllowedExtensions []string `json:"allowed_extensions" form:"allowed_extensions" validate:"omitempty,dive,min=1,max=16"`

	Deadline       *string `json:"deadline" form:"deadline"`
	DeadlineDate   *string `json:"deadline_date" form:"deadline_date"`
	DeadlineHour   *int    `json:"deadline_hour" form:"deadline_hour"`
	DeadlineMinute *int    `json:"deadline_minute" form:"deadline_minute"`
}

func (r *CreateWorkItemRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.ModuleID = trimOrNil(r.ModuleID)
	r.Description = trimOrNil(r.Description)

	exts := make([]string, 0, len(r.AllowedExtensions))
	seen := map[string]bool{}
	for _, e := range r.AllowedExtensions {
		// form input biasanya "pdf,docx"
		for _, part := range strings.Split(e, ",") {
			part = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(part), "."))
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			exts = append(exts, part)
		}
	}
	r.AllowedExtensions = exts
}

func (r CreateWorkItemRequest) DeadlineInput() dbtime.DeadlineInput {
	return dbtime.DeadlineInput{
		At:     r.Deadline,
		Date:   r.DeadlineDate,
		Hour:   r.DeadlineHour,
		Minute: r.DeadlineMinute,
	}
}

// Links accepted on project submissions.
var ProjectLinkKeys = []string{"repo_url", "live_url", "demo_url"}

type ProjectFields struct {
	Title       *string `json:"title" form:"title" validate:"required,max=200"`
	Description *string `json:"description" form:"description" validate:"omitempty,max=20000"`
	RepoURL     *string `json:"repo_url" form:"repo_url" validate:"omitempty,http_url"`
	LiveURL     *string `json:"live_url" form:"live_url" validate:"omitempty,http_url"`
	DemoURL     *string `json:"demo_url" form:"demo_url" validate:"omitempty,http_url"`
}

func (p *ProjectFields) Normalize() {
	p.Title = trimOrNil(p.Title)
	p.Description = trimOrNil(p.Description)
	p.RepoURL = trimOrNil(p.RepoURL)
	p.LiveURL = trimOrNil(p.LiveURL)
	p.DemoURL = trimOrNil(p.DemoURL)
}

// LinkMap returns only the links that were sent.
func (p ProjectFields) LinkMap() map[string]string {
	out := map[string]string{}
	for i, v := range []*string{p.RepoURL, p.LiveURL, p.DemoURL} {
		if v != nil {
			out[ProjectLinkKeys[i]] = *v
		}
	}
	return out
}

/* =========================
   RESPONSE
========================= */

type WorkItemResponse struct {
	ID                uuid.UUID  `json:"id"`
	Kind              model.Kind `json:"kind"`
	ModuleID          *uuid.UUID `json:"module_id,omitempty"`
	Title             string     `json:"title"`
	Description       *string    `json:"description,omitempty"`
	DescriptionHTML   *string    `json:"description_html,omitempty"`
	Deadline          *time.Time `json:"deadline,omitempty"`
	IsClosed          bool       `json:"is_closed"`
	Points            int        `json:"points"`
	MaxSubmissions    *int       `json:"max_submissions,omitempty"`
	AllowedExtensions []string   `json:"allowed_extensions,omitempty"`
	CreatedBy         uuid.UUID  `json:"created_by"`
	CreatedAt         time.Time  `json:"created_at"`
}

func FromItem(spec model.KindSpec, m model.WorkItemModel, now time.Time) WorkItemResponse {
	var maxSub *int
	if spec.Limited {
		n := spec.EffectiveMax(&m)
		maxSub = &n
	}
	return WorkItemResponse{
		ID:                m.ID,
		Kind:              spec.Kind,
		ModuleID:          m.ModuleID,
		Title:             m.Title,
		Description:       m.Description,
		DescriptionHTML:   markdown.RenderPtr(m.Description),
		Deadline:          m.Deadline,
		IsClosed:          dbtime.Passed(m.Deadline, now),
		Points:            m.Points,
		MaxSubmissions:    maxSub,
		AllowedExtensions: []string(m.AllowedExtensions),
		CreatedBy:         m.CreatedBy,
		CreatedAt:         m.CreatedAt,
	}
}

func FromItems(spec model.KindSpec, rows []model.WorkItemModel, now time.Time) []WorkItemResponse {
	out := make([]WorkItemResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromItem(spec, r, now))
	}
	return out
}

type SubmissionResponse struct {
	ID          uuid.UUID      `json:"id"`
	WorkItemID  uuid.UUID      `json:"work_item_id"`
	StudentID   uuid.UUID      `json:"student_id"`
	Attempt     int            `json:"attempt"`
	FileName    string         `json:"file_name"`
	ContentType string         `json:"content_type,omitempty"`
	Size        int64          `json:"size"`
	SubmittedAt time.Time      `json:"submitted_at"`
	Verified    bool           `json:"verified"`
	Marks       *float64       `json:"marks"`
	Feedback    *string        `json:"feedback"`
	GradedBy    *uuid.UUID     `json:"graded_by,omitempty"`
	GradedAt    *time.Time     `json:"graded_at,omitempty"`
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Links       map[string]any `json:"links,omitempty"`
}

func FromSubmission(s model.SubmissionModel) SubmissionResponse {
	return SubmissionResponse{
		ID:          s.ID,
		WorkItemID:  s.WorkItemID,
		StudentID:   s.StudentID,
		Attempt:     s.Attempt,
		FileName:    s.FileName,
		ContentType: s.ContentType,
		Size:        s.Size,
		SubmittedAt: s.SubmittedAt,
		Verified:    s.Verified,
		Marks:       s.Marks,
		Feedback:    s.Feedback,
		GradedBy:    s.GradedBy,
		GradedAt:    s.GradedAt,
		Title:       s.Title,
		Description: s.Description,
		Links:       map[string]any(s.Links),
	}
}

func FromSubmissions(rows []model.SubmissionModel) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, FromSubmission(r))
	}
	return out
}

func trimOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
