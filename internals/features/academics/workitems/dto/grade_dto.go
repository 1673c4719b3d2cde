package dto

import (
	helper "portalku_backend/internals/helpers"
)

// GradeRequest: semua field opsional. marks "" atau null = hapus nilai,
// feedback "" = hapus feedback.
type GradeRequest struct {
	Verified *bool                     `json:"verified"`
	Marks    helper.NumberField        `json:"marks"`
	Feedback helper.PatchField[string] `json:"feedback"`
}

func (g GradeRequest) Empty() bool {
	return g.Verified == nil && !g.Marks.Present && !g.Feedback.Present
}
