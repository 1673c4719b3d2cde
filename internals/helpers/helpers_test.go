package helper

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalku_backend/internals/helpers/apperr"
)

func TestNumberField(t *testing.T) {
	type body struct {
		Marks NumberField `json:"marks"`
	}
	tests := []struct {
		name     string
		payload  string
		present  bool
		wantNil  bool
		want     float64
		wantFail bool
	}{
		{name: "absent", payload: `{}`},
		{name: "number", payload: `{"marks": 7}`, present: true, want: 7},
		{name: "numeric string", payload: `{"marks": "9.5"}`, present: true, want: 9.5},
		{name: "empty string clears", payload: `{"marks": ""}`, present: true, wantNil: true},
		{name: "null clears", payload: `{"marks": null}`, present: true, wantNil: true},
		{name: "garbage", payload: `{"marks": "abc"}`, wantFail: true},
		{name: "NaN string", payload: `{"marks": "NaN"}`, wantFail: true},
		{name: "Inf string", payload: `{"marks": "Inf"}`, wantFail: true},
		{name: "Infinity string", payload: `{"marks": "-Infinity"}`, wantFail: true},
		{name: "overflowing literal", payload: `{"marks": 1e400}`, wantFail: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b body
			err := json.Unmarshal([]byte(tt.payload), &b)
			if tt.wantFail {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.present, b.Marks.Present)
			if !tt.present {
				return
			}
			if tt.wantNil {
				assert.True(t, b.Marks.IsNull())
				return
			}
			require.NotNil(t, b.Marks.Value)
			assert.Equal(t, tt.want, *b.Marks.Value)
		})
	}
}

func TestPatchField(t *testing.T) {
	var b struct {
		Verified PatchField[bool]   `json:"verified"`
		Feedback PatchField[string] `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"verified": true, "feedback": null}`), &b))
	assert.True(t, b.Verified.ShouldUpdate())
	assert.True(t, *b.Verified.Value)
	assert.True(t, b.Feedback.IsNull())
}

func TestValidateStruct(t *testing.T) {
	type req struct {
		Title  string `json:"title" validate:"required"`
		Points int    `json:"points" validate:"gte=0"`
	}
	err := ValidateStruct(req{Points: -1})
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Equal(t, []string{"is required"}, ae.Fields["title"])
	assert.Equal(t, []string{"must be greater than or equal to 0"}, ae.Fields["points"])

	assert.NoError(t, ValidateStruct(req{Title: "Lab 1"}))
}
