package apperr

import (
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", Validation("title required"), KindValidation},
		{"wrapped permission", errors.Wrap(PermissionDenied(""), "workitems.Create"), KindPermission},
		{"foreign", errors.New("connection refused"), KindBackend},
		{"storage", Storage(errors.New("timeout"), "upload failed"), KindStorage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, StatusOf(KindValidation))
	assert.Equal(t, http.StatusForbidden, StatusOf(KindPermission))
	assert.Equal(t, http.StatusConflict, StatusOf(KindDeadline))
	assert.Equal(t, http.StatusConflict, StatusOf(KindLimit))
	assert.Equal(t, http.StatusBadGateway, StatusOf(KindStorage))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(KindBackend))
	assert.Equal(t, http.StatusNotFound, StatusOf(KindNotFound))
}

func TestErrorMessage(t *testing.T) {
	d := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "deadline passed at 2025-01-10T09:00:00Z, submission closed", DeadlineExpired(d).Error())
	assert.Equal(t, "submission limit reached (max 1)", LimitExceeded(1).Error())
	assert.Equal(t, "relation \"homeworks\" does not exist", Backend(errors.New("relation \"homeworks\" does not exist")).Error())
	assert.Equal(t, "upload failed: timeout", Storage(errors.New("timeout"), "upload failed").Error())
}
