package dbtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestComposeDeadline(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)

	got, err := ComposeDeadline("2025-01-10", 16, 0, jakarta)
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)))

	_, err = ComposeDeadline("10/01/2025", 9, 0, time.UTC)
	assert.ErrorIs(t, err, ErrDateFormat)
	_, err = ComposeDeadline("2025-01-10", 24, 0, time.UTC)
	assert.ErrorIs(t, err, ErrHourRange)
	_, err = ComposeDeadline("2025-01-10", 9, 60, time.UTC)
	assert.ErrorIs(t, err, ErrMinuteRange)
	_, err = ComposeDeadline("  ", 9, 0, time.UTC)
	assert.ErrorIs(t, err, ErrDeadlineMissing)
}

func TestDeadlineInputResolve(t *testing.T) {
	tests := []struct {
		name    string
		in      DeadlineInput
		want    *time.Time
		wantErr bool
	}{
		{name: "empty", in: DeadlineInput{}},
		{
			name: "rfc3339",
			in:   DeadlineInput{At: ptr("2025-01-10T09:00:00Z")},
			want: ptr(time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)),
		},
		{
			name: "date hour minute",
			in:   DeadlineInput{Date: ptr("2025-01-10"), Hour: ptr(9), Minute: ptr(30)},
			want: ptr(time.Date(2025, 1, 10, 9, 30, 0, 0, time.UTC)),
		},
		{
			name: "date only defaults to end of day",
			in:   DeadlineInput{Date: ptr("2025-01-10")},
			want: ptr(time.Date(2025, 1, 10, 23, 59, 0, 0, time.UTC)),
		},
		{name: "bad rfc3339", in: DeadlineInput{At: ptr("tomorrow")}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Resolve(time.UTC)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %s", got)
		})
	}
}

func TestPassed(t *testing.T) {
	d := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	assert.False(t, Passed(nil, d))
	assert.False(t, Passed(&d, d.Add(-time.Second)))
	assert.False(t, Passed(&d, d))
	assert.True(t, Passed(&d, d.Add(time.Nanosecond)))
}
