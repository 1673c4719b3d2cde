package dbtime

import (
	"strings"
	"time"

	"github.com/pkg/errors"
)

var (
	ErrDeadlineMissing = errors.New("deadline is required")
	ErrDateFormat      = errors.New("deadline_date must be YYYY-MM-DD")
	ErrHourRange       = errors.New("deadline_hour must be 0..23")
	ErrMinuteRange     = errors.New("deadline_minute must be 0..59")
)

// ComposeDeadline menyusun satu instant dari (tanggal, jam, menit) di zona loc.
// Tidak mem-parse string gabungan supaya tidak bergantung format locale.
func ComposeDeadline(date string, hour, minute int, loc *time.Location) (time.Time, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return time.Time{}, ErrDeadlineMissing
	}
	if loc == nil {
		loc = time.UTC
	}
	d, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		return time.Time{}, ErrDateFormat
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, ErrHourRange
	}
	if minute < 0 || minute > 59 {
		return time.Time{}, ErrMinuteRange
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc), nil
}

// DeadlineInput menampung dua cara kirim deadline: RFC3339 langsung, atau tanggal + jam + menit.
type DeadlineInput struct {
	At     *string `json:"deadline" form:"deadline"`
	Date   *string `json:"deadline_date" form:"deadline_date"`
	Hour   *int    `json:"deadline_hour" form:"deadline_hour"`
	Minute *int    `json:"deadline_minute" form:"deadline_minute"`
}

func (in DeadlineInput) Empty() bool {
	return (in.At == nil || strings.TrimSpace(*in.At) == "") &&
		(in.Date == nil || strings.TrimSpace(*in.Date) == "")
}

// Resolve mengembalikan nil bila tidak ada deadline sama sekali.
func (in DeadlineInput) Resolve(loc *time.Location) (*time.Time, error) {
	if in.Empty() {
		return nil, nil
	}
	if in.At != nil && strings.TrimSpace(*in.At) != "" {
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(*in.At))
		if err != nil {
			return nil, errors.New("deadline must be RFC3339")
		}
		t = t.UTC()
		return &t, nil
	}
	hour, minute := 23, 59
	if in.Hour != nil {
		hour = *in.Hour
	}
	if in.Minute != nil {
		minute = *in.Minute
	}
	t, err := ComposeDeadline(*in.Date, hour, minute, loc)
	if err != nil {
		return nil, err
	}
	t = t.UTC()
	return &t, nil
}

// Passed melaporkan apakah now sudah lewat deadline. now == deadline belum lewat.
func Passed(deadline *time.Time, now time.Time) bool {
	return deadline != nil && now.After(*deadline)
}
