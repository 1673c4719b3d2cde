package model

import (
	"time"

	"portalku_backend/internals/helpers/storage"
)

// Kind selects one of the three work-item families. They share one implementation.
type Kind string

const (
	KindHomework   Kind = "homework"
	KindAssignment Kind = "assignment"
	KindProject    Kind = "project"
)

type KindSpec struct {
	Kind             Kind
	RoutePrefix      string
	ItemsTable       string
	SubmissionsTable string
	Bucket           string
	URLTTL           time.Duration
	DeadlineRequired bool
	// Limited kinds cap attempts per student at max_submissions.
	Limited    bool
	DefaultMax int
	// ProjectFields enables title/description/links on submissions.
	ProjectFields bool
}

var kinds = []KindSpec{
	{
		Kind:             KindHomework,
		RoutePrefix:      "homeworks",
		ItemsTable:       "homeworks",
		SubmissionsTable: "homework_submissions",
		Bucket:           storage.BucketHomework,
		URLTTL:           30 * time.Minute,
		DeadlineRequired: true,
		Limited:          true,
		DefaultMax:       1,
	},
	{
		Kind:             KindAssignment,
		RoutePrefix:      "assignments",
		ItemsTable:       "assignments",
		SubmissionsTable: "assignment_submissions",
		Bucket:           storage.BucketAssignment,
		URLTTL:           10 * time.Minute,
		DeadlineRequired: true,
	},
	{
		Kind:             KindProject,
		RoutePrefix:      "projects",
		ItemsTable:       "projects",
		SubmissionsTable: "project_submissions",
		Bucket:           storage.BucketProject,
		URLTTL:           10 * time.Minute,
		ProjectFields:    true,
	},
}

func Spec(k Kind) (KindSpec, bool) {
	for _, s := range kinds {
		if s.Kind == k {
			return s, true
		}
	}
	return KindSpec{}, false
}

// MustSpec panics on an unknown kind; for wiring code only.
func MustSpec(k Kind) KindSpec {
	s, ok := Spec(k)
	if !ok {
		panic("unknown work item kind " + string(k))
	}
	return s
}

func AllKinds() []KindSpec {
	out := make([]KindSpec, len(kinds))
	copy(out, kinds)
	return out
}

// EffectiveMax is the attempt cap for an item; 0 means unbounded.
func (s KindSpec) EffectiveMax(item *WorkItemModel) int {
	if !s.Limited {
		return 0
	}
	if item != nil && item.MaxSubmissions != nil && *item.MaxSubmissions > 0 {
		return *item.MaxSubmissions
	}
	return s.DefaultMax
}
