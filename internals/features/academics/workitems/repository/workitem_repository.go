package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"portalku_backend/internals/features/academics/workitems/model"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrLimitReached = errors.New("submission limit reached")
	ErrConflict     = errors.New("concurrent submission conflict")
)

type ItemFilter struct {
	ModuleID *uuid.UUID
	Offset   int
	Limit    int
}

type Repository interface {
	ListItems(ctx context.Context, spec model.KindSpec, f ItemFilter) ([]model.WorkItemModel, int64, error)
	FindItem(ctx context.Context, spec model.KindSpec, id uuid.UUID) (*model.WorkItemModel, error)
	CreateItem(ctx context.Context, spec model.KindSpec, item *model.WorkItemModel) error
	// DeleteItemCascade removes the submissions, then the item, and returns
	// the file paths the submissions pointed at.
	DeleteItemCascade(ctx context.Context, spec model.KindSpec, id uuid.UUID) ([]string, error)

	CountAttempts(ctx context.Context, spec model.KindSpec, itemID, studentID uuid.UUID) (int, error)
	// InsertSubmission assigns the next attempt number. With max > 0 it fails
	// with ErrLimitReached once max attempts exist.
	InsertSubmission(ctx context.Context, spec model.KindSpec, sub *model.SubmissionModel, max int) error
	ListSubmissions(ctx context.Context, spec model.KindSpec, itemID uuid.UUID, studentID *uuid.UUID) ([]model.SubmissionModel, error)
	FindSubmission(ctx context.Context, spec model.KindSpec, id uuid.UUID) (*model.SubmissionModel, error)
	UpdateGrade(ctx context.Context, spec model.KindSpec, id uuid.UUID, g model.GradeUpdate) (*model.SubmissionModel, error)

	HasObject(ctx context.Context, spec model.KindSpec, path string) (bool, error)
}
