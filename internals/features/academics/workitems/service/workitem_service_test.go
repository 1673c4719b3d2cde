package service

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalku_backend/internals/constants"
	"portalku_backend/internals/features/academics/workitems/dto"
	"portalku_backend/internals/features/academics/workitems/model"
	"portalku_backend/internals/features/academics/workitems/repository"
	"portalku_backend/internals/features/users/session"
	helper "portalku_backend/internals/helpers"
	"portalku_backend/internals/helpers/apperr"
	"portalku_backend/internals/helpers/storage"
)

var (
	teacher = session.Principal{UserID: uuid.New(), Role: constants.RoleTeacher, Email: "guru@portal.test"}
	alice   = session.Principal{UserID: uuid.New(), Role: constants.RoleStudent, Email: "alice@portal.test"}
	bob     = session.Principal{UserID: uuid.New(), Role: constants.RoleStudent, Email: "bob@portal.test"}
)

type fixture struct {
	svc    *Service
	repo   *repository.MemoryRepository
	store  *storage.MemoryStore
	ledger *storage.MemoryLedger
	clock  time.Time
}

func newFixture(t *testing.T, kind model.Kind) *fixture {
	t.Helper()
	f := &fixture{
		repo:   repository.NewMemoryRepository(),
		store:  storage.NewMemoryStore(),
		ledger: storage.NewMemoryLedger(),
		clock:  time.Date(2025, 1, 9, 12, 0, 0, 0, time.UTC),
	}
	tracker := storage.NewTracker(f.store, f.ledger)
	f.svc = NewService(kind, f.repo, tracker, nil)
	f.svc.Loc = time.UTC
	f.svc.MaxUploadBytes = 1 << 20
	f.svc.Now = func() time.Time { return f.clock }
	return f
}

func upload(name, body string) *storage.File {
	return &storage.File{
		Name:        name,
		ContentType: "application/pdf",
		Size:        int64(len(body)),
		Body:        strings.NewReader(body),
	}
}

func (f *fixture) createItem(t *testing.T, req dto.CreateWorkItemRequest) *model.WorkItemModel {
	t.Helper()
	it, err := f.svc.Create(context.Background(), teacher, req)
	require.NoError(t, err)
	return it
}

func lab1() dto.CreateWorkItemRequest {
	deadline := "2025-01-10T09:00:00Z"
	one := 1
	return dto.CreateWorkItemRequest{Title: "Lab 1", Deadline: &deadline, MaxSubmissions: &one, Points: 10}
}

func TestCreateRequiresTeacher(t *testing.T) {
	f := newFixture(t, model.KindHomework)
	_, err := f.svc.Create(context.Background(), alice, lab1())
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	rows, total, err := f.svc.List(context.Background(), nil, helper.Paging{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.Zero(t, total)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, teacher, dto.CreateWorkItemRequest{Title: "Essay"})
	ae, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "deadline")

	bad := "2025-13-40"
	_, err = f.svc.Create(ctx, teacher, dto.CreateWorkItemRequest{Title: "Essay", DeadlineDate: &bad})
	ae, _ = apperr.As(err)
	require.NotNil(t, ae)
	assert.Contains(t, ae.Fields, "deadline")

	date, hour, minute := "2025-02-01", 8, 30
	_, err = f.svc.Create(ctx, teacher, dto.CreateWorkItemRequest{Title: " ", DeadlineDate: &date, Points: -1})
	ae, _ = apperr.As(err)
	require.NotNil(t, ae)
	assert.Contains(t, ae.Fields, "title")
	assert.Contains(t, ae.Fields, "points")

	it, err := f.svc.Create(ctx, teacher, dto.CreateWorkItemRequest{
		Title: "Essay", DeadlineDate: &date, DeadlineHour: &hour, DeadlineMinute: &minute,
		AllowedExtensions: []string{".PDF, docx", "pdf"},
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 2, 1, 8, 30, 0, 0, time.UTC), *it.Deadline)
	assert.Equal(t, []string{"pdf", "docx"}, []string(it.AllowedExtensions))
	assert.Nil(t, it.MaxSubmissions)
}

func TestCreateChecksModule(t *testing.T) {
	f := newFixture(t, model.KindProject)
	known := uuid.New()
	f.svc.Modules = moduleSet{known: true}

	missing := uuid.New().String()
	_, err := f.svc.Create(context.Background(), teacher, dto.CreateWorkItemRequest{Title: "Capstone", ModuleID: &missing})
	ae, _ := apperr.As(err)
	require.NotNil(t, ae)
	assert.Contains(t, ae.Fields, "module_id")

	ok := known.String()
	it, err := f.svc.Create(context.Background(), teacher, dto.CreateWorkItemRequest{Title: "Capstone", ModuleID: &ok})
	require.NoError(t, err)
	assert.Equal(t, known, *it.ModuleID)
	assert.Nil(t, it.Deadline)
}

func TestHomeworkDefaultsToOneAttempt(t *testing.T) {
	f := newFixture(t, model.KindHomework)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "PR", Deadline: &d})
	require.NotNil(t, it.MaxSubmissions)
	assert.Equal(t, 1, *it.MaxSubmissions)
}

func TestSubmitRoleGateHasNoSideEffects(t *testing.T) {
	f := newFixture(t, model.KindHomework)
	it := f.createItem(t, lab1())

	_, err := f.svc.Submit(context.Background(), teacher, it.ID, SubmitInput{File: upload("a.pdf", "x")})
	assert.True(t, apperr.Is(err, apperr.KindPermission))
	assert.Empty(t, f.store.Keys(f.svc.Spec.Bucket))
	assert.Zero(t, f.ledger.Len())

	rows, err := f.svc.ListFor(context.Background(), teacher, it.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestSubmitValidatesFile(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d, AllowedExtensions: []string{"pdf"}})
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("essay.exe", "boom")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("big.pdf", strings.Repeat("x", 2<<20))})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	_, err = f.svc.Submit(ctx, alice, uuid.New(), SubmitInput{File: upload("essay.pdf", "ok")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	// file kosong dicek sebelum item; ekstensi butuh item jadi dicek sesudahnya
	_, err = f.svc.Submit(ctx, alice, uuid.New(), SubmitInput{})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	_, err = f.svc.Submit(ctx, alice, uuid.New(), SubmitInput{File: upload("essay.exe", "boom")})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	sub, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("Essay Final.PDF", "ok")})
	require.NoError(t, err)
	assert.True(t, f.store.Has(f.svc.Spec.Bucket, sub.FilePath))
	assert.True(t, strings.HasPrefix(sub.FilePath, it.ID.String()+"/"+alice.UserID.String()+"/"))
	assert.Zero(t, f.ledger.Len(), "marker cleared after commit")
}

func TestSubmitDeadlineBoundary(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d})
	ctx := context.Background()

	f.clock = *it.Deadline
	_, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("a.pdf", "on time")})
	require.NoError(t, err, "t == D is accepted")

	f.clock = it.Deadline.Add(time.Second)
	_, err = f.svc.Submit(ctx, bob, it.ID, SubmitInput{File: upload("b.pdf", "late")})
	assert.True(t, apperr.Is(err, apperr.KindDeadline))
	assert.Len(t, f.store.Keys(f.svc.Spec.Bucket), 1)

	// teacher reads and grades after the deadline
	rows, err := f.svc.ListFor(ctx, teacher, it.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	_, err = f.svc.Grade(ctx, teacher, rows[0].ID, dto.GradeRequest{Verified: ptr(true)})
	require.NoError(t, err)
}

func TestSubmitLimit(t *testing.T) {
	f := newFixture(t, model.KindHomework)
	d := "2025-01-10T09:00:00Z"
	three := 3
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Drill", Deadline: &d, MaxSubmissions: &three})
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		sub, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("a.pdf", "try")})
		require.NoError(t, err)
		assert.Equal(t, i, sub.Attempt)
	}
	_, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("a.pdf", "one more")})
	assert.True(t, apperr.Is(err, apperr.KindLimit))

	// another student has their own counter
	_, err = f.svc.Submit(ctx, bob, it.ID, SubmitInput{File: upload("b.pdf", "first")})
	require.NoError(t, err)
	assert.Len(t, f.store.Keys(f.svc.Spec.Bucket), 4)
}

func TestAssignmentsAreUnbounded(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d})
	for i := 0; i < 5; i++ {
		_, err := f.svc.Submit(context.Background(), alice, it.ID, SubmitInput{File: upload("a.pdf", "x")})
		require.NoError(t, err)
	}
}

func TestSubmitRollsBackUploadWhenInsertFails(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d})
	f.repo.FailInsert = errors.New("db down")

	_, err := f.svc.Submit(context.Background(), alice, it.ID, SubmitInput{File: upload("a.pdf", "x")})
	assert.True(t, apperr.Is(err, apperr.KindBackend))
	assert.Empty(t, f.store.Keys(f.svc.Spec.Bucket))
	assert.Zero(t, f.ledger.Len())
}

func TestSubmitStorageFailureWritesNoRow(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d})
	f.store.FailUpload = true

	_, err := f.svc.Submit(context.Background(), alice, it.ID, SubmitInput{File: upload("a.pdf", "x")})
	assert.True(t, apperr.Is(err, apperr.KindStorage))
	rows, err := f.svc.ListFor(context.Background(), teacher, it.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestProjectFields(t *testing.T) {
	f := newFixture(t, model.KindProject)
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Capstone"})
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("report.pdf", "x")})
	ae, _ := apperr.As(err)
	require.NotNil(t, ae)
	assert.Contains(t, ae.Fields, "title")

	_, err = f.svc.Submit(ctx, alice, it.ID, SubmitInput{
		File:    upload("report.pdf", "x"),
		Project: dto.ProjectFields{Title: ptr("Toko"), RepoURL: ptr("not a url")},
	})
	ae, _ = apperr.As(err)
	require.NotNil(t, ae)
	assert.Contains(t, ae.Fields, "repo_url")
	assert.Empty(t, f.store.Keys(f.svc.Spec.Bucket))

	sub, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{
		File: upload("report.pdf", "x"),
		Project: dto.ProjectFields{
			Title:   ptr("Toko Online"),
			RepoURL: ptr("https://github.com/alice/toko"),
			LiveURL: ptr("  "),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Toko Online", *sub.Title)
	assert.Equal(t, "https://github.com/alice/toko", sub.Links["repo_url"])
	assert.NotContains(t, sub.Links, "live_url")
}

func TestListForScopesStudents(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d})
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("a.pdf", "a")})
	require.NoError(t, err)
	f.clock = f.clock.Add(time.Minute)
	_, err = f.svc.Submit(ctx, bob, it.ID, SubmitInput{File: upload("b.pdf", "b")})
	require.NoError(t, err)

	all, err := f.svc.ListFor(ctx, teacher, it.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, bob.UserID, all[0].StudentID, "newest first")

	mine, err := f.svc.ListFor(ctx, alice, it.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, alice.UserID, mine[0].StudentID)
}

func TestGrade(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d})
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("a.pdf", "a")})
	require.NoError(t, err)

	_, err = f.svc.Grade(ctx, alice, sub.ID, dto.GradeRequest{Marks: marks(10)})
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	for _, bad := range []float64{-1, math.NaN(), math.Inf(1), math.Inf(-1), 10000, 9999.996} {
		_, err = f.svc.Grade(ctx, teacher, sub.ID, dto.GradeRequest{Marks: marks(bad)})
		assert.True(t, apperr.Is(err, apperr.KindValidation), "marks %v", bad)
	}
	rows, err := f.svc.ListFor(ctx, teacher, it.ID)
	require.NoError(t, err)
	assert.Nil(t, rows[0].Marks, "rejected marks leave the row untouched")
	assert.Nil(t, rows[0].GradedAt)

	got, err := f.svc.Grade(ctx, teacher, sub.ID, dto.GradeRequest{Marks: marks(9999.99)})
	require.NoError(t, err)
	assert.Equal(t, 9999.99, *got.Marks)

	_, err = f.svc.Grade(ctx, teacher, uuid.New(), dto.GradeRequest{Marks: marks(1)})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = f.svc.Grade(ctx, teacher, sub.ID, dto.GradeRequest{Marks: marks(7)})
	require.NoError(t, err)

	rows, err = f.svc.ListFor(ctx, teacher, it.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.NotNil(t, rows[0].Marks)
	assert.Equal(t, 7.0, *rows[0].Marks)
	assert.NotNil(t, rows[0].GradedAt)
	assert.Equal(t, teacher.UserID, *rows[0].GradedBy)
	assert.False(t, rows[0].Verified, "verified untouched")

	// feedback "" and marks null clear the values
	_, err = f.svc.Grade(ctx, teacher, sub.ID, dto.GradeRequest{Feedback: helper.Set("bagus")})
	require.NoError(t, err)
	got, err = f.svc.Grade(ctx, teacher, sub.ID, dto.GradeRequest{
		Feedback: helper.Set(""),
		Marks:    helper.NumberField{PatchField: helper.Clear[float64]()},
	})
	require.NoError(t, err)
	assert.Nil(t, got.Feedback)
	assert.Nil(t, got.Marks)
}

func TestResolveDownloadURL(t *testing.T) {
	f := newFixture(t, model.KindHomework)
	it := f.createItem(t, lab1())
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("a.pdf", "a")})
	require.NoError(t, err)

	link, err := f.svc.ResolveDownloadURL(ctx, alice, sub.ID)
	require.NoError(t, err)
	assert.Contains(t, link.URL, sub.FilePath)
	assert.Equal(t, f.clock.Add(30*time.Minute), link.ExpiresAt)

	_, err = f.svc.ResolveDownloadURL(ctx, teacher, sub.ID)
	require.NoError(t, err)

	_, err = f.svc.ResolveDownloadURL(ctx, bob, sub.ID)
	assert.True(t, apperr.Is(err, apperr.KindPermission))

	f.store.FailSign = true
	_, err = f.svc.ResolveDownloadURL(ctx, alice, sub.ID)
	assert.True(t, apperr.Is(err, apperr.KindStorage))
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t, model.KindAssignment)
	d := "2025-01-10T09:00:00Z"
	it := f.createItem(t, dto.CreateWorkItemRequest{Title: "Essay", Deadline: &d})
	ctx := context.Background()
	for _, who := range []session.Principal{alice, bob} {
		_, err := f.svc.Submit(ctx, who, it.ID, SubmitInput{File: upload("a.pdf", "a")})
		require.NoError(t, err)
	}

	assert.True(t, apperr.Is(f.svc.Delete(ctx, alice, it.ID), apperr.KindPermission))

	f.store.FailRemove = true // best-effort removal must not fail the delete
	require.NoError(t, f.svc.Delete(ctx, teacher, it.ID))

	rows, _, err := f.svc.List(ctx, nil, helper.Paging{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, rows)
	n, err := f.repo.CountAttempts(ctx, f.svc.Spec, it.ID, alice.UserID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.True(t, apperr.Is(f.svc.Delete(ctx, teacher, it.ID), apperr.KindNotFound))
}

func TestHasReference(t *testing.T) {
	f := newFixture(t, model.KindHomework)
	it := f.createItem(t, lab1())
	ctx := context.Background()
	sub, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("a.pdf", "a")})
	require.NoError(t, err)

	ok, err := f.svc.HasReference(ctx, storage.BucketHomework, sub.FilePath)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.svc.HasReference(ctx, storage.BucketAssignment, sub.FilePath)
	require.NoError(t, err)
	assert.False(t, ok)
}

// Lab 1: max 1, deadline 2025-01-10T09:00Z.
func TestLab1EndToEnd(t *testing.T) {
	f := newFixture(t, model.KindHomework)
	ctx := context.Background()
	it := f.createItem(t, lab1())

	first, err := f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("lab1.pdf", "jawaban")})
	require.NoError(t, err)
	assert.Equal(t, 1, first.Attempt)

	_, err = f.svc.Submit(ctx, alice, it.ID, SubmitInput{File: upload("lab1-v2.pdf", "revisi")})
	assert.True(t, apperr.Is(err, apperr.KindLimit))

	_, err = f.svc.Grade(ctx, teacher, first.ID, dto.GradeRequest{Verified: ptr(true), Marks: marks(9)})
	require.NoError(t, err)

	rows, err := f.svc.ListFor(ctx, alice, it.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.True(t, rows[0].Verified)
	assert.Equal(t, 9.0, *rows[0].Marks)
}

type moduleSet map[uuid.UUID]bool

func (m moduleSet) Exists(_ context.Context, id uuid.UUID) (bool, error) { return m[id], nil }

func ptr[T any](v T) *T { return &v }

func marks(v float64) helper.NumberField {
	return helper.NumberField{PatchField: helper.Set(v)}
}
