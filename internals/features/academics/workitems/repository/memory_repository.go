package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"portalku_backend/internals/features/academics/workitems/model"
)

// MemoryRepository mirrors GormRepository semantics with mutex-guarded maps.
type MemoryRepository struct {
	mu    sync.Mutex
	items map[string]map[uuid.UUID]model.WorkItemModel
	subs  map[string]map[uuid.UUID]model.SubmissionModel

	// FailInsert makes InsertSubmission fail, for rollback tests.
	FailInsert error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		items: map[string]map[uuid.UUID]model.WorkItemModel{},
		subs:  map[string]map[uuid.UUID]model.SubmissionModel{},
	}
}

func (r *MemoryRepository) itemTable(spec model.KindSpec) map[uuid.UUID]model.WorkItemModel {
	t, ok := r.items[spec.ItemsTable]
	if !ok {
		t = map[uuid.UUID]model.WorkItemModel{}
		r.items[spec.ItemsTable] = t
	}
	return t
}

func (r *MemoryRepository) subTable(spec model.KindSpec) map[uuid.UUID]model.SubmissionModel {
	t, ok := r.subs[spec.SubmissionsTable]
	if !ok {
		t = map[uuid.UUID]model.SubmissionModel{}
		r.subs[spec.SubmissionsTable] = t
	}
	return t
}

func (r *MemoryRepository) ListItems(ctx context.Context, spec model.KindSpec, f ItemFilter) ([]model.WorkItemModel, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.WorkItemModel, 0)
	for _, it := range r.itemTable(spec) {
		if f.ModuleID != nil && (it.ModuleID == nil || *it.ModuleID != *f.ModuleID) {
			continue
		}
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	total := int64(len(out))
	if f.Offset > len(out) {
		f.Offset = len(out)
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (r *MemoryRepository) FindItem(ctx context.Context, spec model.KindSpec, id uuid.UUID) (*model.WorkItemModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.itemTable(spec)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &it, nil
}

func (r *MemoryRepository) CreateItem(ctx context.Context, spec model.KindSpec, item *model.WorkItemModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.itemTable(spec)[item.ID] = *item
	return nil
}

func (r *MemoryRepository) DeleteItemCascade(ctx context.Context, spec model.KindSpec, id uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.itemTable(spec)
	if _, ok := items[id]; !ok {
		return nil, ErrNotFound
	}
	var paths []string
	subs := r.subTable(spec)
	for sid, s := range subs {
		if s.WorkItemID == id {
			paths = append(paths, s.FilePath)
			delete(subs, sid)
		}
	}
	delete(items, id)
	sort.Strings(paths)
	return paths, nil
}

func (r *MemoryRepository) countLocked(spec model.KindSpec, itemID, studentID uuid.UUID) (n, last int) {
	for _, s := range r.subTable(spec) {
		if s.WorkItemID == itemID && s.StudentID == studentID {
			n++
			if s.Attempt > last {
				last = s.Attempt
			}
		}
	}
	return n, last
}

func (r *MemoryRepository) CountAttempts(ctx context.Context, spec model.KindSpec, itemID, studentID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, _ := r.countLocked(spec, itemID, studentID)
	return n, nil
}

func (r *MemoryRepository) InsertSubmission(ctx context.Context, spec model.KindSpec, sub *model.SubmissionModel, max int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailInsert != nil {
		return r.FailInsert
	}
	_, last := r.countLocked(spec, sub.WorkItemID, sub.StudentID)
	if max > 0 && last >= max {
		return ErrLimitReached
	}
	sub.Attempt = last + 1
	r.subTable(spec)[sub.ID] = *sub
	return nil
}

func (r *MemoryRepository) ListSubmissions(ctx context.Context, spec model.KindSpec, itemID uuid.UUID, studentID *uuid.UUID) ([]model.SubmissionModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.SubmissionModel, 0)
	for _, s := range r.subTable(spec) {
		if s.WorkItemID != itemID || (studentID != nil && s.StudentID != *studentID) {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return out[i].Attempt > out[j].Attempt
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (r *MemoryRepository) FindSubmission(ctx context.Context, spec model.KindSpec, id uuid.UUID) (*model.SubmissionModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subTable(spec)[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) UpdateGrade(ctx context.Context, spec model.KindSpec, id uuid.UUID, g model.GradeUpdate) (*model.SubmissionModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	subs := r.subTable(spec)
	s, ok := subs[id]
	if !ok {
		return nil, ErrNotFound
	}
	if g.SetVerified {
		s.Verified = g.Verified
	}
	if g.SetMarks {
		s.Marks = g.Marks
	}
	if g.SetFeedback {
		s.Feedback = g.Feedback
	}
	by, at := g.GradedBy, g.GradedAt
	s.GradedBy, s.GradedAt = &by, &at
	subs[id] = s
	return &s, nil
}

func (r *MemoryRepository) HasObject(ctx context.Context, spec model.KindSpec, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subTable(spec) {
		if s.FilePath == path {
			return true, nil
		}
	}
	return false, nil
}
