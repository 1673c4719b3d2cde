package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"portalku_backend/internals/features/users/profiles/model"
)

// MemoryRepository is the in-process Repository used by tests.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]model.ProfileModel
	Err  error
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: map[uuid.UUID]model.ProfileModel{}}
}

func (r *MemoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProfileModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	p, ok := r.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (r *MemoryRepository) InsertIfAbsent(ctx context.Context, p *model.ProfileModel) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return false, r.Err
	}
	if _, ok := r.rows[p.ID]; ok {
		return false, nil
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	r.rows[p.ID] = *p
	return true, nil
}

func (r *MemoryRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return ErrNotFound
	}
	p.Role = role
	p.UpdatedAt = time.Now().UTC()
	r.rows[id] = p
	return nil
}

func (r *MemoryRepository) UpdatedSince(ctx context.Context, since time.Time) ([]model.ProfileModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	out := make([]model.ProfileModel, 0)
	for _, p := range r.rows {
		if p.UpdatedAt.After(since) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	return out, nil
}

func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
