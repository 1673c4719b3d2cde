package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"portalku_backend/internals/features/users/auth/model"
)

type MemoryRepository struct {
	mu        sync.Mutex
	users     map[uuid.UUID]model.UserModel
	blacklist map[string]time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:     map[uuid.UUID]model.UserModel{},
		blacklist: map[string]time.Time{},
	}
}

func (r *MemoryRepository) CreateUser(ctx context.Context, u *model.UserModel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, x := range r.users {
		if x.Email == u.Email || (u.GoogleID != nil && x.GoogleID != nil && *x.GoogleID == *u.GoogleID) {
			return ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	u.CreatedAt, u.UpdatedAt = now, now
	r.users[u.ID] = *u
	return nil
}

func (r *MemoryRepository) find(match func(model.UserModel) bool) (*model.UserModel, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if match(u) {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) FindUserByID(ctx context.Context, id uuid.UUID) (*model.UserModel, error) {
	return r.find(func(u model.UserModel) bool { return u.ID == id })
}

func (r *MemoryRepository) FindUserByEmail(ctx context.Context, email string) (*model.UserModel, error) {
	return r.find(func(u model.UserModel) bool { return u.Email == email })
}

func (r *MemoryRepository) FindUserByGoogleID(ctx context.Context, googleID string) (*model.UserModel, error) {
	return r.find(func(u model.UserModel) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *MemoryRepository) LinkGoogleID(ctx context.Context, id uuid.UUID, googleID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return ErrNotFound
	}
	if u.GoogleID == nil {
		u.GoogleID = &googleID
		r.users[id] = u
	}
	return nil
}

// SetActive is a test hook.
func (r *MemoryRepository) SetActive(id uuid.UUID, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.IsActive = active
		r.users[id] = u
	}
}

func (r *MemoryRepository) BlacklistToken(ctx context.Context, token string, until time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.blacklist[token]; !ok {
		r.blacklist[token] = until
	}
	return nil
}

func (r *MemoryRepository) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.blacklist[token]
	return ok, nil
}

func (r *MemoryRepository) CleanupExpiredBlacklist(ctx context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for tok, until := range r.blacklist {
		if !until.After(now) {
			delete(r.blacklist, tok)
			n++
		}
	}
	return n, nil
}
