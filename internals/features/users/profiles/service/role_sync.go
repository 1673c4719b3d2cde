package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"portalku_backend/internals/features/users/profiles/repository"
	"portalku_backend/internals/features/users/session"
)

// RoleSync polls profiles.updated_at and republishes role_changed on the local hub,
// so a role set by another process (portaladmin) evicts this server's cached principals.
type RoleSync struct {
	Repo repository.Repository
	Hub  *session.Hub
	// Overlap re-reads a window behind the newest row seen: now() in postgres is the
	// transaction start, so a slow commit can land with an older updated_at.
	Overlap time.Duration

	mu    sync.Mutex
	since time.Time
	seen  map[uuid.UUID]time.Time
}

// NewRoleSync starts watching from lookback ago; cached principals older than that are expired anyway.
func NewRoleSync(repo repository.Repository, hub *session.Hub, lookback time.Duration) *RoleSync {
	return &RoleSync{
		Repo:    repo,
		Hub:     hub,
		Overlap: time.Minute,
		since:   time.Now().UTC().Add(-lookback),
		seen:    map[uuid.UUID]time.Time{},
	}
}

// RunOnce publishes one event per changed profile and returns how many were published.
func (r *RoleSync) RunOnce(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.Repo.UpdatedSince(ctx, r.since.Add(-r.Overlap))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, p := range rows {
		if last, ok := r.seen[p.ID]; ok && !p.UpdatedAt.After(last) {
			continue
		}
		r.seen[p.ID] = p.UpdatedAt
		if p.UpdatedAt.After(r.since) {
			r.since = p.UpdatedAt
		}
		r.Hub.Publish(session.Event{Kind: session.RoleChanged, UserID: p.ID})
		n++
	}

	floor := r.since.Add(-r.Overlap)
	for id, at := range r.seen {
		if at.Before(floor) {
			delete(r.seen, id)
		}
	}
	return n, nil
}

func (r *RoleSync) Start(schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		n, err := r.RunOnce(ctx)
		switch {
		case err != nil:
			log.Printf("[ROLE-SYNC] error: %v", err)
		case n > 0:
			log.Printf("[ROLE-SYNC] %d profil berubah, cache principal dibuang", n)
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	log.Printf("[ROLE-SYNC] aktif schedule=%q", schedule)
	return c, nil
}
