package storage

import (
	"context"
	"io"
	"log"
	"time"

	"github.com/google/uuid"

	"portalku_backend/internals/helpers/apperr"
)

// Tracker uploads objects behind a pending marker. The caller writes its row and
// then either commits (marker cleared) or aborts (object removed).
type Tracker struct {
	Store  ObjectStore
	Ledger Ledger // optional
	Now    func() time.Time
}

type Staged struct {
	Bucket string
	Key    string

	t      *Tracker
	marker uuid.UUID
	done   bool
}

func NewTracker(store ObjectStore, ledger Ledger) *Tracker {
	return &Tracker{Store: store, Ledger: ledger, Now: time.Now}
}

func (t *Tracker) now() time.Time {
	if t.Now != nil {
		return t.Now()
	}
	return time.Now()
}

// Stage writes the marker, then uploads. Upload failures come back as StorageError
// and leave nothing behind.
func (t *Tracker) Stage(ctx context.Context, bucket, key string, r io.Reader, size int64, contentType string) (*Staged, error) {
	key = NormalizeKey(key)
	s := &Staged{Bucket: bucket, Key: key, t: t}

	if t.Ledger != nil {
		id, err := t.Ledger.Begin(ctx, bucket, key, t.now())
		if err != nil {
			return nil, apperr.Backend(err)
		}
		s.marker = id
	}

	if err := t.Store.Upload(ctx, bucket, key, r, size, contentType); err != nil {
		t.forget(ctx, s.marker)
		return nil, asStorage(err, "upload failed")
	}
	return s, nil
}

// Commit clears the marker. A failure here is harmless: the reaper sees the
// object is referenced and drops the marker itself.
func (s *Staged) Commit(ctx context.Context) {
	if s == nil || s.done {
		return
	}
	s.done = true
	s.t.forget(ctx, s.marker)
}

// Abort removes the object. If removal fails the marker stays for the reaper.
func (s *Staged) Abort(ctx context.Context) {
	if s == nil || s.done {
		return
	}
	s.done = true
	if err := s.t.Store.Remove(ctx, s.Bucket, s.Key); err != nil {
		log.Printf("[STORAGE] abort: remove %s/%s gagal, ditinggal untuk reaper: %v", s.Bucket, s.Key, err)
		return
	}
	s.t.forget(ctx, s.marker)
}

func (t *Tracker) forget(ctx context.Context, id uuid.UUID) {
	if t.Ledger == nil || id == uuid.Nil {
		return
	}
	if err := t.Ledger.Forget(ctx, id); err != nil {
		log.Printf("[STORAGE] forget marker %s gagal: %v", id, err)
	}
}

// RemoveQuietly is the best-effort removal used after rows are already gone.
func RemoveQuietly(ctx context.Context, store ObjectStore, bucket string, keys ...string) {
	keys = normalizeKeys(keys)
	if len(keys) == 0 || store == nil {
		return
	}
	if err := store.Remove(ctx, bucket, keys...); err != nil {
		log.Printf("[STORAGE] best-effort remove %d object(s) from %s gagal: %v", len(keys), bucket, err)
	}
}
