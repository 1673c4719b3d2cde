package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	p  Principal
	at time.Time
}

// Store caches principals by user id. It follows the hub: signed_in caches,
// signed_out and role_changed evict. Entries older than ttl are ignored.
type Store struct {
	mu    sync.RWMutex
	items map[uuid.UUID]entry
	ttl   time.Duration
	Now   func() time.Time
	unsub func()
}

func NewStore(h *Hub, ttl time.Duration) *Store {
	s := &Store{items: map[uuid.UUID]entry{}, ttl: ttl, Now: time.Now}
	if h != nil {
		s.unsub = h.Subscribe(s.onEvent)
	}
	return s
}

func (s *Store) onEvent(e Event) {
	switch e.Kind {
	case SignedIn:
		if e.Principal != nil {
			s.Put(*e.Principal)
		}
	case SignedOut, RoleChanged:
		s.Drop(e.UserID)
	}
}

func (s *Store) Get(id uuid.UUID) (Principal, bool) {
	s.mu.RLock()
	e, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return Principal{}, false
	}
	if s.ttl > 0 && s.Now().Sub(e.at) > s.ttl {
		s.mu.Lock()
		// hanya hapus entry yang tadi dibaca; Put baru di sela RUnlock tetap disimpan
		if cur, ok := s.items[id]; ok && cur.at.Equal(e.at) {
			delete(s.items, id)
		}
		s.mu.Unlock()
		return Principal{}, false
	}
	return e.p, true
}

func (s *Store) Put(p Principal) {
	s.mu.Lock()
	s.items[p.UserID] = entry{p: p, at: s.Now()}
	s.mu.Unlock()
}

func (s *Store) Drop(id uuid.UUID) {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
}

// Close detaches the store from its hub.
func (s *Store) Close() {
	if s.unsub != nil {
		s.unsub()
	}
}
