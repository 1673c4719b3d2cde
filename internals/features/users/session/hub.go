package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	SignedIn    EventKind = "signed_in"
	SignedOut   EventKind = "signed_out"
	RoleChanged EventKind = "role_changed"
)

type Event struct {
	Kind      EventKind  `json:"kind"`
	UserID    uuid.UUID  `json:"user_id"`
	Principal *Principal `json:"principal,omitempty"`
	At        time.Time  `json:"at"`
}

// Hub fans events out to subscribers. Handlers run synchronously on Publish,
// so they must not block; channel subscribers drop events when their buffer is full.
type Hub struct {
	mu   sync.RWMutex
	next int
	subs map[int]func(Event)
}

func NewHub() *Hub {
	return &Hub{subs: map[int]func(Event){}}
}

// Subscribe registers fn and returns its unsubscribe function.
func (h *Hub) Subscribe(fn func(Event)) func() {
	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
		})
	}
}

func (h *Hub) Publish(e Event) {
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	h.mu.RLock()
	fns := make([]func(Event), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Watch returns a channel of the events for one user. The channel is closed
// by the returned cancel function.
func (h *Hub) Watch(userID uuid.UUID, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 8
	}
	ch := make(chan Event, buffer)
	var mu sync.Mutex
	closed := false

	unsub := h.Subscribe(func(e Event) {
		if e.UserID != userID {
			return
		}
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		select {
		case ch <- e:
		default:
		}
	})
	return ch, func() {
		unsub()
		mu.Lock()
		if !closed {
			closed = true
			close(ch)
		}
		mu.Unlock()
	}
}

func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
