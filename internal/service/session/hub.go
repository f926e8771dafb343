package session

import (
	"sync"
)

// Listener receives the new session for a user, or nil after sign-out.
type Listener func(*Session)

// Hub delivers session changes to listeners subscribed per user id.
type Hub struct {
	mu     sync.Mutex
	nextID uint64
	subs   map[string]map[uint64]Listener
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uint64]Listener)}
}

// Subscribe registers fn for userID. The returned func removes it and is safe
// to call more than once.
func (h *Hub) Subscribe(userID string, fn Listener) (unsubscribe func()) {
	h.mu.Lock()
	h.nextID++
	id := h.nextID
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[uint64]Listener)
	}
	h.subs[userID][id] = fn
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
		})
	}
}

// Publish calls every listener of userID synchronously. Listeners run
// outside the hub lock and may unsubscribe themselves.
func (h *Hub) Publish(userID string, s *Session) {
	h.mu.Lock()
	listeners := make([]Listener, 0, len(h.subs[userID]))
	for _, fn := range h.subs[userID] {
		listeners = append(listeners, fn)
	}
	h.mu.Unlock()

	for _, fn := range listeners {
		fn(s.Clone())
	}
}

// Subscribers returns the number of listeners for userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}
