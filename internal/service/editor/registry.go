package editor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	applog "github.com/janisto/huma-profile/internal/platform/logging"
	"github.com/janisto/huma-profile/internal/service/avatar"
	"github.com/janisto/huma-profile/internal/service/profile"
	"github.com/janisto/huma-profile/internal/service/session"
)

// Default registry bounds.
const (
	DefaultCapacity = 10000
	DefaultIdleTTL  = 30 * time.Minute
)

// Limits bound how many editors a Registry keeps and for how long an
// untouched editor survives. Zero values select the defaults.
type Limits struct {
	Capacity int
	IdleTTL  time.Duration
}

type registryEntry struct {
	editor      *Editor
	unsubscribe func()
	parkedAt    time.Time
}

// Registry keeps one Editor per signed-in user, subscribed to session
// changes. Editors idle for longer than IdleTTL, or pushed out by Capacity,
// are dropped. An editor that is busy or in edit mode is parked instead and
// returns on its next Open; a parked editor that stays idle for another
// IdleTTL is dropped with its unsaved edits.
type Registry struct {
	store    profile.Store
	sessions session.Service
	uploader *avatar.Uploader
	hub      *session.Hub
	opts     []Option
	idleTTL  time.Duration
	now      func() time.Time

	// mu serialises Open and remove. The cache calls evict with its own lock
	// held, so evict only touches parkMu.
	mu      sync.Mutex
	editors *expirable.LRU[string, *registryEntry]

	parkMu sync.Mutex
	parked map[string]*registryEntry

	closed atomic.Bool
}

func NewRegistry(store profile.Store, sessions session.Service, uploader *avatar.Uploader, hub *session.Hub, limits Limits, opts ...Option) *Registry {
	if limits.Capacity <= 0 {
		limits.Capacity = DefaultCapacity
	}
	if limits.IdleTTL <= 0 {
		limits.IdleTTL = DefaultIdleTTL
	}
	r := &Registry{
		store:    store,
		sessions: sessions,
		uploader: uploader,
		hub:      hub,
		opts:     opts,
		idleTTL:  limits.IdleTTL,
		now:      time.Now,
		parked:   make(map[string]*registryEntry),
	}
	r.editors = expirable.NewLRU(limits.Capacity, r.evict, limits.IdleTTL)
	return r
}

// Open returns the Editor of userID. A new editor is loaded from the
// backends; a known one is reloaded unless a save or upload is running, so
// changes made elsewhere show up. An editor whose user no longer exists is
// returned signed out and not kept.
func (r *Registry) Open(ctx context.Context, userID string) (*Editor, error) {
	r.mu.Lock()
	r.sweepParked()
	entry := r.lookup(userID)
	r.mu.Unlock()

	if entry != nil {
		if err := r.reload(ctx, userID, entry.editor); err != nil {
			return nil, err
		}
		return entry.editor, nil
	}

	ed := New(r.store, r.sessions, r.uploader, r.opts...)
	if err := ed.Load(ctx, userID); err != nil {
		return nil, err
	}
	if !ed.View().Authenticated {
		return ed, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing := r.lookup(userID); existing != nil {
		return existing.editor, nil
	}
	entry = &registryEntry{editor: ed}
	if r.hub != nil {
		entry.unsubscribe = r.hub.Subscribe(userID, func(s *session.Session) {
			ed.HandleSessionChange(s)
			if s == nil {
				r.remove(userID, ed)
			}
		})
	}
	r.editors.Add(userID, entry)
	applog.LogInfo(ctx, "profile editor opened", zap.String("uid", userID))
	return ed, nil
}

// lookup finds userID in the cache or among the parked editors and marks it
// as just used. Callers hold r.mu.
func (r *Registry) lookup(userID string) *registryEntry {
	if entry, ok := r.editors.Get(userID); ok {
		r.editors.Add(userID, entry)
		return entry
	}
	// Flush an expired entry the janitor has not reached yet; evict parks
	// it if it is still in use.
	r.editors.Remove(userID)

	r.parkMu.Lock()
	entry, ok := r.parked[userID]
	delete(r.parked, userID)
	r.parkMu.Unlock()
	if !ok {
		return nil
	}
	r.editors.Add(userID, entry)
	return entry
}

func (r *Registry) reload(ctx context.Context, userID string, ed *Editor) error {
	if ed.Busy() {
		return nil
	}
	err := ed.Load(ctx, userID)
	if err != nil && !errors.Is(err, ErrSessionChanged) {
		return err
	}
	if !ed.View().Authenticated {
		r.remove(userID, ed)
	}
	return nil
}

// evict runs when the cache drops an entry. It holds the cache lock.
func (r *Registry) evict(userID string, entry *registryEntry) {
	if !r.closed.Load() && !entry.editor.Idle() && entry.editor.View().Authenticated {
		entry.parkedAt = r.now()
		r.parkMu.Lock()
		r.parked[userID] = entry
		r.parkMu.Unlock()
		return
	}
	if entry.unsubscribe != nil {
		entry.unsubscribe()
	}
}

// sweepParked drops parked editors that finished their work or were left
// untouched for another idle period. A running save or upload is never cut.
func (r *Registry) sweepParked() {
	now := r.now()
	var dropped []*registryEntry
	r.parkMu.Lock()
	for uid, entry := range r.parked {
		if entry.editor.Busy() {
			continue
		}
		if entry.editor.Idle() || now.Sub(entry.parkedAt) >= r.idleTTL {
			delete(r.parked, uid)
			dropped = append(dropped, entry)
		}
	}
	r.parkMu.Unlock()
	for _, entry := range dropped {
		if entry.unsubscribe != nil {
			entry.unsubscribe()
		}
	}
}

func (r *Registry) remove(userID string, ed *Editor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if entry, ok := r.editors.Peek(userID); ok && entry.editor == ed {
		r.editors.Remove(userID)
		return
	}
	r.parkMu.Lock()
	entry, ok := r.parked[userID]
	if ok && entry.editor == ed {
		delete(r.parked, userID)
	} else {
		ok = false
	}
	r.parkMu.Unlock()
	if ok && entry.unsubscribe != nil {
		entry.unsubscribe()
	}
}

// Len reports how many editors are held, parked ones included.
func (r *Registry) Len() int {
	r.parkMu.Lock()
	parked := len(r.parked)
	r.parkMu.Unlock()
	return r.editors.Len() + parked
}

// Close unsubscribes and drops every editor.
func (r *Registry) Close() {
	r.closed.Store(true)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.editors.Purge()

	r.parkMu.Lock()
	parked := r.parked
	r.parked = make(map[string]*registryEntry)
	r.parkMu.Unlock()
	for _, entry := range parked {
		if entry.unsubscribe != nil {
			entry.unsubscribe()
		}
	}
}
