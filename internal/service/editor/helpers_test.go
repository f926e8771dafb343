package editor

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/janisto/huma-profile/internal/service/avatar"
	"github.com/janisto/huma-profile/internal/service/profile"
	"github.com/janisto/huma-profile/internal/service/session"
)

// manualClock fires AfterFunc callbacks only when advanced.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs due callbacks in order.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	sort.Slice(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.fn()
	}
}

// fireAll runs every scheduled callback, stopped or not.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := append([]*manualTimer(nil), c.timers...)
	c.mu.Unlock()
	for _, t := range timers {
		t.fn()
	}
}

const testUID = "user-1"

var (
	memberSince = time.Date(2023, 4, 5, 6, 7, 8, 0, time.UTC)
	uploadTime  = time.UnixMilli(1700000000123)
)

func testSession() *session.Session {
	return &session.Session{
		UserID:    testUID,
		Email:     "ada@example.com",
		CreatedAt: memberSince,
		Metadata: session.Metadata{
			session.KeyFullName: "Ada Meta",
			session.KeyPhone:    "+1 555 0100",
		},
	}
}

type fixture struct {
	store    *profile.MockStore
	hub      *session.Hub
	sessions *session.Mock
	storage  *avatar.MockStorage
	uploader *avatar.Uploader
	clock    *manualClock
	editor   *Editor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   profile.NewMockStore(),
		hub:     session.NewHub(),
		storage: avatar.NewMockStorage(),
		clock:   &manualClock{},
	}
	f.sessions = session.NewMock(f.hub)
	f.sessions.Put(testSession())
	f.uploader = avatar.NewUploader(f.storage, avatar.WithClock(func() time.Time { return uploadTime }))
	f.editor = New(f.store, f.sessions, f.uploader, f.options()...)
	return f
}

func (f *fixture) options() []Option {
	return []Option{WithAfterFunc(f.clock.AfterFunc), WithNoticeTTLs(DefaultSuccessTTL, DefaultErrorTTL)}
}

func (f *fixture) load(t *testing.T) *Editor {
	t.Helper()
	require.NoError(t, f.editor.Load(context.Background(), testUID))
	return f.editor
}

func ptr(s string) *string { return &s }

// blockingStore parks Upsert until release is closed.
type blockingStore struct {
	profile.Store
	entered chan struct{}
	release chan struct{}
}

func newBlockingStore(inner profile.Store) *blockingStore {
	return &blockingStore{Store: inner, entered: make(chan struct{}), release: make(chan struct{})}
}

func (b *blockingStore) Upsert(ctx context.Context, uid string, p profile.UpsertParams) (*profile.Record, error) {
	close(b.entered)
	<-b.release
	return b.Store.Upsert(ctx, uid, p)
}
