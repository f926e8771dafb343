package session

import (
	"context"
	"maps"
	"sync"
)

// Mock is an in-memory Service. It publishes to Hub like the Firebase
// implementation does.
type Mock struct {
	Hub *Hub

	mu          sync.Mutex
	sessions    map[string]*Session
	getErr      error
	updateErr   error
	signOutErr  error
	updates     []Metadata
	signOuts    int
	beforeWrite func()
}

func NewMock(hub *Hub) *Mock {
	return &Mock{Hub: hub, sessions: make(map[string]*Session)}
}

// Put stores s as the current session of s.UserID.
func (m *Mock) Put(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.UserID] = s.Clone()
}

// Delete forgets the session of userID without notifying the hub, as when
// the account is removed out of band.
func (m *Mock) Delete(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}

// SetErrors injects errors for Get, UpdateMetadata and SignOut.
func (m *Mock) SetErrors(get, update, signOut error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getErr, m.updateErr, m.signOutErr = get, update, signOut
}

// BeforeWrite installs a hook run at the start of UpdateMetadata, outside
// the mock's lock.
func (m *Mock) BeforeWrite(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beforeWrite = fn
}

func (m *Mock) Get(_ context.Context, userID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *Mock) UpdateMetadata(_ context.Context, userID string, md Metadata) error {
	m.mu.Lock()
	hook := m.beforeWrite
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	m.updates = append(m.updates, md.Clone())
	if m.updateErr != nil {
		err := m.updateErr
		m.mu.Unlock()
		return err
	}
	s, ok := m.sessions[userID]
	if !ok {
		m.mu.Unlock()
		return ErrNotFound
	}
	if s.Metadata == nil {
		s.Metadata = Metadata{}
	}
	maps.Copy(s.Metadata, md)
	published := s.Clone()
	m.mu.Unlock()

	if m.Hub != nil {
		m.Hub.Publish(userID, published)
	}
	return nil
}

func (m *Mock) SignOut(_ context.Context, userID string) error {
	m.mu.Lock()
	m.signOuts++
	err := m.signOutErr
	m.mu.Unlock()

	if m.Hub != nil {
		m.Hub.Publish(userID, nil)
	}
	return err
}

// Updates returns every metadata patch passed to UpdateMetadata.
func (m *Mock) Updates() []Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Metadata(nil), m.updates...)
}

// SignOuts reports how many times SignOut was called.
func (m *Mock) SignOuts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOuts
}

var _ Service = (*Mock)(nil)
