package profile

import (
	"context"
	"sync"
	"time"
)

// MockStore is an in-memory Store. GetErr and UpsertErr, when set, are
// returned instead of touching the map.
type MockStore struct {
	mu      sync.RWMutex
	records map[string]Record
	now     func() time.Time

	GetErr    error
	UpsertErr error

	gets    int
	upserts int
}

func NewMockStore() *MockStore {
	return &MockStore{
		records: make(map[string]Record),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (m *MockStore) Get(_ context.Context, userID string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	r, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

func (m *MockStore) Upsert(_ context.Context, userID string, params UpsertParams) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts++
	if m.UpsertErr != nil {
		return nil, m.UpsertErr
	}
	params = params.normalized()
	now := m.now()
	r := Record{
		ID:        userID,
		Name:      params.Name,
		Phone:     params.Phone,
		Address:   params.Address,
		City:      params.City,
		AvatarURL: params.AvatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing, ok := m.records[userID]; ok {
		r.CreatedAt = existing.CreatedAt
	}
	m.records[userID] = r
	return &r, nil
}

// Put seeds a record directly.
func (m *MockStore) Put(r Record) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[r.ID] = r
}

// SetErrors swaps the injected errors under the lock.
func (m *MockStore) SetErrors(getErr, upsertErr error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetErr = getErr
	m.UpsertErr = upsertErr
}

// Calls reports how many Get and Upsert calls were made.
func (m *MockStore) Calls() (gets, upserts int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets, m.upserts
}

var _ Store = (*MockStore)(nil)
