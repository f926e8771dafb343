package avatar

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// Object is what MockStorage keeps per key.
type Object struct {
	ContentType  string
	CacheControl string
	Data         []byte
}

// MockStorage is an in-memory Storage.
type MockStorage struct {
	BaseURL string

	mu      sync.Mutex
	objects map[string]Object
	err     error
	calls   int
}

func NewMockStorage() *MockStorage {
	return &MockStorage{BaseURL: "https://storage.test/avatars", objects: make(map[string]Object)}
}

// SetError makes every later Upload fail with err.
func (m *MockStorage) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockStorage) Upload(_ context.Context, key, contentType string, body io.Reader, opts UploadOptions) error {
	m.mu.Lock()
	m.calls++
	err := m.err
	_, exists := m.objects[key]
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if exists && !opts.Overwrite {
		return ErrObjectExists
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{
		ContentType:  contentType,
		CacheControl: cacheControlHeader(opts.CacheControl),
		Data:         buf.Bytes(),
	}
	return nil
}

func (m *MockStorage) PublicURL(key string) string {
	return joinPublicURL(m.BaseURL, key)
}

// Object returns the stored object for key.
func (m *MockStorage) Object(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.objects[key]
	return o, ok
}

// Calls reports how many uploads were attempted.
func (m *MockStorage) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ Storage = (*MockStorage)(nil)
