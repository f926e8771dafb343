package auth

import (
	"context"
	"sync"
)

// MockVerifier accepts any token and answers with Principal or Err. Tokens
// maps specific token strings to principals when several callers are needed.
type MockVerifier struct {
	Principal *Principal
	Err       error
	Tokens    map[string]*Principal

	mu    sync.Mutex
	calls int
}

func (m *MockVerifier) Verify(_ context.Context, token string) (*Principal, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if p, ok := m.Tokens[token]; ok {
		return p, nil
	}
	if m.Principal == nil {
		return nil, ErrInvalidToken
	}
	return m.Principal, nil
}

// Calls reports how many tokens were verified.
func (m *MockVerifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// TestPrincipal returns a standard signed-in caller.
func TestPrincipal() *Principal {
	return &Principal{
		UID:            "test-user-123",
		Email:          "test@example.com",
		EmailVerified:  true,
		SignInProvider: "password",
	}
}

var _ Verifier = (*MockVerifier)(nil)
