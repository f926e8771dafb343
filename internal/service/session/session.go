// Package session reads and updates the signed-in user's auth session and
// fans out session changes to interested parties.
package session

import (
	"context"
	"errors"
	"maps"
	"time"
)

// ErrNotFound is returned when the auth provider has no such user.
var ErrNotFound = errors.New("user not found")

// Metadata keys the profile page understands.
const (
	KeyFullName  = "full_name"
	KeyName      = "name"
	KeyPhone     = "phone"
	KeyAvatarURL = "avatar_url"
	KeyRole      = "role"
)

// Metadata is the free-form user metadata attached to a session.
type Metadata map[string]any

// String returns the value for key when it is a string, else "".
func (m Metadata) String(key string) string {
	s, _ := m[key].(string)
	return s
}

// Clone returns a shallow copy; nil stays nil.
func (m Metadata) Clone() Metadata {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}

// Session is the authenticated user as seen by the profile page.
type Session struct {
	UserID    string
	Email     string
	CreatedAt time.Time
	Metadata  Metadata
}

// Clone returns a deep enough copy for callers to keep.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Metadata = s.Metadata.Clone()
	return &c
}

// Service is the auth collaborator.
type Service interface {
	// Get returns the current session for userID.
	Get(ctx context.Context, userID string) (*Session, error)
	// UpdateMetadata merges md into the user's metadata.
	UpdateMetadata(ctx context.Context, userID string, md Metadata) error
	// SignOut ends every session of userID.
	SignOut(ctx context.Context, userID string) error
}
