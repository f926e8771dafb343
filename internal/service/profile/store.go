// Package profile persists the per-user profile record.
package profile

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when the user has no stored record.
var ErrNotFound = errors.New("profile not found")

// Record is the stored profile. Empty strings mean the field is unset.
type Record struct {
	ID        string
	Name      string
	Phone     string
	Address   string
	City      string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UpsertParams replaces every editable field of the record.
type UpsertParams struct {
	Name      string
	Phone     string
	Address   string
	City      string
	AvatarURL string
}

func (p UpsertParams) normalized() UpsertParams {
	return UpsertParams{
		Name:      strings.TrimSpace(p.Name),
		Phone:     strings.TrimSpace(p.Phone),
		Address:   strings.TrimSpace(p.Address),
		City:      strings.TrimSpace(p.City),
		AvatarURL: strings.TrimSpace(p.AvatarURL),
	}
}

// Store reads and writes profile records keyed by user id. Writes are
// last-write-wins; CreatedAt is kept across upserts.
type Store interface {
	Get(ctx context.Context, userID string) (*Record, error)
	Upsert(ctx context.Context, userID string, params UpsertParams) (*Record, error)
}
