// Package editor holds the per-user profile page state: it reconciles the
// auth session with the stored record and drives the save, upload, cancel
// and logout flows.
package editor

import (
	"strings"

	"github.com/janisto/huma-profile/internal/service/profile"
	"github.com/janisto/huma-profile/internal/service/session"
)

// FormState is what the profile form displays and edits.
type FormState struct {
	Name      string
	Email     string
	Phone     string
	Address   string
	City      string
	AvatarURL string
}

// Reconcile merges the session and the stored record into a FormState.
// Non-empty record values win over session metadata; email always comes from
// the session. Either argument may be nil.
func Reconcile(s *session.Session, r *profile.Record) FormState {
	if s == nil {
		return FormState{}
	}
	if r == nil {
		r = &profile.Record{}
	}
	md := s.Metadata
	return FormState{
		Name:      firstNonEmpty(r.Name, md.String(session.KeyFullName), md.String(session.KeyName)),
		Email:     s.Email,
		Phone:     firstNonEmpty(r.Phone, md.String(session.KeyPhone)),
		Address:   r.Address,
		City:      r.City,
		AvatarURL: firstNonEmpty(r.AvatarURL, md.String(session.KeyAvatarURL)),
	}
}

// trimmed returns f with surrounding whitespace removed from every field.
func (f FormState) trimmed() FormState {
	return FormState{
		Name:      strings.TrimSpace(f.Name),
		Email:     strings.TrimSpace(f.Email),
		Phone:     strings.TrimSpace(f.Phone),
		Address:   strings.TrimSpace(f.Address),
		City:      strings.TrimSpace(f.City),
		AvatarURL: strings.TrimSpace(f.AvatarURL),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// FieldPatch carries edits to the editable fields. Nil leaves a field as is.
type FieldPatch struct {
	Name    *string
	Phone   *string
	Address *string
	City    *string
}

// Empty reports whether the patch changes nothing.
func (p FieldPatch) Empty() bool {
	return p.Name == nil && p.Phone == nil && p.Address == nil && p.City == nil
}

func (p FieldPatch) apply(f *FormState) {
	if p.Name != nil {
		f.Name = *p.Name
	}
	if p.Phone != nil {
		f.Phone = *p.Phone
	}
	if p.Address != nil {
		f.Address = *p.Address
	}
	if p.City != nil {
		f.City = *p.City
	}
}
