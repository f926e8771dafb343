package editor

import (
	"errors"
)

var (
	// ErrBusy means a save or upload is already running for this user.
	ErrBusy = errors.New("another save or upload is in progress")
	// ErrSessionChanged means the user signed out or switched while the
	// operation ran; its result was discarded.
	ErrSessionChanged = errors.New("session changed during the operation")
	// ErrNotEditing is returned by Edit outside edit mode.
	ErrNotEditing = errors.New("profile is not in edit mode")
)

// Persistence operations reported by PersistenceError.
const (
	OpUpsertProfile  = "upsert_profile"
	OpUpdateMetadata = "update_metadata"
	OpUploadAvatar   = "upload_avatar"
)

// ValidationError rejects user input before any write.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

// ConfigurationError means a backend is not set up, e.g. a missing bucket.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string { return "configuration: " + e.Err.Error() }
func (e *ConfigurationError) Unwrap() error { return e.Err }

// PersistenceError wraps a failed write to one of the backends.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
