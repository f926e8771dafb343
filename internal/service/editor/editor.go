package editor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	applog "github.com/janisto/huma-profile/internal/platform/logging"
	"github.com/janisto/huma-profile/internal/service/avatar"
	"github.com/janisto/huma-profile/internal/service/profile"
	"github.com/janisto/huma-profile/internal/service/session"
)

// Default notice lifetimes.
const (
	DefaultSuccessTTL = 3 * time.Second
	DefaultErrorTTL   = 5 * time.Second
)

// User-facing notice texts.
const (
	MsgProfileSaved      = "Profile updated successfully"
	MsgProfileSaveFailed = "Error updating profile"
	MsgAvatarUploaded    = "Avatar updated successfully"
	MsgStorageMissing    = "Avatar storage is not configured. Please contact the administrator."
)

// DefaultRole is shown when the session carries no role.
const DefaultRole = "user"

// Option configures an Editor.
type Option func(*Editor)

// WithNoticeTTLs sets how long success and error notices stay visible.
func WithNoticeTTLs(success, failure time.Duration) Option {
	return func(e *Editor) {
		e.successTTL = success
		e.errorTTL = failure
	}
}

// WithAfterFunc replaces the timer used to expire notices.
func WithAfterFunc(fn AfterFunc) Option {
	return func(e *Editor) { e.notices = NewNotices(fn) }
}

// Editor is one user's profile page state. All methods are safe for
// concurrent use; backend calls run without holding the lock.
type Editor struct {
	store    profile.Store
	sessions session.Service
	uploader *avatar.Uploader
	notices  *Notices

	successTTL time.Duration
	errorTTL   time.Duration

	mu       sync.Mutex
	session  *session.Session
	record   *profile.Record
	form     FormState
	baseline FormState
	editing  bool
	busy     bool
	// generation changes whenever the signed-in identity changes, so late
	// results of a running save or upload can be recognised and dropped.
	generation uint64
}

func New(store profile.Store, sessions session.Service, uploader *avatar.Uploader, opts ...Option) *Editor {
	e := &Editor{
		store:      store,
		sessions:   sessions,
		uploader:   uploader,
		successTTL: DefaultSuccessTTL,
		errorTTL:   DefaultErrorTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.notices == nil {
		e.notices = NewNotices(nil)
	}
	return e
}

// Load fetches the session of userID and its stored record and rebuilds the
// form. A missing user leaves the editor signed out. A record that cannot be
// read is logged and treated as absent so the session fallbacks still show.
func (e *Editor) Load(ctx context.Context, userID string) error {
	e.mu.Lock()
	gen := e.generation
	e.mu.Unlock()

	sess, err := e.sessions.Get(ctx, userID)
	if errors.Is(err, session.ErrNotFound) {
		e.HandleSessionChange(nil)
		return nil
	}
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	rec := e.fetchRecord(ctx, userID)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		return ErrSessionChanged
	}
	if e.session == nil || e.session.UserID != sess.UserID {
		e.generation++
		e.editing = false
	}
	e.session = sess
	e.record = rec
	e.baseline = Reconcile(sess, rec)
	if !e.editing {
		e.form = e.baseline
	}
	return nil
}

func (e *Editor) fetchRecord(ctx context.Context, userID string) *profile.Record {
	rec, err := e.store.Get(ctx, userID)
	switch {
	case err == nil:
		return rec
	case errors.Is(err, profile.ErrNotFound):
		return nil
	default:
		applog.LogError(ctx, "profile fetch failed", err, zap.String("uid", userID))
		return nil
	}
}

// BeginEdit enters edit mode. It does nothing when signed out.
func (e *Editor) BeginEdit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.editing = true
	}
}

// Edit applies patch to the form. Email is not editable.
func (e *Editor) Edit(patch FieldPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.editing {
		return ErrNotEditing
	}
	patch.apply(&e.form)
	return nil
}

// Cancel drops unsaved edits and leaves edit mode.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.form = e.baseline
	e.editing = false
	e.notices.Clear()
}

// Save persists the form: record upsert, then metadata sync, then a refetch
// of the record. A metadata failure does not undo the upsert.
func (e *Editor) Save(ctx context.Context) error {
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return nil
	}
	if e.busy {
		e.mu.Unlock()
		return ErrBusy
	}
	e.busy = true
	gen := e.generation
	uid := e.session.UserID
	form := e.form.trimmed()
	e.mu.Unlock()

	saved, err := e.store.Upsert(ctx, uid, profile.UpsertParams{
		Name:      form.Name,
		Phone:     form.Phone,
		Address:   form.Address,
		City:      form.City,
		AvatarURL: form.AvatarURL,
	})
	if err != nil {
		applog.LogError(ctx, "profile upsert failed", err, zap.String("uid", uid))
		return e.finishSave(gen, nil, &PersistenceError{Op: OpUpsertProfile, Err: err})
	}
	if e.stale(gen) {
		return e.finishSave(gen, nil, nil)
	}

	var saveErr error
	err = e.sessions.UpdateMetadata(ctx, uid, session.Metadata{
		session.KeyFullName:  form.Name,
		session.KeyPhone:     form.Phone,
		session.KeyAvatarURL: form.AvatarURL,
	})
	if err != nil {
		applog.LogWarn(ctx, "metadata update failed after profile upsert",
			zap.String("uid", uid), zap.Error(err))
		saveErr = &PersistenceError{Op: OpUpdateMetadata, Err: err}
	}
	if e.stale(gen) {
		return e.finishSave(gen, nil, nil)
	}

	rec, err := e.store.Get(ctx, uid)
	if err != nil {
		applog.LogWarn(ctx, "profile refetch failed, using upsert result",
			zap.String("uid", uid), zap.Error(err))
		rec = saved
	}
	return e.finishSave(gen, rec, saveErr)
}

func (e *Editor) stale(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.generation != gen
}

func (e *Editor) finishSave(gen uint64, rec *profile.Record, saveErr error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	if e.generation != gen {
		return ErrSessionChanged
	}
	if rec != nil {
		e.record = rec
		e.baseline = Reconcile(e.session, rec)
		e.form = e.baseline
	}
	if saveErr != nil {
		e.notices.Set(NoticeError, MsgProfileSaveFailed, e.errorTTL)
		return saveErr
	}
	e.editing = false
	e.notices.Set(NoticeSuccess, MsgProfileSaved, e.successTTL)
	return nil
}

// UploadAvatar validates and stores f, then puts its public URL into the
// form. The URL is persisted by the next Save. A nil file or a signed-out
// editor is a no-op.
func (e *Editor) UploadAvatar(ctx context.Context, f *avatar.File) (string, error) {
	if f == nil {
		return "", nil
	}
	e.mu.Lock()
	if e.session == nil {
		e.mu.Unlock()
		return "", nil
	}
	if e.busy {
		e.mu.Unlock()
		return "", ErrBusy
	}
	if err := e.uploader.Validate(f); err != nil {
		e.notices.Set(NoticeError, errorNotice(err), e.errorTTL)
		e.mu.Unlock()
		return "", &ValidationError{Err: err}
	}
	e.busy = true
	gen := e.generation
	uid := e.session.UserID
	e.mu.Unlock()

	url, err := e.uploader.Upload(ctx, uid, f)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.busy = false
	if e.generation != gen {
		return "", ErrSessionChanged
	}
	if err != nil {
		if errors.Is(err, avatar.ErrBucketNotFound) {
			applog.LogError(ctx, "avatar bucket missing", err)
			e.notices.Set(NoticeConfiguration, MsgStorageMissing, e.errorTTL)
			return "", &ConfigurationError{Err: err}
		}
		applog.LogError(ctx, "avatar upload failed", err, zap.String("uid", uid))
		e.notices.Set(NoticeError, errorNotice(err), e.errorTTL)
		return "", &PersistenceError{Op: OpUploadAvatar, Err: err}
	}
	e.form.AvatarURL = url
	e.editing = true
	e.notices.Set(NoticeSuccess, MsgAvatarUploaded, e.successTTL)
	return url, nil
}

func errorNotice(err error) string {
	msg := err.Error()
	r, size := utf8.DecodeRuneInString(msg)
	return "Error: " + string(unicode.ToUpper(r)) + msg[size:]
}

// Logout signs the user out and clears all state, even when the sign-out
// call fails.
func (e *Editor) Logout(ctx context.Context) {
	e.mu.Lock()
	sess := e.session
	e.mu.Unlock()

	if sess != nil {
		if err := e.sessions.SignOut(ctx, sess.UserID); err != nil {
			applog.LogError(ctx, "sign out failed", err, zap.String("uid", sess.UserID))
		}
	}
	e.HandleSessionChange(nil)
}

// HandleSessionChange applies a session change pushed by the auth service.
// nil signs out. The same user refreshes the baseline, and the form too
// unless the user is editing. Another user starts over without a record.
func (e *Editor) HandleSessionChange(s *session.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case s == nil:
		e.generation++
		e.session = nil
		e.record = nil
		e.form = FormState{}
		e.baseline = FormState{}
		e.editing = false
		e.notices.Clear()
	case e.session != nil && e.session.UserID == s.UserID:
		e.session = s
		e.baseline = Reconcile(s, e.record)
		if !e.editing {
			e.form = e.baseline
		}
	default:
		e.generation++
		e.session = s
		e.record = nil
		e.editing = false
		e.baseline = Reconcile(s, nil)
		e.form = e.baseline
	}
}

// AvatarView tells a client what to render for the avatar.
type AvatarView struct {
	// Src is the uploaded image URL or a generated placeholder; empty when
	// there is nothing to show but the generic icon.
	Src string
	// Fallback replaces Src when the image fails to load.
	Fallback  string
	Generated bool
}

// View is a snapshot of the page.
type View struct {
	Authenticated bool
	UserID        string
	Editing       bool
	Busy          bool
	Form          FormState
	Avatar        AvatarView
	Role          string
	MemberSince   time.Time
	Notice        *Notice
}

// Busy reports whether a save or upload is running.
func (e *Editor) Busy() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.busy
}

// Idle reports whether the editor has neither work running nor unsaved edits.
func (e *Editor) Idle() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.busy && !e.editing
}

func (e *Editor) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		Authenticated: e.session != nil,
		Editing:       e.editing,
		Busy:          e.busy,
		Form:          e.form,
		Avatar:        avatarView(e.form),
	}
	if e.session != nil {
		v.UserID = e.session.UserID
		v.Role = firstNonEmpty(e.session.Metadata.String(session.KeyRole), DefaultRole)
		v.MemberSince = e.session.CreatedAt
	}
	if n, ok := e.notices.Current(); ok {
		v.Notice = &n
	}
	return v
}

func avatarView(f FormState) AvatarView {
	placeholder := avatar.Generate(f.Name).DataURI()
	if f.AvatarURL != "" {
		return AvatarView{Src: f.AvatarURL, Fallback: placeholder}
	}
	return AvatarView{Src: placeholder, Generated: placeholder != ""}
}
