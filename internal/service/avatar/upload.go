package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	applog "github.com/janisto/huma-profile/internal/platform/logging"
)

// Upload limits and defaults.
const (
	DefaultMaxBytes     = 5 << 20
	DefaultCacheControl = 3600
	keyPrefix           = "avatars/"
)

var (
	ErrUnsupportedType = errors.New("please select an image file")
	ErrTooLarge        = errors.New("file is too large")
)

// File is an uploaded avatar candidate.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader validates avatar files and writes them to Storage under a
// per-user, time-stamped key.
type Uploader struct {
	storage      Storage
	maxBytes     int64
	cacheControl int
	now          func() time.Time
}

// UploaderOption customises an Uploader.
type UploaderOption func(*Uploader)

func WithMaxBytes(n int64) UploaderOption {
	return func(u *Uploader) { u.maxBytes = n }
}

func WithCacheControl(seconds int) UploaderOption {
	return func(u *Uploader) { u.cacheControl = seconds }
}

func WithClock(now func() time.Time) UploaderOption {
	return func(u *Uploader) { u.now = now }
}

func NewUploader(storage Storage, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		storage:      storage,
		maxBytes:     DefaultMaxBytes,
		cacheControl: DefaultCacheControl,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Validate checks the content type, then the size. It never touches storage.
func (u *Uploader) Validate(f *File) error {
	if !strings.HasPrefix(f.ContentType, "image/") {
		return ErrUnsupportedType
	}
	if f.Size > u.maxBytes {
		return fmt.Errorf("%w (max %s)", ErrTooLarge, formatSize(u.maxBytes))
	}
	return nil
}

// Key returns avatars/{userID}-{unixMillis}.{ext}, where ext is whatever
// follows the last dot of fileName (the whole name when there is none).
func (u *Uploader) Key(userID, fileName string) string {
	ext := fileName
	if i := strings.LastIndex(fileName, "."); i >= 0 {
		ext = fileName[i+1:]
	}
	return fmt.Sprintf("%s%s-%d.%s", keyPrefix, userID, u.now().UnixMilli(), ext)
}

// Upload validates f, stores it without overwriting and returns its public URL.
func (u *Uploader) Upload(ctx context.Context, userID string, f *File) (string, error) {
	if err := u.Validate(f); err != nil {
		return "", err
	}
	key := u.Key(userID, f.Name)
	err := u.storage.Upload(ctx, key, f.ContentType, f.Body, UploadOptions{
		CacheControl: u.cacheControl,
		Overwrite:    false,
		Size:         f.Size,
	})
	if err != nil {
		applog.LogAuditEvent(ctx, applog.AuditEvent{
			Action: "upload", UserID: userID, ResourceType: "avatar", ResourceID: key,
			Result: applog.AuditFailure, Details: map[string]any{"error": uploadCategory(err)},
		})
		return "", err
	}
	applog.LogAuditEvent(ctx, applog.AuditEvent{
		Action: "upload", UserID: userID, ResourceType: "avatar", ResourceID: key,
		Result: applog.AuditSuccess, Details: map[string]any{"bytes": f.Size},
	})
	applog.LogInfo(ctx, "avatar stored", zap.String("key", key), zap.String("content_type", f.ContentType))
	return u.storage.PublicURL(key), nil
}

// MaxBytes is the largest accepted file.
func (u *Uploader) MaxBytes() int64 { return u.maxBytes }

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	return fmt.Sprintf("%d bytes", n)
}

func uploadCategory(err error) string {
	switch {
	case errors.Is(err, ErrBucketNotFound):
		return "bucket_not_found"
	case errors.Is(err, ErrObjectExists):
		return "object_exists"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "storage_error"
	}
}
