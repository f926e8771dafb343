package avatar

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
)

var (
	// ErrBucketNotFound means the target bucket does not exist; the backend
	// is misconfigured rather than failing.
	ErrBucketNotFound = errors.New("bucket not found")
	// ErrObjectExists is returned when overwrite is off and the key is taken.
	ErrObjectExists = errors.New("object already exists")
)

// UploadOptions tune a single upload.
type UploadOptions struct {
	// CacheControl is the max-age in seconds; 0 leaves the header unset.
	CacheControl int
	Overwrite    bool
	// Size is the body length in bytes when known, -1 otherwise.
	Size int64
}

// Storage is an object store for avatar images.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, opts UploadOptions) error
	PublicURL(key string) string
}

func cacheControlHeader(seconds int) string {
	if seconds <= 0 {
		return ""
	}
	return "public, max-age=" + strconv.Itoa(seconds)
}

// joinPublicURL appends the escaped key segments to base.
func joinPublicURL(base, key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// Unconfigured stands in when no bucket is configured. Every upload fails
// with ErrBucketNotFound so users see the configuration notice.
type Unconfigured struct{}

func (Unconfigured) Upload(context.Context, string, string, io.Reader, UploadOptions) error {
	return ErrBucketNotFound
}

func (Unconfigured) PublicURL(string) string { return "" }
