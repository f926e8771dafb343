package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// DefaultGCSBaseURL serves public objects of Google Cloud Storage buckets.
const DefaultGCSBaseURL = "https://storage.googleapis.com"

// GCSStorage stores avatars in a Cloud Storage (or Firebase Storage) bucket.
type GCSStorage struct {
	bucket  *storage.BucketHandle
	baseURL string
}

// NewGCSStorage wraps bucket. An empty baseURL serves objects from
// DefaultGCSBaseURL/<bucket>.
func NewGCSStorage(bucket *storage.BucketHandle, baseURL string) *GCSStorage {
	if baseURL == "" {
		baseURL = DefaultGCSBaseURL + "/" + bucket.BucketName()
	}
	return &GCSStorage{bucket: bucket, baseURL: baseURL}
}

func (s *GCSStorage) Upload(ctx context.Context, key, contentType string, body io.Reader, opts UploadOptions) error {
	obj := s.bucket.Object(key)
	if !opts.Overwrite {
		obj = obj.If(storage.Conditions{DoesNotExist: true})
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = cacheControlHeader(opts.CacheControl)
	if _, err := io.Copy(w, body); err != nil {
		cancel()
		_ = w.Close()
		return classifyGCSError(err)
	}
	if err := w.Close(); err != nil {
		return classifyGCSError(err)
	}
	return nil
}

func (s *GCSStorage) PublicURL(key string) string {
	return joinPublicURL(s.baseURL, key)
}

func classifyGCSError(err error) error {
	if errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
		case http.StatusPreconditionFailed:
			return fmt.Errorf("%w: %w", ErrObjectExists, err)
		}
	}
	return err
}

var _ Storage = (*GCSStorage)(nil)
