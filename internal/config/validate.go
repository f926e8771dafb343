package config

import (
	"errors"
	"fmt"
)

// Validate checks the loaded configuration. Load calls it automatically.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.RequestBodyLimit <= 0 {
		errs = append(errs, fmt.Errorf("server.request_body_limit must be > 0 (got %d)", c.Server.RequestBodyLimit))
	}
	if c.Avatar.MaxBytes <= 0 {
		errs = append(errs, fmt.Errorf("avatar.max_bytes must be > 0 (got %d)", c.Avatar.MaxBytes))
	}
	if c.Server.RequestBodyLimit > 0 && c.Avatar.MaxBytes > c.Server.RequestBodyLimit {
		errs = append(errs, fmt.Errorf("avatar.max_bytes (%d) exceeds server.request_body_limit (%d)",
			c.Avatar.MaxBytes, c.Server.RequestBodyLimit))
	}
	if c.Avatar.CacheControl < 0 {
		errs = append(errs, fmt.Errorf("avatar.cache_control must be >= 0 (got %d)", c.Avatar.CacheControl))
	}
	if c.Notice.SuccessTTL <= 0 || c.Notice.ErrorTTL <= 0 {
		errs = append(errs, fmt.Errorf("notice ttls must be > 0 (got %s, %s)", c.Notice.SuccessTTL, c.Notice.ErrorTTL))
	}
	if c.Editor.Capacity <= 0 {
		errs = append(errs, fmt.Errorf("editor.capacity must be > 0 (got %d)", c.Editor.Capacity))
	}
	if c.Editor.IdleTTL <= 0 {
		errs = append(errs, fmt.Errorf("editor.idle_ttl must be > 0 (got %s)", c.Editor.IdleTTL))
	}

	switch c.Avatar.Storage {
	case StorageFirebase:
	case StorageS3:
		if err := c.S3.validate(c.Avatar.Bucket); err != nil {
			errs = append(errs, fmt.Errorf("s3: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("avatar.storage must be %q or %q (got %q)",
			StorageFirebase, StorageS3, c.Avatar.Storage))
	}

	return errors.Join(errs...)
}

func (s *S3Config) validate(bucket string) error {
	if bucket == "" {
		return errors.New("avatar.bucket is required")
	}
	if s.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if s.AccessKey == "" || s.SecretKey == "" {
		return errors.New("access_key and secret_key are required")
	}
	return nil
}
