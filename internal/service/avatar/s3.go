package avatar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
)

// S3Config configures an S3-compatible backend such as MinIO.
type S3Config struct {
	Bucket       string
	Region       string
	Endpoint     string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
	// PublicBaseURL overrides the URL prefix returned by PublicURL.
	PublicBaseURL string
}

type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Storage stores avatars in an S3 bucket.
type S3Storage struct {
	client  s3API
	bucket  string
	baseURL string
}

// NewS3Storage builds the client from static credentials and the endpoint.
func NewS3Storage(ctx context.Context, cfg S3Config) (*S3Storage, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey, cfg.SecretKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})
	return newS3Storage(client, cfg), nil
}

func newS3Storage(client s3API, cfg S3Config) *S3Storage {
	base := cfg.PublicBaseURL
	if base == "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Storage{client: client, bucket: cfg.Bucket, baseURL: base}
}

func (s *S3Storage) Upload(ctx context.Context, key, contentType string, body io.Reader, opts UploadOptions) error {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if cc := cacheControlHeader(opts.CacheControl); cc != "" {
		in.CacheControl = aws.String(cc)
	}
	if opts.Size >= 0 {
		in.ContentLength = aws.Int64(opts.Size)
	}
	if !opts.Overwrite {
		in.IfNoneMatch = aws.String("*")
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return classifyS3Error(err)
	}
	return nil
}

func (s *S3Storage) PublicURL(key string) string {
	return joinPublicURL(s.baseURL, key)
}

func classifyS3Error(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchBucket":
			return fmt.Errorf("%w: %w", ErrBucketNotFound, err)
		case "PreconditionFailed", "ConditionalRequestConflict":
			return fmt.Errorf("%w: %w", ErrObjectExists, err)
		}
	}
	return err
}

var _ Storage = (*S3Storage)(nil)
