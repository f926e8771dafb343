// Package config loads the service configuration from an optional YAML file,
// an optional .env file and the environment.
package config

import (
	"time"
)

// Storage backends for avatar uploads.
const (
	StorageFirebase = "firebase"
	StorageS3       = "s3"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Firebase FirebaseConfig `yaml:"firebase"`
	Avatar   AvatarConfig   `yaml:"avatar"`
	S3       S3Config       `yaml:"s3"`
	Notice   NoticeConfig   `yaml:"notice"`
	Editor   EditorConfig   `yaml:"editor"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port             string        `yaml:"port"               env:"PORT"                    env-default:"8080"`
	RequestBodyLimit int64         `yaml:"request_body_limit" env:"REQUEST_BODY_LIMIT"      env-default:"8388608"`
	ShutdownTimeout  time.Duration `yaml:"shutdown_timeout"   env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// FirebaseConfig selects the Firebase project.
type FirebaseConfig struct {
	ProjectID     string `yaml:"project_id"     env:"FIREBASE_PROJECT_ID"`
	Credentials   string `yaml:"credentials"    env:"GOOGLE_APPLICATION_CREDENTIALS"`
	StorageBucket string `yaml:"storage_bucket" env:"FIREBASE_STORAGE_BUCKET"`
}

// AvatarConfig controls avatar uploads.
type AvatarConfig struct {
	Storage       string `yaml:"storage"         env:"AVATAR_STORAGE"         env-default:"firebase"`
	Bucket        string `yaml:"bucket"          env:"AVATAR_BUCKET"`
	MaxBytes      int64  `yaml:"max_bytes"       env:"AVATAR_MAX_BYTES"       env-default:"5242880"`
	CacheControl  int    `yaml:"cache_control"   env:"AVATAR_CACHE_CONTROL"   env-default:"3600"`
	PublicBaseURL string `yaml:"public_base_url" env:"AVATAR_PUBLIC_BASE_URL"`
}

// S3Config configures the S3-compatible avatar backend.
type S3Config struct {
	Region       string `yaml:"region"         env:"S3_REGION"         env-default:"us-east-1"`
	Endpoint     string `yaml:"endpoint"       env:"S3_ENDPOINT"`
	AccessKey    string `yaml:"access_key"     env:"S3_ACCESS_KEY"`
	SecretKey    string `yaml:"secret_key"     env:"S3_SECRET_KEY"`
	UsePathStyle bool   `yaml:"use_path_style" env:"S3_USE_PATH_STYLE" env-default:"true"`
}

// NoticeConfig holds how long notices stay visible.
type NoticeConfig struct {
	SuccessTTL time.Duration `yaml:"success_ttl" env:"NOTICE_SUCCESS_TTL" env-default:"3s"`
	ErrorTTL   time.Duration `yaml:"error_ttl"   env:"NOTICE_ERROR_TTL"   env-default:"5s"`
}

// EditorConfig bounds the in-memory profile editors.
type EditorConfig struct {
	Capacity int           `yaml:"capacity" env:"EDITOR_CAPACITY" env-default:"10000"`
	IdleTTL  time.Duration `yaml:"idle_ttl" env:"EDITOR_IDLE_TTL" env-default:"30m"`
}

// CORSConfig lists allowed browser origins. Empty allows any origin.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:","`
}

// AvatarBucket is the bucket uploads go to. For the Firebase backend it
// falls back to the project's default Storage bucket.
func (c *Config) AvatarBucket() string {
	if c.Avatar.Bucket != "" {
		return c.Avatar.Bucket
	}
	if c.Avatar.Storage == StorageFirebase {
		return c.Firebase.StorageBucket
	}
	return ""
}
