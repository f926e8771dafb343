package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no config sources set.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{
		"CONFIG_PATH", "ENV_FILE", "PORT", "AVATAR_STORAGE", "AVATAR_BUCKET", "AVATAR_MAX_BYTES",
		"REQUEST_BODY_LIMIT", "FIREBASE_PROJECT_ID", "FIREBASE_STORAGE_BUCKET",
		"S3_ENDPOINT", "S3_ACCESS_KEY", "S3_SECRET_KEY", "NOTICE_SUCCESS_TTL", "NOTICE_ERROR_TTL",
		"CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, int64(8<<20), cfg.Server.RequestBodyLimit)
	assert.Equal(t, StorageFirebase, cfg.Avatar.Storage)
	assert.Equal(t, int64(5<<20), cfg.Avatar.MaxBytes)
	assert.Equal(t, 3600, cfg.Avatar.CacheControl)
	assert.Equal(t, 3*time.Second, cfg.Notice.SuccessTTL)
	assert.Equal(t, 5*time.Second, cfg.Notice.ErrorTTL)
	assert.Equal(t, 10000, cfg.Editor.Capacity)
	assert.Equal(t, 30*time.Minute, cfg.Editor.IdleTTL)
	assert.Empty(t, cfg.CORS.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("PORT", "9090")
	t.Setenv("AVATAR_MAX_BYTES", "1048576")
	t.Setenv("NOTICE_SUCCESS_TTL", "1500ms")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, int64(1<<20), cfg.Avatar.MaxBytes)
	assert.Equal(t, 1500*time.Millisecond, cfg.Notice.SuccessTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadYAMLWithEnvPriority(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "profile.yaml", `
server:
  port: "7070"
avatar:
  storage: s3
  bucket: avatars
s3:
  endpoint: http://localhost:9000
  access_key: minio
  secret_key: minio123
`)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("S3_SECRET_KEY", "from-env")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, StorageS3, cfg.Avatar.Storage)
	assert.Equal(t, "avatars", cfg.AvatarBucket())
	assert.Equal(t, "from-env", cfg.S3.SecretKey)
	assert.True(t, cfg.S3.UsePathStyle)
}

func TestLoadExplicitMissingFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CONFIG_PATH", filepath.Join(dir, "missing.yaml"))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "FIREBASE_PROJECT_ID=demo-profile\nPORT=6060\n")
	t.Setenv("PORT", "5050")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "demo-profile", cfg.Firebase.ProjectID)
	assert.Equal(t, "5050", cfg.Server.Port, "process env wins over .env")
}

func TestLoadExplicitMissingEnvFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ENV_FILE", filepath.Join(dir, "nope.env"))

	_, err := Load()
	require.Error(t, err)
}

func validConfig() Config {
	return Config{
		Server: ServerConfig{Port: "8080", RequestBodyLimit: 8 << 20},
		Avatar: AvatarConfig{Storage: StorageFirebase, MaxBytes: 5 << 20, CacheControl: 3600},
		Notice: NoticeConfig{SuccessTTL: 3 * time.Second, ErrorTTL: 5 * time.Second},
		Editor: EditorConfig{Capacity: 10000, IdleTTL: 30 * time.Minute},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid firebase", mutate: func(*Config) {}},
		{
			name: "valid s3",
			mutate: func(c *Config) {
				c.Avatar.Storage = StorageS3
				c.Avatar.Bucket = "avatars"
				c.S3 = S3Config{Endpoint: "http://minio:9000", AccessKey: "k", SecretKey: "s"}
			},
		},
		{name: "unknown backend", mutate: func(c *Config) { c.Avatar.Storage = "ftp" }, wantErr: "avatar.storage"},
		{name: "zero max bytes", mutate: func(c *Config) { c.Avatar.MaxBytes = 0 }, wantErr: "avatar.max_bytes"},
		{name: "zero body limit", mutate: func(c *Config) { c.Server.RequestBodyLimit = 0 }, wantErr: "request_body_limit"},
		{name: "avatar above body limit", mutate: func(c *Config) { c.Avatar.MaxBytes = 16 << 20 }, wantErr: "exceeds"},
		{name: "negative cache control", mutate: func(c *Config) { c.Avatar.CacheControl = -1 }, wantErr: "cache_control"},
		{name: "zero ttl", mutate: func(c *Config) { c.Notice.ErrorTTL = 0 }, wantErr: "notice"},
		{name: "zero editor capacity", mutate: func(c *Config) { c.Editor.Capacity = 0 }, wantErr: "editor.capacity"},
		{name: "zero editor idle ttl", mutate: func(c *Config) { c.Editor.IdleTTL = 0 }, wantErr: "editor.idle_ttl"},
		{
			name: "s3 without endpoint",
			mutate: func(c *Config) {
				c.Avatar.Storage = StorageS3
				c.Avatar.Bucket = "avatars"
				c.S3 = S3Config{AccessKey: "k", SecretKey: "s"}
			},
			wantErr: "endpoint",
		},
		{
			name: "s3 without credentials",
			mutate: func(c *Config) {
				c.Avatar.Storage = StorageS3
				c.Avatar.Bucket = "avatars"
				c.S3 = S3Config{Endpoint: "http://minio:9000", AccessKey: "k"}
			},
			wantErr: "secret_key",
		},
		{
			name:    "s3 without bucket",
			mutate:  func(c *Config) { c.Avatar.Storage = StorageS3 },
			wantErr: "avatar.bucket",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestAvatarBucketFallsBackToFirebaseBucket(t *testing.T) {
	cfg := validConfig()
	cfg.Firebase.StorageBucket = "demo.firebasestorage.app"
	assert.Equal(t, "demo.firebasestorage.app", cfg.AvatarBucket())

	cfg.Avatar.Bucket = "custom"
	assert.Equal(t, "custom", cfg.AvatarBucket())

	cfg = validConfig()
	cfg.Avatar.Storage = StorageS3
	cfg.Firebase.StorageBucket = "ignored"
	assert.Empty(t, cfg.AvatarBucket())
}
