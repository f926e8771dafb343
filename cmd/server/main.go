package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/janisto/huma-profile/internal/config"
	"github.com/janisto/huma-profile/internal/http/v1/profile"
	"github.com/janisto/huma-profile/internal/http/v1/routes"
	"github.com/janisto/huma-profile/internal/platform/auth"
	"github.com/janisto/huma-profile/internal/platform/firebase"
	applog "github.com/janisto/huma-profile/internal/platform/logging"
	appmiddleware "github.com/janisto/huma-profile/internal/platform/middleware"
	"github.com/janisto/huma-profile/internal/platform/respond"
	"github.com/janisto/huma-profile/internal/service/avatar"
	"github.com/janisto/huma-profile/internal/service/editor"
	profilesvc "github.com/janisto/huma-profile/internal/service/profile"
	"github.com/janisto/huma-profile/internal/service/session"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const docsPath = "/api-docs"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogFatal(context.Background(), "config load failed", err)
	}

	ctx := context.Background()
	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.Firebase.ProjectID,
		GoogleApplicationCredentials: cfg.Firebase.Credentials,
		StorageBucket:                cfg.Firebase.StorageBucket,
	})
	if err != nil {
		applog.LogFatal(ctx, "firebase init failed", err)
	}
	defer func() {
		if err := clients.Close(); err != nil {
			applog.LogError(context.Background(), "firebase close error", err)
		}
	}()

	storage, err := newAvatarStorage(ctx, cfg, clients)
	if err != nil {
		applog.LogFatal(ctx, "avatar storage init failed", err)
	}

	hub := session.NewHub()
	registry := editor.NewRegistry(
		profilesvc.NewFirestoreStore(clients.Firestore),
		session.NewFirebaseService(clients.Auth, hub),
		avatar.NewUploader(storage,
			avatar.WithMaxBytes(cfg.Avatar.MaxBytes),
			avatar.WithCacheControl(cfg.Avatar.CacheControl),
		),
		hub,
		editor.Limits{Capacity: cfg.Editor.Capacity, IdleTTL: cfg.Editor.IdleTTL},
		editor.WithNoticeTTLs(cfg.Notice.SuccessTTL, cfg.Notice.ErrorTTL),
	)
	defer registry.Close()

	router, _ := newRouter(cfg, auth.NewFirebaseVerifier(clients.Auth), registry)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening",
			zap.String("addr", srv.Addr), zap.String("avatar_storage", cfg.Avatar.Storage))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		os.Exit(1)
	case <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// newRouter builds the middleware stack and the API.
func newRouter(cfg *config.Config, verifier auth.Verifier, editors profile.Editors) (chi.Router, huma.API) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORS.AllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		chimiddleware.RealIP,
		// Sized for a multipart avatar upload plus form overhead.
		chimiddleware.RequestSize(cfg.Server.RequestBodyLimit),
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	humaCfg := huma.DefaultConfig("Huma Profile API", Version)
	humaCfg.DocsPath = docsPath
	humaCfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		auth.SecurityScheme: {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Firebase ID token",
		},
	}
	api := humachi.New(router, humaCfg)

	// Add CBOR content type to OpenAPI requests and responses
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)

	routes.Register(api, verifier, editors, routes.Options{
		Version:     Version,
		UploadLimit: cfg.Server.RequestBodyLimit,
	})
	return router, api
}

// newAvatarStorage picks the upload backend. A Firebase backend without a
// bucket still starts; uploads then report the configuration notice.
func newAvatarStorage(ctx context.Context, cfg *config.Config, clients *firebase.Clients) (avatar.Storage, error) {
	switch cfg.Avatar.Storage {
	case config.StorageS3:
		s, err := avatar.NewS3Storage(ctx, avatar.S3Config{
			Bucket:        cfg.Avatar.Bucket,
			Region:        cfg.S3.Region,
			Endpoint:      cfg.S3.Endpoint,
			AccessKey:     cfg.S3.AccessKey,
			SecretKey:     cfg.S3.SecretKey,
			UsePathStyle:  cfg.S3.UsePathStyle,
			PublicBaseURL: cfg.Avatar.PublicBaseURL,
		})
		if err != nil {
			return nil, fmt.Errorf("s3 storage: %w", err)
		}
		return s, nil
	case config.StorageFirebase:
		bucket := cfg.AvatarBucket()
		if bucket == "" || clients == nil || clients.Storage == nil {
			applog.LogWarn(ctx, "no avatar bucket configured, uploads are disabled")
			return avatar.Unconfigured{}, nil
		}
		if bucket == cfg.Firebase.StorageBucket {
			handle, err := clients.DefaultBucket()
			if err != nil {
				return nil, err
			}
			return avatar.NewGCSStorage(handle, cfg.Avatar.PublicBaseURL), nil
		}
		handle, err := clients.Storage.Bucket(bucket)
		if err != nil {
			return nil, fmt.Errorf("bucket %q: %w", bucket, err)
		}
		return avatar.NewGCSStorage(handle, cfg.Avatar.PublicBaseURL), nil
	default:
		return nil, fmt.Errorf("unknown avatar storage %q", cfg.Avatar.Storage)
	}
}
