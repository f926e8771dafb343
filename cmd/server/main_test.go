package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/huma-profile/internal/config"
	"github.com/janisto/huma-profile/internal/platform/auth"
	"github.com/janisto/huma-profile/internal/service/avatar"
	"github.com/janisto/huma-profile/internal/service/editor"
	profilesvc "github.com/janisto/huma-profile/internal/service/profile"
	"github.com/janisto/huma-profile/internal/service/session"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Port: "0", RequestBodyLimit: 8 << 20},
		Avatar: config.AvatarConfig{Storage: config.StorageFirebase, MaxBytes: 5 << 20},
	}
}

func testServer(t *testing.T) (chi.Router, huma.API) {
	t.Helper()
	hub := session.NewHub()
	sessions := session.NewMock(hub)
	sessions.Put(&session.Session{UserID: auth.TestPrincipal().UID, Email: "test@example.com"})
	registry := editor.NewRegistry(profilesvc.NewMockStore(), sessions, avatar.NewUploader(avatar.NewMockStorage()), hub, editor.Limits{})
	t.Cleanup(registry.Close)

	router, api := newRouter(testConfig(), &auth.MockVerifier{Principal: auth.TestPrincipal()}, registry)
	huma.Get(api, "/panic", func(ctx context.Context, _ *struct{}) (*struct{}, error) {
		panic("boom")
	})
	return router, api
}

func serve(router http.Handler, method, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeProblem(t *testing.T, resp *httptest.ResponseRecorder) huma.ErrorModel {
	t.Helper()
	if ct := resp.Header().Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("expected application/problem+json content type, got %q", ct)
	}
	var problem huma.ErrorModel
	if err := json.Unmarshal(resp.Body.Bytes(), &problem); err != nil {
		t.Fatalf("failed to decode problem: %v", err)
	}
	return problem
}

func TestHealth(t *testing.T) {
	router, _ := testServer(t)
	resp := serve(router, http.MethodGet, "/health", map[string]string{
		chimiddleware.RequestIDHeader: "test-health-req",
		"Accept":                      "application/json",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200 got %d", resp.Code)
	}
	var body struct {
		Status  string `json:"status"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if body.Status != "healthy" || body.Version != Version {
		t.Fatalf("unexpected body %+v", body)
	}
	if resp.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected security headers")
	}
	if resp.Header().Get(chimiddleware.RequestIDHeader) != "test-health-req" {
		t.Fatalf("expected request ID to be echoed")
	}
}

func TestNotFoundReturnsProblemDetails(t *testing.T) {
	router, _ := testServer(t)
	resp := serve(router, http.MethodGet, "/missing", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
	if problem := decodeProblem(t, resp); problem.Status != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", problem.Status)
	}
}

func TestMethodNotAllowedReturnsProblemDetails(t *testing.T) {
	router, _ := testServer(t)
	resp := serve(router, http.MethodDelete, "/v1/profile", nil)
	if resp.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", resp.Code)
	}
	if allow := resp.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("expected Allow header to list GET, got %q", allow)
	}
	if problem := decodeProblem(t, resp); !strings.Contains(problem.Detail, http.MethodDelete) {
		t.Fatalf("expected detail to mention DELETE, got %s", problem.Detail)
	}
}

func TestRecovererReturnsProblemDetails(t *testing.T) {
	router, _ := testServer(t)
	resp := serve(router, http.MethodGet, "/panic", nil)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
	if problem := decodeProblem(t, resp); problem.Status != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", problem.Status)
	}
}

func TestProfileRequiresBearerToken(t *testing.T) {
	router, _ := testServer(t)
	resp := serve(router, http.MethodGet, "/v1/profile", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}

	resp = serve(router, http.MethodGet, "/v1/profile", map[string]string{"Authorization": "Bearer token"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if cc := resp.Header().Get("Cache-Control"); cc != "no-store" {
		t.Fatalf("profile responses must not be cached, got %q", cc)
	}
}

func TestWildcardAcceptReturnsJSON(t *testing.T) {
	router, _ := testServer(t)
	for _, accept := range []string{"", "*/*", "application/*", "text/plain"} {
		t.Run(accept, func(t *testing.T) {
			resp := serve(router, http.MethodGet, "/health", map[string]string{"Accept": accept})
			if resp.Code != http.StatusOK {
				t.Fatalf("expected 200 OK, got %d", resp.Code)
			}
			if ct := resp.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("expected application/json, got %q", ct)
			}
		})
	}
}

func TestOpenAPIDocument(t *testing.T) {
	_, api := testServer(t)
	doc := api.OpenAPI()

	scheme, ok := doc.Components.SecuritySchemes[auth.SecurityScheme]
	if !ok || scheme.Scheme != "bearer" || scheme.BearerFormat != "JWT" {
		t.Fatalf("expected bearer JWT security scheme, got %+v", scheme)
	}

	op := doc.Paths["/v1/profile/form"].Patch
	if op == nil || op.RequestBody == nil {
		t.Fatal("expected request body on PATCH /v1/profile/form")
	}
	if _, ok := op.RequestBody.Content["application/cbor"]; !ok {
		t.Fatal("expected application/cbor in request body content")
	}
	if _, ok := op.Responses["200"].Content["application/cbor"]; !ok {
		t.Fatal("expected application/cbor in 200 response content")
	}

	upload := doc.Paths["/v1/profile/avatar"].Post
	if upload == nil || upload.MaxBodyBytes != 8<<20 {
		t.Fatalf("expected upload body limit from config")
	}
}

func TestNewAvatarStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("firebase without bucket", func(t *testing.T) {
		s, err := newAvatarStorage(ctx, testConfig(), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := s.(avatar.Unconfigured); !ok {
			t.Fatalf("expected Unconfigured, got %T", s)
		}
	})

	t.Run("s3", func(t *testing.T) {
		cfg := testConfig()
		cfg.Avatar.Storage = config.StorageS3
		cfg.Avatar.Bucket = "avatars"
		cfg.S3 = config.S3Config{
			Region:       "us-east-1",
			Endpoint:     "http://127.0.0.1:9000",
			AccessKey:    "minio",
			SecretKey:    "minio123",
			UsePathStyle: true,
		}
		s, err := newAvatarStorage(ctx, cfg, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := s.(*avatar.S3Storage); !ok {
			t.Fatalf("expected *avatar.S3Storage, got %T", s)
		}
		if got := s.PublicURL("avatars/u1.png"); got != "http://127.0.0.1:9000/avatars/avatars/u1.png" {
			t.Fatalf("unexpected public URL %q", got)
		}
	})

	t.Run("unknown", func(t *testing.T) {
		cfg := testConfig()
		cfg.Avatar.Storage = "ftp"
		if _, err := newAvatarStorage(ctx, cfg, nil); err == nil {
			t.Fatal("expected error for unknown backend")
		}
	})
}
