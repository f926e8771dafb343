package routes

import (
	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-profile/internal/http/health"
	"github.com/janisto/huma-profile/internal/http/v1/avatars"
	"github.com/janisto/huma-profile/internal/http/v1/profile"
	"github.com/janisto/huma-profile/internal/platform/auth"
)

// Prefix is the path prefix of the versioned API.
const Prefix = "/v1"

// Options tunes route registration.
type Options struct {
	Version     string
	UploadLimit int64
}

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API, verifier auth.Verifier, editors profile.Editors, opts Options) {
	health.Register(api, opts.Version)

	v1 := huma.NewGroup(api, Prefix)
	// Apply auth middleware for protected endpoints
	v1.UseMiddleware(auth.NewAuthMiddleware(v1, verifier))

	avatars.Register(v1)
	profile.Register(v1, editors, opts.UploadLimit)
}
