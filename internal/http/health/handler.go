package health

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// Status is the payload for the health endpoint.
type Status struct {
	Status  string `json:"status"  example:"healthy" doc:"Always healthy while the process serves requests"`
	Version string `json:"version" example:"1.2.3"   doc:"Build version"`
}

// Output for GET /health
type Output struct {
	Body Status
}

// Register registers the liveness endpoint. It is public and touches no
// backend, so a slow Firestore never fails the probe.
func Register(api huma.API, version string) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Liveness probe",
		Tags:        []string{"Health"},
	}, func(context.Context, *struct{}) (*Output, error) {
		return &Output{Body: Status{Status: "healthy", Version: version}}, nil
	})
}
