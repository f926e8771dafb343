package avatars

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-profile/internal/service/avatar"
)

const placeholderCacheControl = "public, max-age=86400, immutable"

// PlaceholderInput for GET /avatars/placeholder
type PlaceholderInput struct {
	Name string `query:"name" maxLength:"200" doc:"Display name to draw initials from" example:"Ada Lovelace"`
}

// PlaceholderOutput carries the raw SVG document.
type PlaceholderOutput struct {
	ContentType    string `header:"Content-Type"`
	CacheControl   string `header:"Cache-Control"`
	ResourcePolicy string `header:"Cross-Origin-Resource-Policy"`
	Body           []byte
}

// Register registers the public avatar endpoints.
func Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-avatar-placeholder",
		Method:      http.MethodGet,
		Path:        "/avatars/placeholder",
		Summary:     "Generated initials avatar",
		Description: "Returns a colored initials badge for name. The same name always yields the same image.",
		Tags:        []string{"Avatars"},
		Responses: map[string]*huma.Response{
			"200": {
				Description: "SVG image",
				Content: map[string]*huma.MediaType{
					"image/svg+xml": {Schema: &huma.Schema{Type: huma.TypeString}},
				},
			},
		},
	}, func(_ context.Context, input *PlaceholderInput) (*PlaceholderOutput, error) {
		p := avatar.Generate(input.Name)
		if p == nil {
			return nil, huma.Error404NotFound("no placeholder for an empty name")
		}
		return &PlaceholderOutput{
			ContentType:    "image/svg+xml",
			CacheControl:   placeholderCacheControl,
			ResourcePolicy: "cross-origin",
			Body:           p.SVG,
		}, nil
	})
}
