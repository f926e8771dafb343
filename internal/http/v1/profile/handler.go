package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/huma-profile/internal/platform/auth"
	"github.com/janisto/huma-profile/internal/service/avatar"
	"github.com/janisto/huma-profile/internal/service/editor"
)

// DefaultUploadBodyLimit caps the multipart avatar request.
const DefaultUploadBodyLimit int64 = 8 << 20

// Editors hands out the per-user profile editor.
type Editors interface {
	Open(ctx context.Context, userID string) (*editor.Editor, error)
}

var security = []map[string][]string{
	{auth.SecurityScheme: {}},
}

// Register registers profile endpoints. uploadLimit bounds the avatar
// upload request body; zero means DefaultUploadBodyLimit.
func Register(api huma.API, editors Editors, uploadLimit int64) {
	if uploadLimit <= 0 {
		uploadLimit = DefaultUploadBodyLimit
	}

	huma.Register(api, huma.Operation{
		OperationID: "get-profile",
		Method:      http.MethodGet,
		Path:        "/profile",
		Summary:     "Get current user's profile page",
		Description: "Returns the reconciled profile form, avatar and any pending notice.",
		Tags:        []string{"Profile"},
		Security:    security,
	}, func(ctx context.Context, _ *ProfileGetInput) (*ProfileOutput, error) {
		ed, err := open(ctx, editors)
		if err != nil {
			return nil, err
		}
		return render(ed), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "begin-profile-edit",
		Method:      http.MethodPost,
		Path:        "/profile/edit",
		Summary:     "Enter edit mode",
		Tags:        []string{"Profile"},
		Security:    security,
	}, func(ctx context.Context, _ *ProfileActionInput) (*ProfileOutput, error) {
		ed, err := open(ctx, editors)
		if err != nil {
			return nil, err
		}
		ed.BeginEdit()
		return render(ed), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "edit-profile-form",
		Method:      http.MethodPatch,
		Path:        "/profile/form",
		Summary:     "Edit form fields",
		Description: "Changes the unsaved form. Only provided fields change. Requires edit mode.",
		Tags:        []string{"Profile"},
		Security:    security,
	}, func(ctx context.Context, input *ProfileFormInput) (*ProfileOutput, error) {
		patch := editor.FieldPatch{
			Name:    input.Body.Name,
			Phone:   input.Body.Phone,
			Address: input.Body.Address,
			City:    input.Body.City,
		}
		if patch.Empty() {
			return nil, huma.Error422UnprocessableEntity("at least one field must be provided")
		}
		ed, err := open(ctx, editors)
		if err != nil {
			return nil, err
		}
		if err := ed.Edit(patch); err != nil {
			return nil, mapEditorError(err)
		}
		return render(ed), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:  "upload-profile-avatar",
		Method:       http.MethodPost,
		Path:         "/profile/avatar",
		Summary:      "Upload an avatar image",
		Description:  "Stores the image and puts its URL into the form. The next save persists it.",
		Tags:         []string{"Profile"},
		Security:     security,
		MaxBodyBytes: uploadLimit,
	}, func(ctx context.Context, input *ProfileAvatarInput) (*ProfileOutput, error) {
		ed, err := open(ctx, editors)
		if err != nil {
			return nil, err
		}
		form := input.RawBody.Data()
		file := &avatar.File{
			Name:        form.File.Filename,
			ContentType: form.File.ContentType,
			Size:        form.File.Size,
			Body:        form.File.File,
		}
		if _, err := ed.UploadAvatar(ctx, file); err != nil {
			return nil, mapEditorError(err)
		}
		return render(ed), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "save-profile",
		Method:      http.MethodPost,
		Path:        "/profile/save",
		Summary:     "Save the profile",
		Description: "Writes the form to the profile store, then to the user's metadata.",
		Tags:        []string{"Profile"},
		Security:    security,
	}, func(ctx context.Context, _ *ProfileActionInput) (*ProfileOutput, error) {
		ed, err := open(ctx, editors)
		if err != nil {
			return nil, err
		}
		if err := ed.Save(ctx); err != nil {
			return nil, mapEditorError(err)
		}
		return render(ed), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "cancel-profile-edit",
		Method:      http.MethodPost,
		Path:        "/profile/cancel",
		Summary:     "Discard unsaved changes",
		Tags:        []string{"Profile"},
		Security:    security,
	}, func(ctx context.Context, _ *ProfileActionInput) (*ProfileOutput, error) {
		ed, err := open(ctx, editors)
		if err != nil {
			return nil, err
		}
		ed.Cancel()
		return render(ed), nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "logout",
		Method:        http.MethodPost,
		Path:          "/profile/logout",
		Summary:       "Sign out",
		Description:   "Revokes the user's sessions and clears the profile page.",
		Tags:          []string{"Profile"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
	}, func(ctx context.Context, _ *ProfileActionInput) (*struct{}, error) {
		ed, err := open(ctx, editors)
		if err != nil {
			return nil, err
		}
		ed.Logout(ctx)
		return nil, nil
	})
}

func open(ctx context.Context, editors Editors) (*editor.Editor, error) {
	principal := auth.PrincipalFromContext(ctx)
	if principal == nil {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	ed, err := editors.Open(ctx, principal.UID)
	if err != nil {
		return nil, mapEditorError(err)
	}
	return ed, nil
}

func render(ed *editor.Editor) *ProfileOutput {
	return &ProfileOutput{Body: toHTTPProfile(ed.View())}
}

func mapEditorError(err error) error {
	var (
		validation  *editor.ValidationError
		config      *editor.ConfigurationError
		persistence *editor.PersistenceError
	)
	switch {
	case errors.As(err, &validation):
		return huma.Error422UnprocessableEntity(validation.Error())
	case errors.As(err, &config):
		return huma.Error503ServiceUnavailable("avatar storage is not configured")
	case errors.As(err, &persistence):
		return huma.Error502BadGateway(persistence.Op + " failed")
	case errors.Is(err, editor.ErrBusy),
		errors.Is(err, editor.ErrSessionChanged),
		errors.Is(err, editor.ErrNotEditing):
		return huma.Error409Conflict(err.Error())
	default:
		return huma.Error500InternalServerError("internal error")
	}
}
