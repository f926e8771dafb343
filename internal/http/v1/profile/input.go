package profile

import (
	"github.com/danielgtaylor/huma/v2"
)

// ProfileGetInput for GET /profile (no body needed)
type ProfileGetInput struct{}

// ProfileActionInput for the body-less POST actions.
type ProfileActionInput struct{}

// ProfileFormInput for PATCH /profile/form. Omitted fields are left as they are.
type ProfileFormInput struct {
	Body struct {
		Name    *string `json:"name,omitempty"    maxLength:"200" doc:"Display name"   example:"Ada Lovelace"`
		Phone   *string `json:"phone,omitempty"   maxLength:"50"  doc:"Phone number"   example:"+358401234567"`
		Address *string `json:"address,omitempty" maxLength:"200" doc:"Street address" example:"Mannerheimintie 1"`
		City    *string `json:"city,omitempty"    maxLength:"100" doc:"City"           example:"Helsinki"`
	}
}

// AvatarUploadForm is the multipart body of POST /profile/avatar.
type AvatarUploadForm struct {
	File huma.FormFile `form:"file" required:"true" doc:"Image file (image/*)"`
}

// ProfileAvatarInput for POST /profile/avatar
type ProfileAvatarInput struct {
	RawBody huma.MultipartFormFiles[AvatarUploadForm]
}
