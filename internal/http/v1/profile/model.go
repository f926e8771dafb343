package profile

import (
	"github.com/janisto/huma-profile/internal/platform/timeutil"
	"github.com/janisto/huma-profile/internal/service/editor"
)

// Profile is the rendered profile page of the caller.
type Profile struct {
	Authenticated bool           `json:"authenticated"         doc:"False when the caller has no session; nothing else is set"`
	UserID        string         `json:"userId,omitempty"      doc:"Firebase user ID"                                         example:"user-123"`
	Editing       bool           `json:"editing"               doc:"Edit mode is on"`
	Busy          bool           `json:"busy"                  doc:"A save or upload is in progress"`
	Form          Form           `json:"form"`
	Avatar        Avatar         `json:"avatar"`
	Role          string         `json:"role,omitempty"        doc:"Role claim, defaults to user"                             example:"user"`
	MemberSince   *timeutil.Time `json:"memberSince,omitempty" doc:"Account creation time"                                    example:"2024-01-15T10:30:00.000Z"`
	Notice        *Notice        `json:"notice,omitempty"      doc:"Transient status message"`
}

// Form holds the editable fields. Email is read-only.
type Form struct {
	Name      string `json:"name"      doc:"Display name"   example:"Ada Lovelace"`
	Email     string `json:"email"     doc:"Account email"  example:"ada@example.com"`
	Phone     string `json:"phone"     doc:"Phone number"   example:"+358401234567"`
	Address   string `json:"address"   doc:"Street address" example:"Mannerheimintie 1"`
	City      string `json:"city"      doc:"City"           example:"Helsinki"`
	AvatarURL string `json:"avatarUrl" doc:"Avatar image URL, uploaded or saved"`
}

// Avatar tells the client what image to show.
type Avatar struct {
	Src       string `json:"src,omitempty"      doc:"Image to show: the avatar URL or a generated placeholder"`
	Fallback  string `json:"fallback,omitempty" doc:"Image to show when src fails to load"`
	Generated bool   `json:"generated"          doc:"Src is a generated placeholder"`
}

// Notice is a success or error message that expires on its own.
type Notice struct {
	Kind    string `json:"kind"    enum:"success,error,configuration" doc:"Notice kind"`
	Message string `json:"message" doc:"Message text" example:"Profile updated successfully!"`
}

func toHTTPProfile(v editor.View) Profile {
	p := Profile{
		Authenticated: v.Authenticated,
		UserID:        v.UserID,
		Editing:       v.Editing,
		Busy:          v.Busy,
		Form: Form{
			Name:      v.Form.Name,
			Email:     v.Form.Email,
			Phone:     v.Form.Phone,
			Address:   v.Form.Address,
			City:      v.Form.City,
			AvatarURL: v.Form.AvatarURL,
		},
		Avatar: Avatar{
			Src:       v.Avatar.Src,
			Fallback:  v.Avatar.Fallback,
			Generated: v.Avatar.Generated,
		},
		Role: v.Role,
	}
	if !v.MemberSince.IsZero() {
		ms := timeutil.NewTime(v.MemberSince)
		p.MemberSince = &ms
	}
	if v.Notice != nil {
		p.Notice = &Notice{Kind: string(v.Notice.Kind), Message: v.Notice.Message}
	}
	return p
}
