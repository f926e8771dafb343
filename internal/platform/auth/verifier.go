// Package auth verifies Firebase ID tokens and exposes the caller to huma
// operations.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	fbauth "firebase.google.com/go/v4/auth"
)

// Principal is the caller identified by a verified ID token.
type Principal struct {
	UID            string
	Email          string
	EmailVerified  bool
	Name           string
	SignInProvider string
	AuthTime       time.Time
}

var (
	ErrNoToken      = errors.New("missing authorization header")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
	ErrTokenRevoked = errors.New("token revoked")
	ErrUserDisabled = errors.New("user disabled")

	// ErrCertificateFetch means Google's public keys could not be fetched.
	// Callers answer 503 rather than 401.
	ErrCertificateFetch = errors.New("failed to fetch certificates")
)

// Verifier validates an ID token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Principal, error)
}

// FirebaseVerifier checks tokens with the Admin SDK, including revocation so a
// logout takes effect before the token expires.
type FirebaseVerifier struct {
	client *fbauth.Client
}

func NewFirebaseVerifier(client *fbauth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*Principal, error) {
	token, err := v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return nil, classifyVerifyError(err)
	}
	return principalFromToken(token), nil
}

func classifyVerifyError(err error) error {
	switch {
	case fbauth.IsCertificateFetchFailed(err):
		return ErrCertificateFetch
	case fbauth.IsIDTokenExpired(err):
		return ErrTokenExpired
	case fbauth.IsIDTokenRevoked(err):
		return ErrTokenRevoked
	case fbauth.IsUserDisabled(err):
		return ErrUserDisabled
	default:
		return ErrInvalidToken
	}
}

func principalFromToken(token *fbauth.Token) *Principal {
	email, _ := token.Claims["email"].(string)
	verified, _ := token.Claims["email_verified"].(bool)
	name, _ := token.Claims["name"].(string)
	p := &Principal{
		UID:            token.UID,
		Email:          email,
		EmailVerified:  verified,
		Name:           name,
		SignInProvider: token.Firebase.SignInProvider,
	}
	if token.AuthTime > 0 {
		p.AuthTime = time.Unix(token.AuthTime, 0).UTC()
	}
	return p
}

// ExtractBearerToken returns the token from an Authorization header value.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrNoToken
	}
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !ok || !strings.EqualFold(scheme, "bearer") || token == "" || strings.ContainsAny(token, " \t") {
		return "", ErrInvalidToken
	}
	return token, nil
}

var _ Verifier = (*FirebaseVerifier)(nil)
