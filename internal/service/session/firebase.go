package session

import (
	"context"
	"fmt"
	"maps"
	"time"

	"firebase.google.com/go/v4/auth"
	"go.uber.org/zap"

	applog "github.com/janisto/huma-profile/internal/platform/logging"
)

// authClient is the subset of *auth.Client the service uses.
type authClient interface {
	GetUser(ctx context.Context, uid string) (*auth.UserRecord, error)
	SetCustomUserClaims(ctx context.Context, uid string, claims map[string]any) error
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

// FirebaseService stores session metadata as Firebase custom claims.
type FirebaseService struct {
	client authClient
	hub    *Hub
}

// NewFirebaseService returns a Service backed by Firebase Auth. hub may be nil.
func NewFirebaseService(client *auth.Client, hub *Hub) *FirebaseService {
	return &FirebaseService{client: client, hub: hub}
}

func (s *FirebaseService) Get(ctx context.Context, userID string) (*Session, error) {
	u, err := s.client.GetUser(ctx, userID)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return sessionFromUser(u), nil
}

// UpdateMetadata merges md into the custom claims and notifies the hub with
// the refreshed session.
func (s *FirebaseService) UpdateMetadata(ctx context.Context, userID string, md Metadata) error {
	u, err := s.client.GetUser(ctx, userID)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("get user: %w", err)
	}

	claims := make(map[string]any, len(u.CustomClaims)+len(md))
	maps.Copy(claims, u.CustomClaims)
	maps.Copy(claims, md)

	if err := s.client.SetCustomUserClaims(ctx, userID, claims); err != nil {
		applog.LogAuditEvent(ctx, applog.AuditEvent{
			Action: "update_metadata", UserID: userID, ResourceType: "session", ResourceID: userID,
			Result: applog.AuditFailure,
		})
		return fmt.Errorf("set custom claims: %w", err)
	}
	applog.LogAuditEvent(ctx, applog.AuditEvent{
		Action: "update_metadata", UserID: userID, ResourceType: "session", ResourceID: userID,
		Result: applog.AuditSuccess, Details: map[string]any{"keys": len(md)},
	})

	u.CustomClaims = claims
	s.publish(userID, sessionFromUser(u))
	return nil
}

// SignOut revokes the user's refresh tokens. Subscribers are told the session
// is gone even when revocation fails, since the caller discards it anyway.
func (s *FirebaseService) SignOut(ctx context.Context, userID string) error {
	err := s.client.RevokeRefreshTokens(ctx, userID)
	result := applog.AuditSuccess
	if err != nil {
		result = applog.AuditFailure
		applog.LogWarn(ctx, "revoke refresh tokens failed", zap.String("uid", userID), zap.Error(err))
	}
	applog.LogAuditEvent(ctx, applog.AuditEvent{
		Action: "sign_out", UserID: userID, ResourceType: "session", ResourceID: userID, Result: result,
	})
	s.publish(userID, nil)
	if err != nil {
		return fmt.Errorf("revoke refresh tokens: %w", err)
	}
	return nil
}

func (s *FirebaseService) publish(userID string, sess *Session) {
	if s.hub != nil {
		s.hub.Publish(userID, sess)
	}
}

func sessionFromUser(u *auth.UserRecord) *Session {
	md := Metadata{}
	maps.Copy(md, u.CustomClaims)
	s := &Session{Metadata: md}
	if u.UserInfo != nil {
		s.UserID = u.UID
		s.Email = u.Email
		fallback(md, KeyName, u.DisplayName)
		fallback(md, KeyAvatarURL, u.PhotoURL)
		fallback(md, KeyPhone, u.PhoneNumber)
	}
	if u.UserMetadata != nil && u.UserMetadata.CreationTimestamp > 0 {
		s.CreatedAt = time.UnixMilli(u.UserMetadata.CreationTimestamp).UTC()
	}
	return s
}

func fallback(md Metadata, key, value string) {
	if _, ok := md[key]; !ok && value != "" {
		md[key] = value
	}
}

var _ Service = (*FirebaseService)(nil)
