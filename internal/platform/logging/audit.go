package logging

import (
	"context"

	"go.uber.org/zap"
)

// Audit results.
const (
	AuditSuccess = "success"
	AuditFailure = "failure"
)

// AuditEvent describes a security-relevant change to a user's data.
type AuditEvent struct {
	Action       string // e.g. "upsert", "update_metadata", "upload", "sign_out"
	UserID       string
	ResourceType string // e.g. "profile", "session", "avatar"
	ResourceID   string
	Result       string
	Details      map[string]any
}

// LogAuditEvent writes ev as a structured "Audit event" entry.
func LogAuditEvent(ctx context.Context, ev AuditEvent) {
	fields := []zap.Field{
		zap.String("audit.action", ev.Action),
		zap.String("audit.user_id", ev.UserID),
		zap.String("audit.resource_type", ev.ResourceType),
		zap.String("audit.resource_id", ev.ResourceID),
		zap.String("audit.result", ev.Result),
	}
	if len(ev.Details) > 0 {
		fields = append(fields, zap.Any("audit.details", ev.Details))
	}
	LoggerFromContext(ctx).Info("Audit event", fields...)
}
