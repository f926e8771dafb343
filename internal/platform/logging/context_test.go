package logging

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observedContext() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return WithLogger(context.Background(), zap.New(core)), logs
}

func TestLoggerFromContextFallsBackToGlobal(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	if LoggerFromContext(nil) != Logger() {
		t.Fatal("expected global logger for nil context")
	}
	if LoggerFromContext(context.Background()) != Logger() {
		t.Fatal("expected global logger for empty context")
	}
	ctx := context.WithValue(context.Background(), ctxLoggerKey{}, (*zap.Logger)(nil))
	if LoggerFromContext(ctx) != Logger() {
		t.Fatal("expected global logger for nil logger in context")
	}
}

func TestLogHelpersUseContextLogger(t *testing.T) {
	ctx, logs := observedContext()

	LogInfo(ctx, "info msg", zap.String("k", "v"))
	LogWarn(ctx, "warn msg")
	LogError(ctx, "error msg", errors.New("boom"))
	LogError(ctx, "error without cause", nil)

	entries := logs.All()
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["k"] != "v" {
		t.Fatalf("unexpected info entry %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level, got %v", entries[1].Level)
	}
	if got := entries[2].ContextMap()["error"]; got != "boom" {
		t.Fatalf("expected error field boom, got %v", got)
	}
	if _, ok := entries[3].ContextMap()["error"]; ok {
		t.Fatal("did not expect error field for nil error")
	}
}

func TestTraceIDFromContext(t *testing.T) {
	if got := TraceIDFromContext(context.Background()); got != "" {
		t.Fatalf("expected empty trace id, got %q", got)
	}
	ctx := withTraceID(context.Background(), "req-1")
	if got := TraceIDFromContext(ctx); got != "req-1" {
		t.Fatalf("expected req-1, got %q", got)
	}
	if withTraceID(ctx, "") != ctx {
		t.Fatal("empty trace id should not wrap the context")
	}
}

func TestLogAuditEvent(t *testing.T) {
	ctx, logs := observedContext()

	LogAuditEvent(ctx, AuditEvent{
		Action:       "upsert",
		UserID:       "user-1",
		ResourceType: "profile",
		ResourceID:   "user-1",
		Result:       AuditFailure,
		Details:      map[string]any{"error": "internal_error"},
	})
	LogAuditEvent(ctx, AuditEvent{Action: "sign_out", UserID: "user-1", ResourceType: "session", Result: AuditSuccess})

	entries := logs.FilterMessage("Audit event").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 audit entries, got %d", len(entries))
	}
	first := entries[0].ContextMap()
	if first["audit.action"] != "upsert" || first["audit.result"] != "failure" {
		t.Fatalf("unexpected fields %v", first)
	}
	details, ok := first["audit.details"].(map[string]any)
	if !ok || details["error"] != "internal_error" {
		t.Fatalf("unexpected details %v", first["audit.details"])
	}
	if _, ok := entries[1].ContextMap()["audit.details"]; ok {
		t.Fatal("details should be omitted when empty")
	}
}
