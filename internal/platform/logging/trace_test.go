package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const sampleTraceparent = "00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-01"

func TestParseTraceparent(t *testing.T) {
	tc, ok := parseTraceparent(sampleTraceparent, "demo")
	if !ok {
		t.Fatal("expected header to parse")
	}
	if tc.resource != "projects/demo/traces/ab42124a3c573678d4d8b21ba52df3bf" {
		t.Fatalf("unexpected resource %q", tc.resource)
	}
	if tc.spanID != "d21f7bc17caa5aba" || !tc.sampled {
		t.Fatalf("unexpected trace context %+v", tc)
	}

	tc, ok = parseTraceparent("00-ab42124a3c573678d4d8b21ba52df3bf-d21f7bc17caa5aba-00", "demo")
	if !ok || tc.sampled {
		t.Fatalf("expected unsampled trace, got %+v", tc)
	}
}

func TestParseTraceparentRejects(t *testing.T) {
	tests := []struct {
		name, header, project string
	}{
		{"no project", sampleTraceparent, ""},
		{"empty header", "", "demo"},
		{"short trace id", "00-abc-d21f7bc17caa5aba-01", "demo"},
		{"cloud trace format", "105445aa7843bc8bf206b12000100000/1;o=1", "demo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := parseTraceparent(tt.header, tt.project); ok {
				t.Fatal("expected parse failure")
			}
		})
	}
}

func TestLoggerWithTraceFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	tc, ok := parseTraceparent(sampleTraceparent, "demo")

	loggerWithTrace(zap.New(core), tc, ok, "req-9").Info("hello")

	fields := logs.All()[0].ContextMap()
	if fields["logging.googleapis.com/trace"] != "projects/demo/traces/ab42124a3c573678d4d8b21ba52df3bf" {
		t.Fatalf("missing trace field: %v", fields)
	}
	if fields["logging.googleapis.com/trace_sampled"] != true {
		t.Fatalf("expected sampled trace: %v", fields)
	}
	if fields["requestId"] != "req-9" {
		t.Fatalf("expected requestId: %v", fields)
	}
}

func TestLoggerWithTraceNoFieldsReturnsBase(t *testing.T) {
	base := zap.NewNop()
	if got := loggerWithTrace(base, traceContext{}, false, ""); got != base {
		t.Fatal("expected base logger to be returned unchanged")
	}
	if loggerWithTrace(nil, traceContext{}, false, "") == nil {
		t.Fatal("expected nop logger for nil base")
	}
}
