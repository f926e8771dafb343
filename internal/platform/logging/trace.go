package logging

import (
	"fmt"
	"os"
	"regexp"
	"sync"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// W3C trace context: {version}-{trace-id}-{parent-id}-{flags}
var traceparentRe = regexp.MustCompile(`^[0-9a-fA-F]{2}-([0-9a-fA-F]{32})-([0-9a-fA-F]{16})-([0-9a-fA-F]{2})$`)

var (
	projectIDOnce   sync.Once
	cachedProjectID string
)

type traceContext struct {
	resource string
	spanID   string
	sampled  bool
}

// parseTraceparent returns the Cloud Trace view of header, or false when
// the header is malformed or no project is known.
func parseTraceparent(header, projectID string) (traceContext, bool) {
	if projectID == "" {
		return traceContext{}, false
	}
	m := traceparentRe.FindStringSubmatch(header)
	if m == nil {
		return traceContext{}, false
	}
	return traceContext{
		resource: fmt.Sprintf("projects/%s/traces/%s", projectID, m[1]),
		spanID:   m[2],
		sampled:  m[3] == "01",
	}, true
}

func loggerWithTrace(base *zap.Logger, tc traceContext, ok bool, requestID string) *zap.Logger {
	if base == nil {
		base = zap.NewNop()
	}
	var fields []zap.Field
	if ok {
		fields = append(fields,
			zap.String("logging.googleapis.com/trace", tc.resource),
			zap.String("logging.googleapis.com/spanId", tc.spanID),
			zap.Bool("logging.googleapis.com/trace_sampled", tc.sampled),
		)
	}
	if requestID != "" {
		fields = append(fields, zap.String("requestId", requestID))
	}
	if len(fields) == 0 {
		return base
	}
	return base.With(fields...)
}

func resolveProjectID() string {
	projectIDOnce.Do(func() {
		for _, key := range []string{"FIREBASE_PROJECT_ID", "GOOGLE_CLOUD_PROJECT", "GCP_PROJECT", "GCLOUD_PROJECT"} {
			if v := os.Getenv(key); v != "" {
				cachedProjectID = v
				return
			}
		}
	})
	return cachedProjectID
}
