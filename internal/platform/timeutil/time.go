package timeutil

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
)

// RFC3339Millis is the API timestamp layout: UTC with fixed millisecond precision.
const RFC3339Millis = "2006-01-02T15:04:05.000Z"

// RFC3339Micros is the log timestamp layout: UTC with fixed microsecond precision.
const RFC3339Micros = "2006-01-02T15:04:05.000000Z"

// Time wraps time.Time so JSON output is always "2024-01-15T10:30:00.000Z".
// Unmarshaling JSON null leaves the value untouched, like time.Time.
type Time struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(RFC3339Millis) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler and accepts any RFC 3339 variant.
func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalCBOR encodes the same string as MarshalJSON.
func (t Time) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(t.UTC().Format(RFC3339Millis))
}

// UnmarshalCBOR accepts a CBOR text string in any RFC 3339 variant.
func (t *Time) UnmarshalCBOR(data []byte) error {
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// Schema describes Time as an OpenAPI date-time string.
func (Time) Schema(huma.Registry) *huma.Schema {
	return &huma.Schema{Type: huma.TypeString, Format: "date-time", Examples: []any{"2024-01-15T10:30:00.000Z"}}
}

// NewTime wraps t. Zero times stay zero.
func NewTime(t time.Time) Time {
	return Time{Time: t}
}
