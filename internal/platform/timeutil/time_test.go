package timeutil

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/fxamacker/cbor/v2"
)

func TestTimeMarshalFixedMillis(t *testing.T) {
	ts := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC))
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-01-15T10:30:00.000Z"` {
		t.Fatalf("unexpected output %s", data)
	}
}

func TestTimeMarshalConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("EET", 2*60*60)
	ts := NewTime(time.Date(2024, 1, 15, 12, 30, 0, 123456789, loc))
	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"2024-01-15T10:30:00.123Z"` {
		t.Fatalf("unexpected output %s", data)
	}
}

func TestTimeUnmarshal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{"millis", `"2024-01-15T10:30:00.000Z"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"seconds", `"2024-01-15T10:30:00Z"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"offset", `"2024-01-15T12:30:00+02:00"`, time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			if err := json.Unmarshal([]byte(tt.input), &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Fatalf("got %v, want %v", got.Time, tt.want)
			}
		})
	}
}

func TestTimeUnmarshalNullPreservesValue(t *testing.T) {
	orig := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	got := NewTime(orig)
	if err := json.Unmarshal([]byte(`null`), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !got.Equal(orig) {
		t.Fatalf("expected value to be preserved, got %v", got.Time)
	}
}

func TestTimeUnmarshalInvalid(t *testing.T) {
	var got Time
	if err := json.Unmarshal([]byte(`"yesterday"`), &got); err == nil {
		t.Fatal("expected error for invalid timestamp")
	}
}

func TestTimeCBORRoundTripUsesString(t *testing.T) {
	ts := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 5_000_000, time.UTC))
	data, err := cbor.Marshal(ts)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var s string
	if err := cbor.Unmarshal(data, &s); err != nil {
		t.Fatalf("expected a CBOR text string: %v", err)
	}
	if s != "2024-01-15T10:30:00.005Z" {
		t.Fatalf("unexpected output %s", s)
	}
	var back Time
	if err := cbor.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Equal(ts.Time) {
		t.Fatalf("expected %v, got %v", ts.Time, back.Time)
	}
}

func TestTimeSchemaIsDateTime(t *testing.T) {
	s := Time{}.Schema(nil)
	if s.Type != huma.TypeString || s.Format != "date-time" {
		t.Fatalf("unexpected schema %+v", s)
	}
}
