package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// SparkTimeFormat is the layout used by the Spark History REST API,
// e.g. 2020-01-15T14:59:33.707GMT.
const SparkTimeFormat = "2006-01-02T15:04:05.000GMT"

// ParseTime parses a timestamp in the Spark History layout or RFC 3339.
// The result is always in UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(s, "GMT") {
		t, err := time.Parse(SparkTimeFormat, s)
		if err != nil {
			return time.Time{}, false
		}
		return t.UTC(), true
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// FormatSparkTime renders t as a Spark History query parameter.
func FormatSparkTime(t time.Time) string {
	return t.UTC().Format(SparkTimeFormat)
}

// Timestamp decodes both Spark History and RFC 3339 timestamps and
// encodes as RFC 3339 with millisecond precision.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t, normalised to UTC.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

// Ptr returns the wrapped time or nil when unset.
func (t Timestamp) Ptr() *time.Time {
	if t.IsZero() {
		return nil
	}
	v := t.Time
	return &v
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	parsed, ok := ParseTime(s)
	if !ok {
		return fmt.Errorf("timestamp: unrecognised value %q", s)
	}
	t.Time = parsed
	return nil
}
