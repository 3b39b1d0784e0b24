package inbox

import (
	"time"
)

const (
	wireLayout      = "2006-01-02 15:04:05"
	wireMicroLayout = "2006-01-02 15:04:05.000000"
)

// FormatTimestamp renders t in UTC as "YYYY-MM-DD HH:MM:SS.ffffff".
// The fraction is left out when t has no microseconds.
func FormatTimestamp(t time.Time) string {
	t = t.UTC()
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(wireLayout)
	}
	return t.Format(wireMicroLayout)
}

// ParseTimestamp accepts RFC 3339 or the layout produced by FormatTimestamp (read as UTC)
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	// fractional seconds are accepted after the seconds field even though the layout omits them
	t, err := time.Parse(wireLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}
