package utils

import (
	"fmt"
	"time"
)

const (
	dbDateTimeLayout = "2006-01-02 15:04:05"
	dateOnlyLayout   = "2006-01-02"
)

// NowUTC returns the current time in UTC, truncated to seconds.
// All persisted timestamps use UTC so RFC3339 strings order lexicographically.
func NowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// FormatDBTime formats a time for storage columns.
func FormatDBTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// ParseDBTime parses timestamp strings retrieved from the database.
func ParseDBTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("empty time string")
	}

	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts, nil
	}

	// Legacy rows written before the RFC3339 migration.
	if ts, err := time.ParseInLocation(dbDateTimeLayout, value, time.UTC); err == nil {
		return ts, nil
	}

	if ts, err := time.ParseInLocation(dateOnlyLayout, value, time.UTC); err == nil {
		return ts, nil
	}

	return time.Time{}, fmt.Errorf("unsupported db time format: %s", value)
}

// FormatDateOnly formats a time as YYYY-MM-DD for display.
func FormatDateOnly(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateOnlyLayout)
}
