package domain

import "time"

// TimestampLayout is the UTC, millisecond-precision form stored in
// created_at and updated_at. Values sort lexicographically by time.
const TimestampLayout = "2006-01-02T15:04:05.000Z"

func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
