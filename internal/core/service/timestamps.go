package service

import "time"

// stamp normalises a record timestamp to UTC at millisecond precision, the
// finest every durable store keeps (BSON dates are milliseconds, TIMESTAMPTZ
// microseconds), so a reloaded record equals the one held in memory.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}
