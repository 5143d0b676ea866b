package timex

import "time"

// Clock returns the current time. Components take a Clock instead of calling
// time.Now directly so tests can pin the wall clock.
type Clock func() time.Time

// SystemClock is the real wall clock.
func SystemClock() time.Time { return time.Now() }

// Fixed returns a Clock that always reports t.
func Fixed(t time.Time) Clock {
	return func() time.Time { return t }
}

// Or returns c, or SystemClock when c is nil.
func (c Clock) Or() Clock {
	if c == nil {
		return SystemClock
	}
	return c
}

// EpochMillis converts t to milliseconds since the Unix epoch.
func EpochMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// FromEpochMillis converts milliseconds since the Unix epoch to a UTC time.
func FromEpochMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

// StartOfDay strips the time of day, keeping t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
