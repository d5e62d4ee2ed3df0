// utils/dates.go
package utils

import "time"

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// ReminderWindow computes the eligibility window around now + lookahead.
// The half-width tolerates scheduler-tick jitter; it is not exact-instant
// matching.
func ReminderWindow(now time.Time, lookaheadHours int, halfWidth time.Duration) (time.Time, time.Time) {
	target := now.Add(time.Duration(lookaheadHours) * time.Hour)
	return target.Add(-halfWidth), target.Add(halfWidth)
}

// FormatInZone renders t in the named timezone using a friendly layout,
// e.g. "Monday, Jan 2 at 3:04 PM". Unknown timezones fall back to UTC.
func FormatInZone(t time.Time, timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}
	return t.In(loc).Format("Monday, Jan 2 at 3:04 PM")
}
