package engine

import "time"

// DateOnly truncates a timestamp to its calendar day in UTC.
func DateOnly(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from one date to
// another. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	if from.IsZero() || to.IsZero() {
		return 0
	}
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}

// AddDays shifts a date by n calendar days. The arithmetic runs on UTC
// midnights, so daylight-saving transitions cannot skew the result.
func AddDays(t time.Time, n int) time.Time {
	if t.IsZero() {
		return t
	}
	return DateOnly(t).AddDate(0, 0, n)
}
