package ledger

import "time"

// Calendar helpers shared by the checkpoint calculator, the forecast
// engine and the report aggregator. All boundaries are midnight UTC.

// StartOfMonth returns the first day of t's month.
func StartOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// EndOfMonth returns the last day of t's month.
func EndOfMonth(t time.Time) time.Time {
	return StartOfMonth(t).AddDate(0, 1, -1)
}

// PreviousMonthRange returns the first and last day of the calendar
// month immediately before t's month.
func PreviousMonthRange(t time.Time) (time.Time, time.Time) {
	start := StartOfMonth(t).AddDate(0, -1, 0)
	return start, start.AddDate(0, 1, -1)
}

// DateOf truncates t to midnight UTC. Ledger dates are calendar dates.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SameMonth reports whether a and b fall in the same calendar month.
func SameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
