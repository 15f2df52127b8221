/*
Package calendar provides the pure date primitives for the leave system.

PURPOSE:
  Everything in this package is a total, side-effect-free function over
  naive calendar dates. The rest of the system (ledger keys, recurrence
  matching, quota year filtering) is built on these primitives, so they
  deliberately have no dependencies and no clock access.

KEY CONCEPTS IN THIS FILE (calendar.go):
  - Day: a calendar date normalized to midnight UTC
  - DayKey: the canonical YYYY-MM-DD string for a day
  - Nth/last weekday-of-month lookup (used by monthly recurrence)

DESIGN PRINCIPLES:
  1. No timezones: the system operates on naive local calendar dates,
     represented as midnight UTC to make comparison exact.
  2. Invalid input is a constructor error, never a silent fallback:
     NewDay and ParseDay report errors instead of substituting "now".

SEE ALSO:
  - holidays.go: Per-country public holiday computation
  - leave/datekey.go: Half-day ledger key encoding on top of DayKey
*/
package calendar

import (
	"fmt"
	"time"
)

// DayKeyLayout is the canonical format for a calendar-day key.
const DayKeyLayout = "2006-01-02"

// =============================================================================
// CONSTRUCTORS
// =============================================================================

// NewDay builds a normalized day from its components. Out-of-range
// components (e.g. February 30) are an error, not a rolled-over date.
func NewDay(year int, month time.Month, day int) (time.Time, error) {
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("invalid calendar day %04d-%02d-%02d", year, int(month), day)
	}
	return t, nil
}

// MustDay is NewDay for literals known to be valid (tests, tables).
// Panics on invalid input.
func MustDay(year int, month time.Month, day int) time.Time {
	t, err := NewDay(year, month, day)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseDay parses a YYYY-MM-DD string into a normalized day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DayKeyLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return t, nil
}

// Midnight normalizes an arbitrary time to its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// =============================================================================
// FORMATTING
// =============================================================================

// DayKey returns the canonical YYYY-MM-DD key for a day.
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// =============================================================================
// COMPARISON AND ARITHMETIC
// =============================================================================

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func AddDays(t time.Time, n int) time.Time   { return Midnight(t).AddDate(0, 0, n) }
func AddWeeks(t time.Time, n int) time.Time  { return Midnight(t).AddDate(0, 0, 7*n) }
func AddMonths(t time.Time, n int) time.Time { return Midnight(t).AddDate(0, n, 0) }
func AddYears(t time.Time, n int) time.Time  { return Midnight(t).AddDate(n, 0, 0) }

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func StartOfYear(year int) time.Time { return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC) }
func EndOfYear(year int) time.Time   { return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC) }

// IsWeekday reports whether the day is Monday through Friday.
func IsWeekday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// Earlier and Later pick the min/max of two days.
func Earlier(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func Later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

// =============================================================================
// WEEKDAY-OF-MONTH LOOKUP
// =============================================================================

// NthWeekdayOfMonth returns the date of the nth (1-based) occurrence of the
// given weekday within a month, or the zero time if the month has no such
// occurrence (e.g. a fifth Monday in a four-Monday month).
func NthWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, n int) time.Time {
	if n < 1 {
		return time.Time{}
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := (int(weekday) - int(first.Weekday()) + 7) % 7
	day := 1 + offset + (n-1)*7
	if day > DaysInMonth(year, month) {
		return time.Time{}
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// LastWeekdayOfMonth returns the date of the last occurrence of the given
// weekday within a month.
func LastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday) time.Time {
	last := time.Date(year, month, DaysInMonth(year, month), 0, 0, 0, 0, time.UTC)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}
