package calendar_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchuche/gestion-conges-sub000/calendar"
)

// =============================================================================
// CONSTRUCTOR TESTS
// =============================================================================

func TestNewDay_ValidDate(t *testing.T) {
	day, err := calendar.NewDay(2024, time.February, 29)
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", calendar.DayKey(day))
}

func TestNewDay_InvalidDate_Errors(t *testing.T) {
	// GIVEN: February 30 does not exist
	// WHEN: Constructing it
	// THEN: An error is returned instead of a rolled-over date
	_, err := calendar.NewDay(2023, time.February, 30)
	assert.Error(t, err)

	_, err = calendar.NewDay(2023, time.April, 31)
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	day, err := calendar.ParseDay("2024-06-10")
	require.NoError(t, err)
	assert.Equal(t, 2024, day.Year())
	assert.Equal(t, time.June, day.Month())
	assert.Equal(t, 10, day.Day())

	_, err = calendar.ParseDay("not-a-date")
	assert.Error(t, err)

	_, err = calendar.ParseDay("2024-13-01")
	assert.Error(t, err)
}

func TestMidnight_DropsTimeOfDay(t *testing.T) {
	at := time.Date(2024, time.March, 15, 17, 42, 3, 0, time.UTC)
	assert.Equal(t, calendar.MustDay(2024, time.March, 15), calendar.Midnight(at))
}

// =============================================================================
// ARITHMETIC TESTS
// =============================================================================

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 29, calendar.DaysInMonth(2024, time.February)) // leap
	assert.Equal(t, 28, calendar.DaysInMonth(2023, time.February))
	assert.Equal(t, 31, calendar.DaysInMonth(2024, time.January))
	assert.Equal(t, 30, calendar.DaysInMonth(2024, time.April))
	assert.Equal(t, 31, calendar.DaysInMonth(2024, time.December))
}

func TestSameDay(t *testing.T) {
	a := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	b := time.Date(2024, time.March, 15, 23, 59, 0, 0, time.UTC)
	c := time.Date(2024, time.March, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, calendar.SameDay(a, b))
	assert.False(t, calendar.SameDay(a, c))
}

func TestAddHelpers(t *testing.T) {
	day := calendar.MustDay(2024, time.January, 31)

	assert.Equal(t, "2024-02-01", calendar.DayKey(calendar.AddDays(day, 1)))
	assert.Equal(t, "2024-02-14", calendar.DayKey(calendar.AddWeeks(day, 2)))
	assert.Equal(t, "2025-01-31", calendar.DayKey(calendar.AddYears(day, 1)))
}

func TestIsWeekday(t *testing.T) {
	// 2024-01-01 is a Monday
	assert.True(t, calendar.IsWeekday(calendar.MustDay(2024, time.January, 1)))
	// 2024-01-06 is a Saturday
	assert.False(t, calendar.IsWeekday(calendar.MustDay(2024, time.January, 6)))
	// 2024-01-07 is a Sunday
	assert.False(t, calendar.IsWeekday(calendar.MustDay(2024, time.January, 7)))
}

// =============================================================================
// WEEKDAY-OF-MONTH TESTS
// =============================================================================

func TestNthWeekdayOfMonth(t *testing.T) {
	// GIVEN: January 2024 (first Monday is Jan 1)
	first := calendar.NthWeekdayOfMonth(2024, time.January, time.Monday, 1)
	assert.Equal(t, "2024-01-01", calendar.DayKey(first))

	third := calendar.NthWeekdayOfMonth(2024, time.January, time.Monday, 3)
	assert.Equal(t, "2024-01-15", calendar.DayKey(third))

	// Fifth Monday exists in January 2024 (Jan 29)
	fifth := calendar.NthWeekdayOfMonth(2024, time.January, time.Monday, 5)
	assert.Equal(t, "2024-01-29", calendar.DayKey(fifth))

	// But not a sixth
	assert.True(t, calendar.NthWeekdayOfMonth(2024, time.January, time.Monday, 6).IsZero())

	// February 2024 has no fifth Friday
	assert.True(t, calendar.NthWeekdayOfMonth(2024, time.February, time.Friday, 5).IsZero())
}

func TestLastWeekdayOfMonth(t *testing.T) {
	last := calendar.LastWeekdayOfMonth(2024, time.January, time.Wednesday)
	assert.Equal(t, "2024-01-31", calendar.DayKey(last))

	last = calendar.LastWeekdayOfMonth(2024, time.February, time.Thursday)
	assert.Equal(t, "2024-02-29", calendar.DayKey(last))
}
