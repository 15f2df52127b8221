/*
Package leave implements the half-day leave ledger and the leave-type and
quota registry.

PURPOSE:
  The ledger is a flat mapping from encoded date keys to leave-type ids.
  A calendar day is represented either by one full-day key (YYYY-MM-DD) or
  by up to two half-day keys (YYYY-MM-DD-morning / YYYY-MM-DD-afternoon).
  The mutual-exclusion invariant between the two representations is
  enforced by every mutation in ledger.go.

KEY CONCEPTS IN THIS FILE (datekey.go):
  - Period: full / morning / afternoon
  - Key: encodes (day, period) into the ledger key
  - ParseKey: decodes a ledger key back into (day, period)

SEE ALSO:
  - ledger.go: Ledger operations built on these keys
  - registry.go: Leave types and quotas
*/
package leave

import (
	"fmt"
	"strings"
	"time"

	"github.com/mchuche/gestion-conges-sub000/calendar"
)

// =============================================================================
// PERIOD - Which part of the day an absence covers
// =============================================================================

type Period string

const (
	PeriodFull      Period = "full"
	PeriodMorning   Period = "morning"
	PeriodAfternoon Period = "afternoon"
)

// Valid reports whether p is one of the three known periods.
func (p Period) Valid() bool {
	return p == PeriodFull || p == PeriodMorning || p == PeriodAfternoon
}

// IsHalf reports whether p covers half a day.
func (p Period) IsHalf() bool {
	return p == PeriodMorning || p == PeriodAfternoon
}

const (
	suffixMorning   = "-morning"
	suffixAfternoon = "-afternoon"
)

// =============================================================================
// KEY ENCODING
// =============================================================================

// Key encodes a (day, period) pair into its ledger key.
// Full days use the bare day key; half days append the period suffix.
func Key(day time.Time, p Period) string {
	base := calendar.DayKey(day)
	switch p {
	case PeriodMorning:
		return base + suffixMorning
	case PeriodAfternoon:
		return base + suffixAfternoon
	default:
		return base
	}
}

// BaseDay strips any half-day suffix from a ledger key, returning the
// calendar-day portion.
func BaseDay(key string) string {
	if s, ok := strings.CutSuffix(key, suffixMorning); ok {
		return s
	}
	if s, ok := strings.CutSuffix(key, suffixAfternoon); ok {
		return s
	}
	return key
}

// ParseKey decodes a ledger key into its day and period.
func ParseKey(key string) (time.Time, Period, error) {
	period := PeriodFull
	base := key
	if s, ok := strings.CutSuffix(key, suffixMorning); ok {
		base, period = s, PeriodMorning
	} else if s, ok := strings.CutSuffix(key, suffixAfternoon); ok {
		base, period = s, PeriodAfternoon
	}

	day, err := calendar.ParseDay(base)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return day, period, nil
}

// KeyYear extracts the year from a ledger key without a full parse.
// Returns 0 for malformed keys.
func KeyYear(key string) int {
	day, _, err := ParseKey(key)
	if err != nil {
		return 0
	}
	return day.Year()
}
