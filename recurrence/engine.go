/*
engine.go - Occurrence generator

PURPOSE:
  Expands a Rule into concrete occurrences within a generation window,
  skipping excluded dates and public holidays.

TERMINATION:
  Three independent bounds guarantee the loop ends:
  1. cursor <= limit (window / rule end date)
  2. occurrence count < maxOccurrences (when configured)
  3. a hard cap of 10000 iterations for malformed patterns
  The cap is a safety valve. Hitting it returns the partial list with
  Truncated set so callers can surface the anomaly; it is never silent.

FAILURE SEMANTICS:
  An invalid pattern yields zero occurrences and a logged warning, never a
  panic or an error return. The caller surfaces a user-visible warning.

SEE ALSO:
  - rule.go: Rule model and pattern checks
  - calendar/holidays.go: Holiday maps consulted per cursor day
*/
package recurrence

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mchuche/gestion-conges-sub000/calendar"
	"github.com/mchuche/gestion-conges-sub000/leave"
)

// MaxIterations is the hard safety cap on generator loop steps.
const MaxIterations = 10000

// =============================================================================
// OCCURRENCE - Ephemeral generator output
// =============================================================================

// Occurrence is one concrete instance of a rule, prior to being written
// into the ledger.
type Occurrence struct {
	Date        time.Time
	Period      leave.Period
	LeaveTypeID string
}

// Key returns the ledger key this occurrence writes to.
func (o Occurrence) Key() string {
	return leave.Key(o.Date, o.Period)
}

// Result is the outcome of one generation run.
type Result struct {
	Occurrences []Occurrence

	// Truncated is set when the iteration cap stopped the run early.
	// The occurrence list is then a partial result.
	Truncated bool
}

// =============================================================================
// GENERATOR
// =============================================================================

// Generator expands rules into occurrences.
type Generator struct {
	Log logrus.FieldLogger
}

func NewGenerator(log logrus.FieldLogger) *Generator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Generator{Log: log}
}

// GenerateForCountry expands the rule over [windowStart, windowEnd],
// skipping the country's public holidays for every year the window spans.
func (g *Generator) GenerateForCountry(rule Rule, windowStart, windowEnd time.Time, country string) Result {
	holidays := calendar.PublicHolidaysRange(country, calendar.Midnight(windowStart), calendar.Midnight(windowEnd))
	return g.Generate(rule, windowStart, windowEnd, holidays)
}

// Generate expands the rule over [windowStart, windowEnd] against an
// explicit holiday map (DayKey -> name; nil means no holidays). Inactive
// rules and malformed patterns yield an empty result.
func (g *Generator) Generate(rule Rule, windowStart, windowEnd time.Time, holidays map[string]string) Result {
	if !rule.Active {
		return Result{}
	}
	if err := rule.Pattern.check(rule.Type); err != nil {
		g.Log.WithFields(logrus.Fields{
			"rule": rule.ID,
			"type": rule.Type,
		}).WithError(err).Warn("recurrence pattern is malformed, generating nothing")
		return Result{}
	}

	windowStart = calendar.Midnight(windowStart)
	windowEnd = calendar.Midnight(windowEnd)

	cursor := calendar.Later(calendar.Midnight(rule.StartDate), windowStart)

	// Rules without an end date run until the end of next year at most.
	limit := calendar.EndOfYear(windowStart.Year() + 1)
	if rule.EndDate != nil {
		limit = calendar.Midnight(*rule.EndDate)
	}
	limit = calendar.Earlier(limit, windowEnd)

	var occurrences []Occurrence
	truncated := false

	for iterations := 0; !cursor.After(limit); iterations++ {
		if rule.MaxOccurrences > 0 && len(occurrences) >= rule.MaxOccurrences {
			break
		}
		if iterations >= MaxIterations {
			truncated = true
			g.Log.WithFields(logrus.Fields{
				"rule":        rule.ID,
				"occurrences": len(occurrences),
			}).Warn("recurrence generation hit the iteration cap, result truncated")
			break
		}

		if matchesPattern(cursor, rule) && !isExcluded(cursor, rule.ExcludedDates) {
			if _, holiday := holidays[calendar.DayKey(cursor)]; !holiday {
				occurrences = append(occurrences, Occurrence{
					Date:        cursor,
					Period:      rule.Period,
					LeaveTypeID: rule.LeaveTypeID,
				})
			}
		}

		next := advance(cursor, rule)
		if !next.After(cursor) {
			// Defensive: a zero or backward step would loop forever.
			next = calendar.AddDays(cursor, 1)
		}
		cursor = next
	}

	return Result{Occurrences: occurrences, Truncated: truncated}
}

// =============================================================================
// PATTERN MATCHING
// =============================================================================

func matchesPattern(day time.Time, rule Rule) bool {
	p := rule.Pattern
	switch rule.Type {
	case TypeDaily:
		if p.WeekdaysOnly {
			return calendar.IsWeekday(day)
		}
		return true

	case TypeWeekly:
		wd := int(day.Weekday()) // 0=Sunday..6=Saturday
		for _, d := range p.DaysOfWeek {
			if d == wd {
				return true
			}
		}
		return false

	case TypeMonthly:
		if p.DayOfMonth != nil {
			return day.Day() == *p.DayOfMonth
		}
		if p.DayOfWeek == nil || p.WeekOfMonth == nil {
			return false
		}
		weekday := time.Weekday(*p.DayOfWeek)
		var target time.Time
		if *p.WeekOfMonth == -1 {
			target = calendar.LastWeekdayOfMonth(day.Year(), day.Month(), weekday)
		} else {
			target = calendar.NthWeekdayOfMonth(day.Year(), day.Month(), weekday, *p.WeekOfMonth)
		}
		return !target.IsZero() && calendar.SameDay(day, target)

	case TypeYearly:
		if p.Month == nil || p.Day == nil {
			return false
		}
		// month arrives 0-based
		return int(day.Month())-1 == *p.Month && day.Day() == *p.Day

	default:
		return false
	}
}

func isExcluded(day time.Time, excluded []time.Time) bool {
	for _, e := range excluded {
		if calendar.SameDay(day, e) {
			return true
		}
	}
	return false
}

// =============================================================================
// CURSOR ADVANCE
// =============================================================================

// advance steps the cursor. Weekly rules always step one day, since a
// weekly pattern may select several weekdays within the same week. All
// other types step by their native unit scaled by the pattern interval.
func advance(cursor time.Time, rule Rule) time.Time {
	interval := rule.Pattern.Interval
	if interval < 1 {
		interval = 1
	}
	switch rule.Type {
	case TypeWeekly:
		return calendar.AddDays(cursor, 1)
	case TypeDaily:
		return calendar.AddDays(cursor, interval)
	case TypeMonthly:
		return calendar.AddMonths(cursor, interval)
	case TypeYearly:
		return calendar.AddYears(cursor, interval)
	default:
		return calendar.AddDays(cursor, 1)
	}
}
