/*
Package recurrence expands recurrence rules into concrete leave occurrences.

PURPOSE:
  A rule like "every Monday and Wednesday afternoon until year end" is
  stored once and expanded on demand into (date, period, leaveTypeID)
  occurrences, which the caller writes into the leave ledger as a bulk
  upsert. Occurrences are ephemeral generator output, never persisted.

KEY CONCEPTS IN THIS FILE (rule.go):
  - Rule: the stored recurrence definition
  - Pattern: discriminated per recurrence type (daily/weekly/monthly/yearly)
  - FlexInts: tolerant JSON decoding for daysOfWeek (numbers or strings)

VALIDATION:
  Rule.Validate (ozzo-validation) guards rule creation at the API boundary.
  The generator itself treats a malformed pattern as "matches nothing" and
  logs a warning instead of failing (see engine.go).

SEE ALSO:
  - engine.go: The occurrence generator
  - leave/ledger.go: Where occurrences end up
*/
package recurrence

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/mchuche/gestion-conges-sub000/calendar"
	"github.com/mchuche/gestion-conges-sub000/leave"
)

// =============================================================================
// RECURRENCE TYPE
// =============================================================================

type Type string

const (
	TypeDaily   Type = "daily"
	TypeWeekly  Type = "weekly"
	TypeMonthly Type = "monthly"
	TypeYearly  Type = "yearly"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDaily, TypeWeekly, TypeMonthly, TypeYearly:
		return true
	}
	return false
}

// =============================================================================
// FLEXIBLE INT LIST - daysOfWeek arrives as numbers or strings
// =============================================================================

// FlexInts is an int slice that also accepts string-typed JSON elements
// ("1" as well as 1), normalizing them to integers on decode.
type FlexInts []int

func (f *FlexInts) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]int, 0, len(raw))
	for _, el := range raw {
		var n int
		if err := json.Unmarshal(el, &n); err == nil {
			out = append(out, n)
			continue
		}
		var s string
		if err := json.Unmarshal(el, &s); err != nil {
			return fmt.Errorf("daysOfWeek element %s is neither number nor string", el)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("daysOfWeek element %q is not an integer", s)
		}
		out = append(out, n)
	}
	*f = out
	return nil
}

// =============================================================================
// PATTERN - Discriminated by recurrence type
// =============================================================================

// Pattern carries the union of all per-type pattern fields. Which fields
// are meaningful depends on the rule's Type:
//
//	daily:   WeekdaysOnly, Interval
//	weekly:  DaysOfWeek (0=Sunday..6=Saturday), Interval
//	monthly: DayOfMonth  OR  DayOfWeek + WeekOfMonth (1..4, -1=last)
//	yearly:  Month (0..11), Day
type Pattern struct {
	WeekdaysOnly bool     `json:"weekdaysOnly,omitempty"`
	Interval     int      `json:"interval,omitempty"`
	DaysOfWeek   FlexInts `json:"daysOfWeek,omitempty"`
	DayOfMonth   *int     `json:"dayOfMonth,omitempty"`
	DayOfWeek    *int     `json:"dayOfWeek,omitempty"`
	WeekOfMonth  *int     `json:"weekOfMonth,omitempty"`
	Month        *int     `json:"month,omitempty"`
	Day          *int     `json:"day,omitempty"`
}

// =============================================================================
// RULE
// =============================================================================

// Rule is one stored recurrence definition.
type Rule struct {
	ID             string       `json:"id"`
	LeaveTypeID    string       `json:"leaveTypeId"`
	Period         leave.Period `json:"period"`
	Type           Type         `json:"recurrenceType"`
	Pattern        Pattern      `json:"pattern"`
	StartDate      time.Time    `json:"-"`
	EndDate        *time.Time   `json:"-"`
	MaxOccurrences int          `json:"maxOccurrences,omitempty"` // 0 = unlimited
	ExcludedDates  []time.Time  `json:"-"`
	Active         bool         `json:"isActive"`
}

// Validate checks the rule at the API boundary. The generator is more
// lenient (malformed pattern = zero occurrences).
func (r Rule) Validate() error {
	return validation.Errors{
		"leaveTypeId":    validation.Validate(r.LeaveTypeID, validation.Required),
		"period":         checkPeriod(r.Period),
		"recurrenceType": checkType(r.Type),
		"startDate":      checkStartDate(r.StartDate),
		"endDate":        checkEndDate(r.StartDate, r.EndDate),
		"maxOccurrences": validation.Validate(r.MaxOccurrences, validation.Min(0)),
		"pattern":        r.Pattern.check(r.Type),
	}.Filter()
}

func checkPeriod(p leave.Period) error {
	if !p.Valid() {
		return leave.ErrInvalidPeriod
	}
	return nil
}

func checkType(t Type) error {
	if !t.Valid() {
		return fmt.Errorf("unknown recurrence type %q", t)
	}
	return nil
}

func checkStartDate(start time.Time) error {
	if start.IsZero() {
		return fmt.Errorf("start date is required")
	}
	return nil
}

func checkEndDate(start time.Time, end *time.Time) error {
	if end != nil && end.Before(start) {
		return fmt.Errorf("end date before start date")
	}
	return nil
}

// check validates the pattern fields required by the recurrence type.
// The same checks back errPattern in the engine.
func (p Pattern) check(t Type) error {
	switch t {
	case TypeDaily:
		if p.Interval < 0 {
			return fmt.Errorf("daily interval must be >= 0")
		}
		return nil

	case TypeWeekly:
		if len(p.DaysOfWeek) == 0 {
			return fmt.Errorf("weekly pattern requires a non-empty daysOfWeek")
		}
		for _, d := range p.DaysOfWeek {
			if d < 0 || d > 6 {
				return fmt.Errorf("daysOfWeek entry %d out of range 0..6", d)
			}
		}
		return nil

	case TypeMonthly:
		byDay := p.DayOfMonth != nil
		byWeek := p.DayOfWeek != nil || p.WeekOfMonth != nil
		if byDay == byWeek {
			return fmt.Errorf("monthly pattern requires exactly one of dayOfMonth or dayOfWeek+weekOfMonth")
		}
		if byDay {
			if *p.DayOfMonth < 1 || *p.DayOfMonth > 31 {
				return fmt.Errorf("dayOfMonth %d out of range 1..31", *p.DayOfMonth)
			}
			return nil
		}
		if p.DayOfWeek == nil || p.WeekOfMonth == nil {
			return fmt.Errorf("monthly pattern requires both dayOfWeek and weekOfMonth")
		}
		if *p.DayOfWeek < 0 || *p.DayOfWeek > 6 {
			return fmt.Errorf("dayOfWeek %d out of range 0..6", *p.DayOfWeek)
		}
		if w := *p.WeekOfMonth; w != -1 && (w < 1 || w > 4) {
			return fmt.Errorf("weekOfMonth %d must be 1..4 or -1", w)
		}
		return nil

	case TypeYearly:
		if p.Month == nil || p.Day == nil {
			return fmt.Errorf("yearly pattern requires month and day")
		}
		if *p.Month < 0 || *p.Month > 11 {
			return fmt.Errorf("month %d out of range 0..11", *p.Month)
		}
		if *p.Day < 1 || *p.Day > 31 {
			return fmt.Errorf("day %d out of range 1..31", *p.Day)
		}
		return nil

	default:
		return fmt.Errorf("unknown recurrence type %q", t)
	}
}

// =============================================================================
// JSON ENCODING - Dates travel as YYYY-MM-DD strings
// =============================================================================

type ruleJSON struct {
	ID             string       `json:"id"`
	LeaveTypeID    string       `json:"leaveTypeId"`
	Period         leave.Period `json:"period"`
	Type           Type         `json:"recurrenceType"`
	Pattern        Pattern      `json:"pattern"`
	StartDate      string       `json:"startDate"`
	EndDate        *string      `json:"endDate,omitempty"`
	MaxOccurrences int          `json:"maxOccurrences,omitempty"`
	ExcludedDates  []string     `json:"excludedDates,omitempty"`
	Active         bool         `json:"isActive"`
}

func (r Rule) MarshalJSON() ([]byte, error) {
	out := ruleJSON{
		ID:             r.ID,
		LeaveTypeID:    r.LeaveTypeID,
		Period:         r.Period,
		Type:           r.Type,
		Pattern:        r.Pattern,
		StartDate:      calendar.DayKey(r.StartDate),
		MaxOccurrences: r.MaxOccurrences,
		Active:         r.Active,
	}
	if r.EndDate != nil {
		s := calendar.DayKey(*r.EndDate)
		out.EndDate = &s
	}
	for _, d := range r.ExcludedDates {
		out.ExcludedDates = append(out.ExcludedDates, calendar.DayKey(d))
	}
	return json.Marshal(out)
}

func (r *Rule) UnmarshalJSON(data []byte) error {
	var in ruleJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	start, err := calendar.ParseDay(in.StartDate)
	if err != nil {
		return err
	}
	var end *time.Time
	if in.EndDate != nil {
		e, err := calendar.ParseDay(*in.EndDate)
		if err != nil {
			return err
		}
		end = &e
	}
	var excluded []time.Time
	for _, s := range in.ExcludedDates {
		d, err := calendar.ParseDay(s)
		if err != nil {
			return err
		}
		excluded = append(excluded, d)
	}
	*r = Rule{
		ID:             in.ID,
		LeaveTypeID:    in.LeaveTypeID,
		Period:         in.Period,
		Type:           in.Type,
		Pattern:        in.Pattern,
		StartDate:      start,
		EndDate:        end,
		MaxOccurrences: in.MaxOccurrences,
		ExcludedDates:  excluded,
		Active:         in.Active,
	}
	return nil
}

// =============================================================================
// RULE STORE - Persistence collaborator for rules
// =============================================================================

// RuleStore persists per-owner recurrence rules keyed by rule id.
type RuleStore interface {
	LoadRules(ctx context.Context, owner string) ([]Rule, error)
	GetRule(ctx context.Context, owner string, id string) (Rule, error)
	SaveRule(ctx context.Context, owner string, rule Rule) error
	DeleteRule(ctx context.Context, owner string, id string) error
}
