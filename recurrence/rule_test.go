package recurrence_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchuche/gestion-conges-sub000/leave"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
)

// =============================================================================
// VALIDATION
// =============================================================================

func validRule() recurrence.Rule {
	return recurrence.Rule{
		ID:          "r1",
		LeaveTypeID: "cp",
		Period:      leave.PeriodFull,
		Type:        recurrence.TypeWeekly,
		Pattern:     recurrence.Pattern{DaysOfWeek: recurrence.FlexInts{1, 3}},
		StartDate:   day(2024, time.January, 1),
		Active:      true,
	}
}

func TestRuleValidate(t *testing.T) {
	assert.NoError(t, validRule().Validate())

	cases := []struct {
		name   string
		mutate func(*recurrence.Rule)
	}{
		{"missing type id", func(r *recurrence.Rule) { r.LeaveTypeID = "" }},
		{"bad period", func(r *recurrence.Rule) { r.Period = "evening" }},
		{"bad recurrence type", func(r *recurrence.Rule) { r.Type = "hourly" }},
		{"zero start date", func(r *recurrence.Rule) { r.StartDate = time.Time{} }},
		{"end before start", func(r *recurrence.Rule) {
			end := day(2023, time.December, 31)
			r.EndDate = &end
		}},
		{"negative max occurrences", func(r *recurrence.Rule) { r.MaxOccurrences = -1 }},
		{"weekly without daysOfWeek", func(r *recurrence.Rule) { r.Pattern = recurrence.Pattern{} }},
		{"weekday out of range", func(r *recurrence.Rule) {
			r.Pattern = recurrence.Pattern{DaysOfWeek: recurrence.FlexInts{7}}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := validRule()
			tc.mutate(&rule)
			assert.Error(t, rule.Validate())
		})
	}
}

func TestPatternValidate_Monthly(t *testing.T) {
	rule := validRule()
	rule.Type = recurrence.TypeMonthly

	// Both shapes at once is invalid.
	rule.Pattern = recurrence.Pattern{
		DayOfMonth: intPtr(15), DayOfWeek: intPtr(1), WeekOfMonth: intPtr(2),
	}
	assert.Error(t, rule.Validate())

	// dayOfMonth alone is fine.
	rule.Pattern = recurrence.Pattern{DayOfMonth: intPtr(15)}
	assert.NoError(t, rule.Validate())

	// weekOfMonth accepts 1..4 and -1 (last), nothing else.
	rule.Pattern = recurrence.Pattern{DayOfWeek: intPtr(5), WeekOfMonth: intPtr(-1)}
	assert.NoError(t, rule.Validate())
	rule.Pattern = recurrence.Pattern{DayOfWeek: intPtr(5), WeekOfMonth: intPtr(5)}
	assert.Error(t, rule.Validate())
}

// =============================================================================
// JSON ENCODING
// =============================================================================

func TestFlexInts_AcceptsNumbersAndStrings(t *testing.T) {
	var f recurrence.FlexInts
	require.NoError(t, json.Unmarshal([]byte(`[1, "3", 5]`), &f))
	assert.Equal(t, recurrence.FlexInts{1, 3, 5}, f)

	assert.Error(t, json.Unmarshal([]byte(`[1, "x"]`), &f))
	assert.Error(t, json.Unmarshal([]byte(`[true]`), &f))
}

func TestRuleJSON_DatesAsDayStrings(t *testing.T) {
	// GIVEN: A rule with end date and exclusions
	rule := validRule()
	end := day(2024, time.June, 30)
	rule.EndDate = &end
	rule.ExcludedDates = []time.Time{day(2024, time.March, 4)}

	// WHEN: Round-tripping through JSON
	raw, err := json.Marshal(rule)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"startDate":"2024-01-01"`)
	assert.Contains(t, string(raw), `"endDate":"2024-06-30"`)
	assert.Contains(t, string(raw), `"excludedDates":["2024-03-04"]`)

	var back recurrence.Rule
	require.NoError(t, json.Unmarshal(raw, &back))

	// THEN: Dates survive as midnight UTC values
	assert.True(t, back.StartDate.Equal(day(2024, time.January, 1)))
	require.NotNil(t, back.EndDate)
	assert.True(t, back.EndDate.Equal(end))
	require.Len(t, back.ExcludedDates, 1)
}

func TestRuleJSON_RejectsMalformedDate(t *testing.T) {
	var rule recurrence.Rule
	err := json.Unmarshal([]byte(`{"leaveTypeId":"cp","startDate":"01/06/2024"}`), &rule)
	assert.Error(t, err)
}

func TestRuleJSON_StringDaysOfWeek(t *testing.T) {
	// Clients that serialize weekday lists as strings still decode.
	payload := `{
		"leaveTypeId": "cp",
		"period": "afternoon",
		"recurrenceType": "weekly",
		"pattern": {"daysOfWeek": ["1", "3"]},
		"startDate": "2024-01-01",
		"isActive": true
	}`
	var rule recurrence.Rule
	require.NoError(t, json.Unmarshal([]byte(payload), &rule))
	assert.Equal(t, recurrence.FlexInts{1, 3}, rule.Pattern.DaysOfWeek)
	assert.NoError(t, rule.Validate())
}
