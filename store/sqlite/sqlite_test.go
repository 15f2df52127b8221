package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchuche/gestion-conges-sub000/leave"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
	"github.com/mchuche/gestion-conges-sub000/store/sqlite"
)

func testStore(t *testing.T) *sqlite.Store {
	t.Helper()
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestLedger_RoundTrip(t *testing.T) {
	// GIVEN: A fresh store
	st := testStore(t)
	ctx := context.Background()

	// WHEN: Upserting entries and overwriting one
	require.NoError(t, st.UpsertEntries(ctx, "alice", map[string]string{
		"2024-06-10":         "cp",
		"2024-06-11-morning": "rtt",
	}))
	require.NoError(t, st.UpsertEntries(ctx, "alice", map[string]string{
		"2024-06-10": "rtt",
	}))

	// THEN: Last write wins, owners are isolated
	ledger, err := st.LoadLedger(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, leave.Ledger{
		"2024-06-10":         "rtt",
		"2024-06-11-morning": "rtt",
	}, ledger)

	other, err := st.LoadLedger(ctx, "bob")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestLedger_DeleteEntries(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertEntries(ctx, "alice", map[string]string{
		"2024-06-10": "cp",
		"2024-06-11": "cp",
	}))

	// Deleting an absent key is not an error.
	require.NoError(t, st.DeleteEntries(ctx, "alice", []string{"2024-06-10", "2024-06-12"}))

	ledger, err := st.LoadLedger(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, leave.Ledger{"2024-06-11": "cp"}, ledger)
}

func TestLedger_DeleteEntriesByType(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()
	require.NoError(t, st.UpsertEntries(ctx, "alice", map[string]string{
		"2024-06-10":           "cp",
		"2024-06-11-morning":   "cp",
		"2024-06-11-afternoon": "rtt",
	}))

	removed, err := st.DeleteEntriesByType(ctx, "alice", "cp")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	ledger, err := st.LoadLedger(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, leave.Ledger{"2024-06-11-afternoon": "rtt"}, ledger)
}

func TestTypes_RoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	original := leave.LeaveType{
		ID: "cp", Name: "Congés payés", Label: "CP",
		Color: "#4f86f7", Category: leave.CategoryLeave,
	}
	require.NoError(t, st.SaveType(ctx, "alice", original))

	// Saving again with the same id updates in place.
	original.Color = "#000000"
	require.NoError(t, st.SaveType(ctx, "alice", original))

	types, err := st.LoadTypes(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, original, types[0])

	require.NoError(t, st.DeleteType(ctx, "alice", "cp"))
	types, err = st.LoadTypes(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestQuotas_RoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	require.NoError(t, st.SaveQuota(ctx, "alice", leave.QuotaKey{Year: 2024, TypeID: "cp"}, 25))
	require.NoError(t, st.SaveQuota(ctx, "alice", leave.QuotaKey{Year: 2024, TypeID: "cp"}, 27))
	require.NoError(t, st.SaveQuota(ctx, "alice", leave.QuotaKey{Year: 2024, TypeID: "rtt"}, 10))

	table, err := st.LoadQuotas(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, leave.QuotaTable{
		{Year: 2024, TypeID: "cp"}:  27,
		{Year: 2024, TypeID: "rtt"}: 10,
	}, table)

	require.NoError(t, st.DeleteQuotasByType(ctx, "alice", "cp"))
	table, err = st.LoadQuotas(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, leave.QuotaTable{{Year: 2024, TypeID: "rtt"}: 10}, table)
}

func TestRules_RoundTrip(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	end := time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	rule := recurrence.Rule{
		ID:          "r1",
		LeaveTypeID: "cp",
		Period:      leave.PeriodAfternoon,
		Type:        recurrence.TypeWeekly,
		Pattern:     recurrence.Pattern{DaysOfWeek: recurrence.FlexInts{1, 3}},
		StartDate:   time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     &end,
		Active:      true,
	}
	require.NoError(t, st.SaveRule(ctx, "alice", rule))

	loaded, err := st.GetRule(ctx, "alice", "r1")
	require.NoError(t, err)
	assert.Equal(t, rule.LeaveTypeID, loaded.LeaveTypeID)
	assert.Equal(t, rule.Pattern.DaysOfWeek, loaded.Pattern.DaysOfWeek)
	assert.True(t, loaded.StartDate.Equal(rule.StartDate))
	require.NotNil(t, loaded.EndDate)
	assert.True(t, loaded.EndDate.Equal(end))

	rules, err := st.LoadRules(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, rules, 1)
}

func TestRules_NotFound(t *testing.T) {
	st := testStore(t)
	ctx := context.Background()

	_, err := st.GetRule(ctx, "alice", "ghost")
	assert.ErrorIs(t, err, leave.ErrRuleNotFound)
	assert.ErrorIs(t, st.DeleteRule(ctx, "alice", "ghost"), leave.ErrRuleNotFound)
}
