/*
handlers_test.go - Service and router tests

Tests for:
- Default type bootstrap on first load
- Ledger mutation invariants through the service
- Type deletion cascade
- Rule apply end-to-end against the memory store
- Router wiring (status codes and JSON shapes)
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mchuche/gestion-conges-sub000/leave"
	"github.com/mchuche/gestion-conges-sub000/leave/store"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func testService() *LeaveService {
	mem := store.NewMemory()
	svc := NewLeaveService(mem, mem, quietLogger())
	svc.Clock = func() time.Time { return day(2024, time.June, 15) }
	return svc
}

// saveType stores a valid leave type through the service.
func saveType(t *testing.T, svc *LeaveService, owner, id, name string) leave.LeaveType {
	t.Helper()
	saved, err := svc.UpsertType(context.Background(), owner, leave.LeaveType{
		ID:       id,
		Name:     name,
		Label:    "LT",
		Color:    "#4f86f7",
		Category: leave.CategoryLeave,
	})
	require.NoError(t, err)
	return saved
}

// =============================================================================
// REGISTRY BOOTSTRAP
// =============================================================================

func TestRegistry_FirstLoadInsertsDefaultType(t *testing.T) {
	// GIVEN: A fresh store with no types
	svc := testService()
	ctx := context.Background()

	// WHEN: Loading the registry twice
	registry, err := svc.Registry(ctx, "alice")
	require.NoError(t, err)
	again, err := svc.Registry(ctx, "alice")
	require.NoError(t, err)

	// THEN: Both see exactly the default type, and it was persisted
	require.Len(t, registry.Types(), 1)
	require.Len(t, again.Types(), 1)
	assert.Equal(t, leave.DefaultType().ID, again.Types()[0].ID)
}

// =============================================================================
// LEDGER MUTATIONS
// =============================================================================

func TestSetEntry_FullReplacesHalves(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	saveType(t, svc, "alice", "cp", "Congés")

	d := day(2024, time.June, 10)
	require.NoError(t, svc.SetEntry(ctx, "alice", d, leave.PeriodMorning, "cp"))
	require.NoError(t, svc.SetEntry(ctx, "alice", d, leave.PeriodFull, "cp"))

	ledger, err := svc.Ledger(ctx, "alice")
	require.NoError(t, err)
	entry := ledger.Entry(d)
	assert.Equal(t, "cp", entry.Full)
	assert.Empty(t, entry.Morning)
	assert.Empty(t, entry.Afternoon)
}

func TestSetEntry_HalfReplacesFull(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	saveType(t, svc, "alice", "cp", "Congés")

	d := day(2024, time.June, 10)
	require.NoError(t, svc.SetEntry(ctx, "alice", d, leave.PeriodFull, "cp"))
	require.NoError(t, svc.SetEntry(ctx, "alice", d, leave.PeriodAfternoon, "cp"))

	ledger, err := svc.Ledger(ctx, "alice")
	require.NoError(t, err)
	entry := ledger.Entry(d)
	assert.Empty(t, entry.Full)
	assert.Equal(t, "cp", entry.Afternoon)
}

func TestSetEntry_UnknownType(t *testing.T) {
	svc := testService()
	err := svc.SetEntry(context.Background(), "alice", day(2024, time.June, 10), leave.PeriodFull, "ghost")
	assert.True(t, leave.IsNotFound(err))
}

func TestSetEntry_InvalidPeriod(t *testing.T) {
	svc := testService()
	err := svc.SetEntry(context.Background(), "alice", day(2024, time.June, 10), "evening", "cp")
	assert.ErrorIs(t, err, leave.ErrInvalidPeriod)
}

func TestRemoveEntry_FullClearsWholeDay(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	saveType(t, svc, "alice", "cp", "Congés")

	d := day(2024, time.June, 10)
	require.NoError(t, svc.SetEntry(ctx, "alice", d, leave.PeriodMorning, "cp"))
	require.NoError(t, svc.SetEntry(ctx, "alice", d, leave.PeriodAfternoon, "cp"))
	require.NoError(t, svc.RemoveEntry(ctx, "alice", d, leave.PeriodFull))

	ledger, err := svc.Ledger(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ledger.Entry(d).IsEmpty())
}

// =============================================================================
// TYPE AND QUOTA MUTATIONS
// =============================================================================

func TestDeleteType_CascadesAndReinsertsDefault(t *testing.T) {
	// GIVEN: The default type with entries and a quota
	svc := testService()
	ctx := context.Background()
	def := leave.DefaultType()
	_, err := svc.Registry(ctx, "alice")
	require.NoError(t, err)
	require.NoError(t, svc.SetEntry(ctx, "alice", day(2024, time.June, 10), leave.PeriodFull, def.ID))
	require.NoError(t, svc.SetEntry(ctx, "alice", day(2024, time.June, 11), leave.PeriodMorning, def.ID))
	require.NoError(t, svc.SetQuota(ctx, "alice", 2024, def.ID, 10))

	// WHEN: Deleting the only type
	removed, err := svc.DeleteType(ctx, "alice", def.ID)
	require.NoError(t, err)

	// THEN: Entries are gone, quotas cascade, and the default comes back
	assert.Equal(t, 2, removed)
	ledger, err := svc.Ledger(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ledger)

	registry, err := svc.Registry(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, registry.Types(), 1)
	assert.Equal(t, def.ID, registry.Types()[0].ID)
	_, ok := registry.Quota(2024, def.ID)
	assert.False(t, ok)
}

func TestDeleteType_Unknown(t *testing.T) {
	svc := testService()
	_, err := svc.DeleteType(context.Background(), "alice", "ghost")
	assert.True(t, leave.IsNotFound(err))
}

func TestSetQuota_RejectsNegative(t *testing.T) {
	svc := testService()
	err := svc.SetQuota(context.Background(), "alice", 2024, "cp", -1)
	assert.ErrorIs(t, err, leave.ErrNegativeQuota)
}

func TestUpsertType_GeneratesID(t *testing.T) {
	svc := testService()
	saved, err := svc.UpsertType(context.Background(), "alice", leave.LeaveType{
		Name:     "RTT",
		Label:    "RTT",
		Color:    "#00aa00",
		Category: leave.CategoryLeave,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
}

func TestUpsertType_RejectsInvalidColor(t *testing.T) {
	svc := testService()
	_, err := svc.UpsertType(context.Background(), "alice", leave.LeaveType{
		ID:       "bad",
		Name:     "Bad",
		Label:    "B",
		Color:    "red",
		Category: leave.CategoryLeave,
	})
	assert.Error(t, err)
}

// =============================================================================
// RULES
// =============================================================================

func mondayRule(typeID string) recurrence.Rule {
	return recurrence.Rule{
		LeaveTypeID: typeID,
		Period:      leave.PeriodFull,
		Type:        recurrence.TypeWeekly,
		Pattern:     recurrence.Pattern{DaysOfWeek: recurrence.FlexInts{1}},
		StartDate:   day(2024, time.June, 1),
		Active:      true,
	}
}

func TestSaveRule_UnknownType(t *testing.T) {
	svc := testService()
	_, err := svc.SaveRule(context.Background(), "alice", mondayRule("ghost"))
	assert.True(t, leave.IsNotFound(err))
}

func TestApplyRule_WritesLedgerEntries(t *testing.T) {
	// GIVEN: A stored Mondays rule over June 2024
	svc := testService()
	ctx := context.Background()
	saveType(t, svc, "alice", "cp", "Congés")

	rule := mondayRule("cp")
	end := day(2024, time.June, 30)
	rule.EndDate = &end
	saved, err := svc.SaveRule(ctx, "alice", rule)
	require.NoError(t, err)

	// WHEN: Applying it
	result, err := svc.ApplyRule(ctx, "alice", saved.ID, Window{}, "FR")
	require.NoError(t, err)

	// THEN: June 2024 has Mondays 3, 10, 17, 24; none are holidays
	require.Len(t, result.Occurrences, 4)
	ledger, err := svc.Ledger(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "cp", ledger["2024-06-03"])
	assert.Equal(t, "cp", ledger["2024-06-24"])
	assert.Len(t, ledger, 4)
}

func TestApplyRule_HalfDayDisplacesFull(t *testing.T) {
	// An applied morning occurrence replaces an existing full-day entry.
	svc := testService()
	ctx := context.Background()
	saveType(t, svc, "alice", "cp", "Congés")
	require.NoError(t, svc.SetEntry(ctx, "alice", day(2024, time.June, 3), leave.PeriodFull, "cp"))

	rule := mondayRule("cp")
	rule.Period = leave.PeriodMorning
	end := day(2024, time.June, 3)
	rule.EndDate = &end
	saved, err := svc.SaveRule(ctx, "alice", rule)
	require.NoError(t, err)

	_, err = svc.ApplyRule(ctx, "alice", saved.ID, Window{}, "")
	require.NoError(t, err)

	ledger, err := svc.Ledger(ctx, "alice")
	require.NoError(t, err)
	entry := ledger.Entry(day(2024, time.June, 3))
	assert.Empty(t, entry.Full)
	assert.Equal(t, "cp", entry.Morning)
}

func TestApplyRule_MissingRule(t *testing.T) {
	svc := testService()
	_, err := svc.ApplyRule(context.Background(), "alice", "ghost", Window{}, "")
	assert.True(t, leave.IsNotFound(err))
}

func TestPreviewRule_DoesNotWrite(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	saveType(t, svc, "alice", "cp", "Congés")

	rule := mondayRule("cp")
	end := day(2024, time.June, 30)
	rule.EndDate = &end
	rule.ID = "preview-only"

	result, err := svc.PreviewRule(ctx, "alice", rule, Window{}, "")
	require.NoError(t, err)
	require.Len(t, result.Occurrences, 4)

	ledger, err := svc.Ledger(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, ledger)
}

// =============================================================================
// STATS THROUGH THE SERVICE
// =============================================================================

func TestComputeStats_ReflectsMutations(t *testing.T) {
	svc := testService()
	ctx := context.Background()
	saveType(t, svc, "alice", "cp", "Congés")
	require.NoError(t, svc.SetQuota(ctx, "alice", 2024, "cp", 10))
	require.NoError(t, svc.SetEntry(ctx, "alice", day(2024, time.June, 10), leave.PeriodFull, "cp"))
	require.NoError(t, svc.SetEntry(ctx, "alice", day(2024, time.June, 11), leave.PeriodMorning, "cp"))

	report, err := svc.ComputeStats(ctx, "alice", 2024)
	require.NoError(t, err)
	assert.Equal(t, "1.5", report.TotalUsed.String())

	// Mutations invalidate the cached report.
	require.NoError(t, svc.RemoveEntry(ctx, "alice", day(2024, time.June, 11), leave.PeriodMorning))
	report, err = svc.ComputeStats(ctx, "alice", 2024)
	require.NoError(t, err)
	assert.Equal(t, "1", report.TotalUsed.String())
}

// =============================================================================
// ROUTER
// =============================================================================

func testRouter() http.Handler {
	return NewRouter(NewHandler(testService()))
}

func TestRouter_SetAndReadEntry(t *testing.T) {
	router := testRouter()

	// The default type exists after any registry-touching call; create the
	// entry against it.
	body, _ := json.Marshal(EntryRequest{
		Date:   "2024-06-10",
		Period: "full",
		TypeID: leave.DefaultType().ID,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/ledger/2024-06-10", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto DayEntryDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	assert.Equal(t, leave.DefaultType().ID, dto.Full)
}

func TestRouter_InvalidDateIs400(t *testing.T) {
	router := testRouter()
	body := []byte(`{"date":"2024-13-45","period":"full","leaveTypeId":"cp"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/ledger/entries", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Holidays(t *testing.T) {
	router := testRouter()
	req := httptest.NewRequest(http.MethodGet, "/api/holidays?country=FR&year=2024", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var dto HolidaysDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	assert.Equal(t, "Lundi de Pâques", dto.Holidays["2024-04-01"])
}
