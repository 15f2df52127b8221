/*
service.go - Composed leave service

PURPOSE:
  LeaveService is the explicit composition of the system's capabilities:
  ledger mutation, type/quota registry, recurrence generation, and stats.
  Handlers call the service; the service owns the load-mutate-write
  sequence against the persistence collaborator and keeps the stats cache
  coherent by invalidating it after every mutation.

CONCURRENCY:
  The service performs no compare-and-swap. Callers must serialize
  concurrent writers against the same owner's ledger; the HTTP layer runs
  one generate-then-upsert sequence per apply request.

SEE ALSO:
  - handlers.go: HTTP layer over this service
  - leave/store.go: Collaborator interfaces
*/
package api

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/mchuche/gestion-conges-sub000/calendar"
	"github.com/mchuche/gestion-conges-sub000/leave"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
	"github.com/mchuche/gestion-conges-sub000/stats"
)

// =============================================================================
// LEAVE SERVICE
// =============================================================================

// LeaveService composes the ledger, registry, recurrence, and stats
// capabilities at construction time.
type LeaveService struct {
	Store     leave.Store
	Rules     recurrence.RuleStore
	Generator *recurrence.Generator
	Stats     *stats.Engine
	Log       logrus.FieldLogger
	Clock     func() time.Time
}

// NewLeaveService wires a service over the given stores.
func NewLeaveService(store leave.Store, rules recurrence.RuleStore, log logrus.FieldLogger) *LeaveService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &LeaveService{
		Store:     store,
		Rules:     rules,
		Generator: recurrence.NewGenerator(log),
		Stats:     stats.NewEngine(),
		Log:       log,
		Clock:     time.Now,
	}
}

// Registry loads the owner's leave types and quotas into a Registry.
func (s *LeaveService) Registry(ctx context.Context, owner string) (*leave.Registry, error) {
	types, err := s.Store.LoadTypes(ctx, owner)
	if err != nil {
		return nil, err
	}
	quotas, err := s.Store.LoadQuotas(ctx, owner)
	if err != nil {
		return nil, err
	}
	registry := leave.NewRegistry(types, quotas, s.Clock)

	// First session: persist the auto-inserted default type so later loads
	// agree with the never-empty invariant.
	if len(types) == 0 {
		def := leave.DefaultType()
		if err := s.Store.SaveType(ctx, owner, def); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// Ledger loads the owner's full ledger.
func (s *LeaveService) Ledger(ctx context.Context, owner string) (leave.Ledger, error) {
	return s.Store.LoadLedger(ctx, owner)
}

// =============================================================================
// LEDGER MUTATIONS
// =============================================================================

// SetEntry writes one leave entry, enforcing the full/half-day
// mutual-exclusion invariant at the store level.
func (s *LeaveService) SetEntry(ctx context.Context, owner string, day time.Time, period leave.Period, typeID string) error {
	if !period.Valid() {
		return leave.ErrInvalidPeriod
	}
	registry, err := s.Registry(ctx, owner)
	if err != nil {
		return err
	}
	if !registry.Has(typeID) {
		return &leave.UnknownTypeError{TypeID: typeID}
	}

	var stale []string
	if period == leave.PeriodFull {
		stale = []string{leave.Key(day, leave.PeriodMorning), leave.Key(day, leave.PeriodAfternoon)}
	} else {
		stale = []string{leave.Key(day, leave.PeriodFull)}
	}
	if err := s.Store.DeleteEntries(ctx, owner, stale); err != nil {
		return err
	}
	if err := s.Store.UpsertEntries(ctx, owner, map[string]string{leave.Key(day, period): typeID}); err != nil {
		return err
	}
	s.Stats.Invalidate(owner)
	return nil
}

// RemoveEntry clears a leave entry. Removing the full period clears all
// three keys for the day.
func (s *LeaveService) RemoveEntry(ctx context.Context, owner string, day time.Time, period leave.Period) error {
	if !period.Valid() {
		return leave.ErrInvalidPeriod
	}
	keys := []string{leave.Key(day, period)}
	if period == leave.PeriodFull {
		keys = []string{
			leave.Key(day, leave.PeriodFull),
			leave.Key(day, leave.PeriodMorning),
			leave.Key(day, leave.PeriodAfternoon),
		}
	}
	if err := s.Store.DeleteEntries(ctx, owner, keys); err != nil {
		return err
	}
	s.Stats.Invalidate(owner)
	return nil
}

// =============================================================================
// TYPE AND QUOTA MUTATIONS
// =============================================================================

// UpsertType validates and stores a leave type, generating an id when the
// client did not supply one.
func (s *LeaveService) UpsertType(ctx context.Context, owner string, t leave.LeaveType) (leave.LeaveType, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := t.Validate(); err != nil {
		return leave.LeaveType{}, err
	}
	if err := s.Store.SaveType(ctx, owner, t); err != nil {
		return leave.LeaveType{}, err
	}
	s.Stats.Invalidate(owner)
	return t, nil
}

// DeleteType removes a type, cascading to its ledger entries and quota
// cells. This is an explicit user-confirmed operation. If the owner's
// last type was deleted, the default type is re-inserted.
func (s *LeaveService) DeleteType(ctx context.Context, owner string, typeID string) (removedEntries int, err error) {
	registry, err := s.Registry(ctx, owner)
	if err != nil {
		return 0, err
	}
	if !registry.Has(typeID) {
		return 0, &leave.UnknownTypeError{TypeID: typeID}
	}

	removedEntries, err = s.Store.DeleteEntriesByType(ctx, owner, typeID)
	if err != nil {
		return 0, err
	}
	if err := s.Store.DeleteQuotasByType(ctx, owner, typeID); err != nil {
		return removedEntries, err
	}
	if err := s.Store.DeleteType(ctx, owner, typeID); err != nil {
		return removedEntries, err
	}

	remaining, err := s.Store.LoadTypes(ctx, owner)
	if err != nil {
		return removedEntries, err
	}
	if len(remaining) == 0 {
		if err := s.Store.SaveType(ctx, owner, leave.DefaultType()); err != nil {
			return removedEntries, err
		}
	}
	s.Stats.Invalidate(owner)
	return removedEntries, nil
}

// SetQuota writes one quota cell after validating the type exists.
func (s *LeaveService) SetQuota(ctx context.Context, owner string, year int, typeID string, days int) error {
	if days < 0 {
		return leave.ErrNegativeQuota
	}
	registry, err := s.Registry(ctx, owner)
	if err != nil {
		return err
	}
	if !registry.Has(typeID) {
		return &leave.UnknownTypeError{TypeID: typeID}
	}
	if err := s.Store.SaveQuota(ctx, owner, leave.QuotaKey{Year: year, TypeID: typeID}, days); err != nil {
		return err
	}
	s.Stats.Invalidate(owner)
	return nil
}

// =============================================================================
// RECURRENCE RULES
// =============================================================================

// ListRules returns the owner's stored rules.
func (s *LeaveService) ListRules(ctx context.Context, owner string) ([]recurrence.Rule, error) {
	return s.Rules.LoadRules(ctx, owner)
}

// SaveRule validates and stores a rule, generating an id when absent.
func (s *LeaveService) SaveRule(ctx context.Context, owner string, rule recurrence.Rule) (recurrence.Rule, error) {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if err := rule.Validate(); err != nil {
		return recurrence.Rule{}, err
	}
	registry, err := s.Registry(ctx, owner)
	if err != nil {
		return recurrence.Rule{}, err
	}
	if !registry.Has(rule.LeaveTypeID) {
		return recurrence.Rule{}, &leave.UnknownTypeError{TypeID: rule.LeaveTypeID}
	}
	if err := s.Rules.SaveRule(ctx, owner, rule); err != nil {
		return recurrence.Rule{}, err
	}
	return rule, nil
}

// DeleteRule removes a stored rule. Already-generated ledger entries stay.
func (s *LeaveService) DeleteRule(ctx context.Context, owner string, id string) error {
	return s.Rules.DeleteRule(ctx, owner, id)
}

// Window is the generation window for preview/apply. Zero fields fall
// back to the rule's start date and the end of next year.
type Window struct {
	From time.Time
	To   time.Time
}

func (w Window) resolve(rule recurrence.Rule) (time.Time, time.Time) {
	from := w.From
	if from.IsZero() {
		from = calendar.Midnight(rule.StartDate)
	}
	to := w.To
	if to.IsZero() {
		to = calendar.EndOfYear(from.Year() + 1)
	}
	return from, to
}

// PreviewRule expands a rule without touching the ledger.
func (s *LeaveService) PreviewRule(ctx context.Context, owner string, rule recurrence.Rule, window Window, country string) (recurrence.Result, error) {
	if err := rule.Validate(); err != nil {
		return recurrence.Result{}, err
	}
	from, to := window.resolve(rule)
	return s.Generator.GenerateForCountry(rule, from, to, s.resolveCountry(country)), nil
}

// ApplyRule expands a stored rule and bulk-upserts the occurrences into
// the owner's ledger, maintaining the full/half-day invariant per
// occurrence. Returns the generation result.
func (s *LeaveService) ApplyRule(ctx context.Context, owner string, ruleID string, window Window, country string) (recurrence.Result, error) {
	rule, err := s.Rules.GetRule(ctx, owner, ruleID)
	if err != nil {
		return recurrence.Result{}, err
	}

	from, to := window.resolve(rule)
	result := s.Generator.GenerateForCountry(rule, from, to, s.resolveCountry(country))
	if len(result.Occurrences) == 0 {
		return result, nil
	}

	upserts := make(map[string]string, len(result.Occurrences))
	var stale []string
	for _, occ := range result.Occurrences {
		upserts[occ.Key()] = occ.LeaveTypeID
		if occ.Period == leave.PeriodFull {
			stale = append(stale,
				leave.Key(occ.Date, leave.PeriodMorning),
				leave.Key(occ.Date, leave.PeriodAfternoon))
		} else {
			stale = append(stale, leave.Key(occ.Date, leave.PeriodFull))
		}
	}

	if err := s.Store.DeleteEntries(ctx, owner, stale); err != nil {
		return result, err
	}
	if err := s.Store.UpsertEntries(ctx, owner, upserts); err != nil {
		return result, err
	}
	s.Stats.Invalidate(owner)
	return result, nil
}

// =============================================================================
// STATS AND HOLIDAYS
// =============================================================================

// ComputeStats returns the quota consumption report for (owner, year).
func (s *LeaveService) ComputeStats(ctx context.Context, owner string, year int) (stats.Report, error) {
	ledger, err := s.Ledger(ctx, owner)
	if err != nil {
		return stats.Report{}, err
	}
	registry, err := s.Registry(ctx, owner)
	if err != nil {
		return stats.Report{}, err
	}
	return s.Stats.Compute(owner, ledger, registry, year), nil
}

// Holidays returns the holiday map for a country and year.
func (s *LeaveService) Holidays(country string, year int) map[string]string {
	return calendar.PublicHolidays(s.resolveCountry(country), year)
}

// resolveCountry logs the fallback for unknown codes; the calendar lookup
// itself never fails.
func (s *LeaveService) resolveCountry(country string) string {
	if country == "" {
		return calendar.DefaultCountry
	}
	if !calendar.IsKnownCountry(country) {
		s.Log.WithField("country", country).Warn("unknown country code, using default holiday table")
	}
	return country
}
