/*
Package stats computes quota consumption reports from the leave ledger.

PURPOSE:
  For a given year, the engine walks the ledger's unique calendar days and
  accumulates consumption per leave type: 1 day for a full-day entry, 0.5
  per half-day entry. Only "leave"-category types with a valid (> 0) quota
  participate. The ledger's full/half mutual-exclusion invariant rules out
  double counting by construction.

PRECISION:
  Consumption is accumulated as decimal.Decimal so repeated half-day sums
  stay exact. Display formatting shows one decimal place only when the
  value has a fractional part.

CACHING:
  Reports are cached in a fixed-size LRU keyed by (owner, year); callers
  must invalidate on any mutation (the service layer does this).

SEE ALSO:
  - leave/ledger.go: The ledger being accounted
  - leave/registry.go: Types, quotas, and the valid-quota rule
*/
package stats

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mchuche/gestion-conges-sub000/leave"
)

var (
	half = decimal.New(5, -1) // 0.5
	one  = decimal.New(1, 0)
)

// =============================================================================
// REPORT
// =============================================================================

// TypeUsage is the consumption state of one leave type for the year.
type TypeUsage struct {
	Type      leave.LeaveType
	Used      decimal.Decimal
	Quota     int
	HasQuota  bool
	Remaining decimal.Decimal // may be negative when over-consumed
}

// Report is the accounting result for one (owner, year).
type Report struct {
	Year           int
	UsedByType     map[string]decimal.Decimal
	Types          []TypeUsage
	TotalUsed      decimal.Decimal
	TotalQuota     decimal.Decimal
	TotalRemaining decimal.Decimal
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine computes and caches reports.
type Engine struct {
	cache *reportCache
}

func NewEngine() *Engine {
	return &Engine{cache: newReportCache()}
}

// Invalidate drops cached reports for an owner. Must be called after any
// ledger, type, or quota mutation for that owner.
func (e *Engine) Invalidate(owner string) {
	e.cache.invalidate(owner)
}

// Compute returns the consumption report for (owner, year), from cache
// when available.
func (e *Engine) Compute(owner string, ledger leave.Ledger, registry *leave.Registry, year int) Report {
	key := cacheKey{Owner: owner, Year: year}
	if report, ok := e.cache.get(key); ok {
		return report
	}
	report := compute(ledger, registry, year)
	e.cache.put(key, report)
	return report
}

// compute is the uncached accounting pass.
func compute(ledger leave.Ledger, registry *leave.Registry, year int) Report {
	used := make(map[string]decimal.Decimal)

	// countable reports whether a slot's type consumes quota this year.
	countable := func(typeID string) bool {
		if typeID == "" {
			return false
		}
		t, err := registry.Type(typeID)
		if err != nil || t.Category != leave.CategoryLeave {
			return false
		}
		return registry.HasValidQuota(year, typeID)
	}

	days := make([]string, 0, len(ledger))
	for dayKey := range ledger.UniqueDays() {
		if leave.KeyYear(dayKey) == year {
			days = append(days, dayKey)
		}
	}

	for _, dayKey := range days {
		day, _, err := leave.ParseKey(dayKey)
		if err != nil {
			continue
		}
		entry := ledger.Entry(day)
		if entry.Full != "" {
			if countable(entry.Full) {
				used[entry.Full] = used[entry.Full].Add(one)
			}
			continue
		}
		if countable(entry.Morning) {
			used[entry.Morning] = used[entry.Morning].Add(half)
		}
		if countable(entry.Afternoon) {
			used[entry.Afternoon] = used[entry.Afternoon].Add(half)
		}
	}

	report := Report{
		Year:       year,
		UsedByType: used,
	}

	for _, t := range registry.Types() {
		quota, hasQuota := registry.Quota(year, t.ID)
		usage := TypeUsage{
			Type:     t,
			Used:     used[t.ID],
			Quota:    quota,
			HasQuota: hasQuota,
		}
		if t.Category == leave.CategoryLeave && quota > 0 {
			q := decimal.New(int64(quota), 0)
			usage.Remaining = q.Sub(usage.Used)

			report.TotalQuota = report.TotalQuota.Add(q)
			report.TotalUsed = report.TotalUsed.Add(usage.Used)
			// Over-consumption stays visible per type but never drags the
			// aggregate remaining below a zero contribution.
			if usage.Remaining.IsPositive() {
				report.TotalRemaining = report.TotalRemaining.Add(usage.Remaining)
			}
		}
		report.Types = append(report.Types, usage)
	}

	sort.Slice(report.Types, func(i, j int) bool {
		return report.Types[i].Type.Name < report.Types[j].Type.Name
	})
	return report
}

// =============================================================================
// DISPLAY FORMATTING
// =============================================================================

// Format renders an amount per the display convention: one decimal place
// when the value is fractional, no decimal point otherwise.
func Format(d decimal.Decimal) string {
	if d.IsInteger() {
		return d.StringFixed(0)
	}
	return d.StringFixed(1)
}
