/*
registry.go - Leave type registry and quota table

PURPOSE:
  The Registry holds the user's leave types and the per-(year, type) quota
  table. It is loaded wholesale from the persistence collaborator and
  mutated in memory, like the Ledger.

QUOTA FALLBACK:
  Quota(year, typeID) returns the quota configured for that exact year if
  present, otherwise the quota configured for the CURRENT year (new years
  inherit the most recently configured quota until explicitly overridden).
  "Current" comes from an injected clock so lookups are deterministic under
  test; the default clock is time.Now.

NEVER-EMPTY INVARIANT:
  Deleting the last leave type auto-inserts DefaultType(). The registry
  never holds zero types.
*/
package leave

import (
	"sort"
	"time"
)

// =============================================================================
// QUOTA TABLE - (year, type) -> days
// =============================================================================

// QuotaKey identifies one quota cell.
type QuotaKey struct {
	Year   int
	TypeID string
}

// QuotaTable maps quota cells to a non-negative number of days.
// An absent cell means "unlimited / not tracked".
type QuotaTable map[QuotaKey]int

// =============================================================================
// REGISTRY
// =============================================================================

// Registry owns the leave types and their quotas.
type Registry struct {
	types  map[string]LeaveType
	quotas QuotaTable
	now    func() time.Time
}

// NewRegistry builds a registry from loaded records. A nil clock defaults
// to time.Now. An empty type list gets the default type.
func NewRegistry(types []LeaveType, quotas QuotaTable, clock func() time.Time) *Registry {
	if clock == nil {
		clock = time.Now
	}
	r := &Registry{
		types:  make(map[string]LeaveType, len(types)),
		quotas: make(QuotaTable, len(quotas)),
		now:    clock,
	}
	for _, t := range types {
		r.types[t.ID] = t
	}
	for k, v := range quotas {
		r.quotas[k] = v
	}
	r.ensureNotEmpty()
	return r
}

func (r *Registry) ensureNotEmpty() {
	if len(r.types) == 0 {
		def := DefaultType()
		r.types[def.ID] = def
	}
}

// Type returns the leave type for an id.
func (r *Registry) Type(id string) (LeaveType, error) {
	t, ok := r.types[id]
	if !ok {
		return LeaveType{}, &UnknownTypeError{TypeID: id}
	}
	return t, nil
}

// Has reports whether the type id exists.
func (r *Registry) Has(id string) bool {
	_, ok := r.types[id]
	return ok
}

// Types returns all leave types sorted by name for stable display.
func (r *Registry) Types() []LeaveType {
	out := make([]LeaveType, 0, len(r.types))
	for _, t := range r.types {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Upsert validates and stores a leave type.
func (r *Registry) Upsert(t LeaveType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	r.types[t.ID] = t
	return nil
}

// Delete removes a type and its quota entries for all years. If the
// registry would become empty, the default type is inserted.
// The matching ledger cascade is the caller's responsibility (it owns
// the ledger and the user confirmation).
func (r *Registry) Delete(id string) error {
	if _, ok := r.types[id]; !ok {
		return &UnknownTypeError{TypeID: id}
	}
	delete(r.types, id)
	for key := range r.quotas {
		if key.TypeID == id {
			delete(r.quotas, key)
		}
	}
	r.ensureNotEmpty()
	return nil
}

// =============================================================================
// QUOTA LOOKUP
// =============================================================================

// Quota returns the quota for (year, typeID). Missing years fall back to
// the current year's quota for the type; a fully absent cell returns
// ok=false meaning unlimited/untracked.
func (r *Registry) Quota(year int, typeID string) (int, bool) {
	if q, ok := r.quotas[QuotaKey{Year: year, TypeID: typeID}]; ok {
		return q, true
	}
	current := r.now().Year()
	if q, ok := r.quotas[QuotaKey{Year: current, TypeID: typeID}]; ok {
		return q, true
	}
	return 0, false
}

// HasValidQuota is true iff the resolved quota is a finite number > 0.
// A quota of exactly 0 or an absent cell excludes the type from
// consumption totals.
func (r *Registry) HasValidQuota(year int, typeID string) bool {
	q, ok := r.Quota(year, typeID)
	return ok && q > 0
}

// SetQuota writes one quota cell.
func (r *Registry) SetQuota(year int, typeID string, days int) error {
	if days < 0 {
		return ErrNegativeQuota
	}
	if !r.Has(typeID) {
		return &UnknownTypeError{TypeID: typeID}
	}
	r.quotas[QuotaKey{Year: year, TypeID: typeID}] = days
	return nil
}

// Quotas returns a copy of the quota table.
func (r *Registry) Quotas() QuotaTable {
	out := make(QuotaTable, len(r.quotas))
	for k, v := range r.quotas {
		out[k] = v
	}
	return out
}
