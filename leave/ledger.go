/*
ledger.go - Half-day leave ledger

PURPOSE:
  The Ledger is the per-user source of truth for marked absences. It is a
  plain map so it can be loaded wholesale from the persistence collaborator
  and mutated in memory.

CRITICAL INVARIANT:
  For any calendar day the ledger holds EITHER one full-day key OR up to
  two half-day keys, never both. Set enforces this on every write:
  setting a full day deletes both half-day keys, and setting a half day
  deletes the full-day key.

MUTATION SOURCES:
  1. Direct user action (Set / Remove)
  2. The recurrence engine (bulk upsert of generated occurrences)

SEE ALSO:
  - datekey.go: Key encoding
  - stats/stats.go: Reads the ledger for quota accounting
*/
package leave

import "time"

// =============================================================================
// LEDGER - DateKey -> leave-type id
// =============================================================================

// Ledger maps encoded date keys to leave-type ids.
type Ledger map[string]string

// Entry is the resolved state of one calendar day. Empty string means the
// slot is unset.
type Entry struct {
	Full      string
	Morning   string
	Afternoon string
}

// IsEmpty reports whether no slot is set.
func (e Entry) IsEmpty() bool {
	return e.Full == "" && e.Morning == "" && e.Afternoon == ""
}

// Entry looks up all three derived keys for a day. Read-only.
func (l Ledger) Entry(day time.Time) Entry {
	return Entry{
		Full:      l[Key(day, PeriodFull)],
		Morning:   l[Key(day, PeriodMorning)],
		Afternoon: l[Key(day, PeriodAfternoon)],
	}
}

// Set writes a leave entry for a day, maintaining the full/half-day
// mutual-exclusion invariant.
func (l Ledger) Set(day time.Time, p Period, typeID string) {
	if p == PeriodFull {
		delete(l, Key(day, PeriodMorning))
		delete(l, Key(day, PeriodAfternoon))
		l[Key(day, PeriodFull)] = typeID
		return
	}
	delete(l, Key(day, PeriodFull))
	l[Key(day, p)] = typeID
}

// Remove clears a leave entry. Removing the full period clears all three
// keys for the day; removing a half day clears only that key.
func (l Ledger) Remove(day time.Time, p Period) {
	if p == PeriodFull {
		delete(l, Key(day, PeriodFull))
		delete(l, Key(day, PeriodMorning))
		delete(l, Key(day, PeriodAfternoon))
		return
	}
	delete(l, Key(day, p))
}

// RemoveType deletes every entry pointing at the given leave type and
// returns the removed keys. Used by the type-deletion cascade.
func (l Ledger) RemoveType(typeID string) []string {
	var removed []string
	for key, id := range l {
		if id == typeID {
			removed = append(removed, key)
			delete(l, key)
		}
	}
	return removed
}

// UniqueDays returns the set of calendar-day keys present in the ledger.
// Two half-day entries on the same day collapse to one element.
func (l Ledger) UniqueDays() map[string]struct{} {
	days := make(map[string]struct{}, len(l))
	for key := range l {
		days[BaseDay(key)] = struct{}{}
	}
	return days
}
