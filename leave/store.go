/*
store.go - Persistence collaborator interfaces

PURPOSE:
  Defines the boundary between the in-memory core and the external store.
  The core loads a user's records wholesale, mutates them in memory, and
  writes back through these interfaces. Upserts are keyed by date key with
  last-write-wins semantics.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: Production SQLite
  - leave/store/memory.go:  In-memory for testing

CONCURRENCY CONTRACT:
  The core performs no compare-and-swap; callers must serialize concurrent
  writers against the same owner's ledger (see recurrence apply, which is a
  generate-then-bulk-upsert sequence).
*/
package leave

import "context"

// =============================================================================
// LEDGER STORE
// =============================================================================

// LedgerStore persists per-owner ledger entries.
type LedgerStore interface {
	// LoadLedger returns the owner's full ledger as (dateKey, typeID) pairs.
	LoadLedger(ctx context.Context, owner string) (Ledger, error)

	// UpsertEntries writes entries keyed by date key, last write wins.
	// Used both for single user edits and for recurrence bulk writes.
	UpsertEntries(ctx context.Context, owner string, entries map[string]string) error

	// DeleteEntries removes the given date keys.
	DeleteEntries(ctx context.Context, owner string, keys []string) error

	// DeleteEntriesByType removes every entry pointing at a leave type.
	// Returns the number of removed entries.
	DeleteEntriesByType(ctx context.Context, owner string, typeID string) (int, error)
}

// =============================================================================
// TYPE AND QUOTA STORES
// =============================================================================

// TypeStore persists leave type records keyed by id.
type TypeStore interface {
	LoadTypes(ctx context.Context, owner string) ([]LeaveType, error)
	SaveType(ctx context.Context, owner string, t LeaveType) error
	DeleteType(ctx context.Context, owner string, id string) error
}

// QuotaStore persists quota records keyed by (year, typeID).
type QuotaStore interface {
	LoadQuotas(ctx context.Context, owner string) (QuotaTable, error)
	SaveQuota(ctx context.Context, owner string, key QuotaKey, days int) error
	DeleteQuotasByType(ctx context.Context, owner string, typeID string) error
}

// Store bundles the collaborator capabilities the service needs.
type Store interface {
	LedgerStore
	TypeStore
	QuotaStore
}
