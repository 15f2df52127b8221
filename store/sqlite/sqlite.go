/*
Package sqlite provides the SQLite-backed persistence collaborator.

PURPOSE:
  Implements leave.Store and recurrence.RuleStore on database/sql with the
  mattn/go-sqlite3 driver. The core treats persistence as an external
  key-value collaborator: ledgers are loaded wholesale per owner and
  written back as bulk upserts keyed by date key, last write wins.

KEY TABLES:
  ledger_entries:   (owner, date_key) -> type_id, upsert on conflict
  leave_types:      leave type records keyed by (owner, id)
  quotas:           quota cells keyed by (owner, year, type_id)
  recurrence_rules: rule payloads (JSON) keyed by (owner, id)

WAL MODE:
  The database is opened with WAL so readers don't block the single
  writer. A sync.RWMutex serializes access on top of that; with a real
  multi-user backend the database would take over this role.

MIGRATION:
  Schema is auto-migrated on New(). For production, use a versioned
  migration tool instead.

USAGE:
  st, err := sqlite.New("./conges.db")
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - leave/store.go: Interface definitions
  - leave/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/mchuche/gestion-conges-sub000/leave"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
)

// Store implements the persistence collaborator interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ leave.Store = (*Store)(nil)
var _ recurrence.RuleStore = (*Store)(nil)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Per-owner ledger: one row per encoded date key, last write wins
	CREATE TABLE IF NOT EXISTS ledger_entries (
		owner      TEXT NOT NULL,
		date_key   TEXT NOT NULL,
		type_id    TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (owner, date_key)
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_entries_type
		ON ledger_entries(owner, type_id);

	CREATE TABLE IF NOT EXISTS leave_types (
		owner    TEXT NOT NULL,
		id       TEXT NOT NULL,
		name     TEXT NOT NULL,
		label    TEXT NOT NULL,
		color    TEXT NOT NULL,
		category TEXT NOT NULL,
		PRIMARY KEY (owner, id)
	);

	CREATE TABLE IF NOT EXISTS quotas (
		owner   TEXT NOT NULL,
		year    INTEGER NOT NULL,
		type_id TEXT NOT NULL,
		days    INTEGER NOT NULL,
		PRIMARY KEY (owner, year, type_id)
	);

	CREATE TABLE IF NOT EXISTS recurrence_rules (
		owner        TEXT NOT NULL,
		id           TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		active       INTEGER NOT NULL DEFAULT 1,
		created_at   TEXT NOT NULL,
		PRIMARY KEY (owner, id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// =============================================================================
// LEDGER STORE (leave.LedgerStore interface)
// =============================================================================

// LoadLedger returns the owner's full ledger.
func (s *Store) LoadLedger(ctx context.Context, owner string) (leave.Ledger, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT date_key, type_id FROM ledger_entries WHERE owner = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	defer rows.Close()

	ledger := make(leave.Ledger)
	for rows.Next() {
		var key, typeID string
		if err := rows.Scan(&key, &typeID); err != nil {
			return nil, err
		}
		ledger[key] = typeID
	}
	return ledger, rows.Err()
}

// UpsertEntries writes entries atomically, last write wins per date key.
func (s *Store) UpsertEntries(ctx context.Context, owner string, entries map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO ledger_entries (owner, date_key, type_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner, date_key) DO UPDATE SET
			type_id = excluded.type_id,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	stamp := nowStamp()
	for key, typeID := range entries {
		if _, err := stmt.ExecContext(ctx, owner, key, typeID, stamp); err != nil {
			return fmt.Errorf("failed to upsert %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// DeleteEntries removes the given date keys atomically.
func (s *Store) DeleteEntries(ctx context.Context, owner string, keys []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, key := range keys {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM ledger_entries WHERE owner = ? AND date_key = ?`, owner, key); err != nil {
			return fmt.Errorf("failed to delete %q: %w", key, err)
		}
	}
	return tx.Commit()
}

// DeleteEntriesByType removes every ledger entry pointing at a leave type.
func (s *Store) DeleteEntriesByType(ctx context.Context, owner string, typeID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM ledger_entries WHERE owner = ? AND type_id = ?`, owner, typeID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete entries for type %q: %w", typeID, err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// =============================================================================
// TYPE STORE (leave.TypeStore interface)
// =============================================================================

func (s *Store) LoadTypes(ctx context.Context, owner string) ([]leave.LeaveType, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, label, color, category FROM leave_types WHERE owner = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load leave types: %w", err)
	}
	defer rows.Close()

	var types []leave.LeaveType
	for rows.Next() {
		var t leave.LeaveType
		if err := rows.Scan(&t.ID, &t.Name, &t.Label, &t.Color, &t.Category); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

func (s *Store) SaveType(ctx context.Context, owner string, t leave.LeaveType) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leave_types (owner, id, name, label, color, category)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(owner, id) DO UPDATE SET
			name = excluded.name,
			label = excluded.label,
			color = excluded.color,
			category = excluded.category
	`, owner, t.ID, t.Name, t.Label, t.Color, t.Category)
	if err != nil {
		return fmt.Errorf("failed to save leave type %q: %w", t.ID, err)
	}
	return nil
}

func (s *Store) DeleteType(ctx context.Context, owner string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM leave_types WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave type %q: %w", id, err)
	}
	return nil
}

// =============================================================================
// QUOTA STORE (leave.QuotaStore interface)
// =============================================================================

func (s *Store) LoadQuotas(ctx context.Context, owner string) (leave.QuotaTable, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT year, type_id, days FROM quotas WHERE owner = ?`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load quotas: %w", err)
	}
	defer rows.Close()

	table := make(leave.QuotaTable)
	for rows.Next() {
		var key leave.QuotaKey
		var days int
		if err := rows.Scan(&key.Year, &key.TypeID, &days); err != nil {
			return nil, err
		}
		table[key] = days
	}
	return table, rows.Err()
}

func (s *Store) SaveQuota(ctx context.Context, owner string, key leave.QuotaKey, days int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotas (owner, year, type_id, days)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(owner, year, type_id) DO UPDATE SET days = excluded.days
	`, owner, key.Year, key.TypeID, days)
	if err != nil {
		return fmt.Errorf("failed to save quota (%d, %q): %w", key.Year, key.TypeID, err)
	}
	return nil
}

func (s *Store) DeleteQuotasByType(ctx context.Context, owner string, typeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM quotas WHERE owner = ? AND type_id = ?`, owner, typeID)
	if err != nil {
		return fmt.Errorf("failed to delete quotas for type %q: %w", typeID, err)
	}
	return nil
}

// =============================================================================
// RULE STORE (recurrence.RuleStore interface)
// =============================================================================

func (s *Store) LoadRules(ctx context.Context, owner string) ([]recurrence.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT payload_json FROM recurrence_rules WHERE owner = ? ORDER BY created_at ASC`, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	defer rows.Close()

	var rules []recurrence.Rule
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var rule recurrence.Rule
		if err := json.Unmarshal([]byte(payload), &rule); err != nil {
			return nil, fmt.Errorf("corrupt rule payload: %w", err)
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (s *Store) GetRule(ctx context.Context, owner string, id string) (recurrence.Rule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload_json FROM recurrence_rules WHERE owner = ? AND id = ?`, owner, id).
		Scan(&payload)
	if err == sql.ErrNoRows {
		return recurrence.Rule{}, leave.ErrRuleNotFound
	}
	if err != nil {
		return recurrence.Rule{}, fmt.Errorf("failed to get rule %q: %w", id, err)
	}

	var rule recurrence.Rule
	if err := json.Unmarshal([]byte(payload), &rule); err != nil {
		return recurrence.Rule{}, fmt.Errorf("corrupt rule payload: %w", err)
	}
	return rule, nil
}

func (s *Store) SaveRule(ctx context.Context, owner string, rule recurrence.Rule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to encode rule %q: %w", rule.ID, err)
	}

	active := 0
	if rule.Active {
		active = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO recurrence_rules (owner, id, payload_json, active, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(owner, id) DO UPDATE SET
			payload_json = excluded.payload_json,
			active = excluded.active
	`, owner, rule.ID, string(payload), active, nowStamp())
	if err != nil {
		return fmt.Errorf("failed to save rule %q: %w", rule.ID, err)
	}
	return nil
}

func (s *Store) DeleteRule(ctx context.Context, owner string, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM recurrence_rules WHERE owner = ? AND id = ?`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule %q: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.ErrRuleNotFound
	}
	return nil
}
