// Package store provides in-memory implementations of the persistence
// collaborator interfaces, used by tests and the dev server.
package store

import (
	"context"
	"sync"

	"github.com/mchuche/gestion-conges-sub000/leave"
	"github.com/mchuche/gestion-conges-sub000/recurrence"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements leave.Store and recurrence.RuleStore with plain maps.
type Memory struct {
	mu      sync.RWMutex
	ledgers map[string]leave.Ledger               // owner -> ledger
	types   map[string]map[string]leave.LeaveType // owner -> id -> type
	quotas  map[string]leave.QuotaTable           // owner -> table
	rules   map[string]map[string]recurrence.Rule // owner -> id -> rule
}

func NewMemory() *Memory {
	return &Memory{
		ledgers: make(map[string]leave.Ledger),
		types:   make(map[string]map[string]leave.LeaveType),
		quotas:  make(map[string]leave.QuotaTable),
		rules:   make(map[string]map[string]recurrence.Rule),
	}
}

var _ leave.Store = (*Memory)(nil)
var _ recurrence.RuleStore = (*Memory)(nil)

// =============================================================================
// LEDGER STORE
// =============================================================================

func (m *Memory) LoadLedger(_ context.Context, owner string) (leave.Ledger, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(leave.Ledger, len(m.ledgers[owner]))
	for k, v := range m.ledgers[owner] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpsertEntries(_ context.Context, owner string, entries map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ledger := m.ledgers[owner]
	if ledger == nil {
		ledger = make(leave.Ledger)
		m.ledgers[owner] = ledger
	}
	for k, v := range entries {
		ledger[k] = v
	}
	return nil
}

func (m *Memory) DeleteEntries(_ context.Context, owner string, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.ledgers[owner], k)
	}
	return nil
}

func (m *Memory) DeleteEntriesByType(_ context.Context, owner string, typeID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, v := range m.ledgers[owner] {
		if v == typeID {
			delete(m.ledgers[owner], k)
			removed++
		}
	}
	return removed, nil
}

// =============================================================================
// TYPE STORE
// =============================================================================

func (m *Memory) LoadTypes(_ context.Context, owner string) ([]leave.LeaveType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []leave.LeaveType
	for _, t := range m.types[owner] {
		out = append(out, t)
	}
	return out, nil
}

func (m *Memory) SaveType(_ context.Context, owner string, t leave.LeaveType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.types[owner] == nil {
		m.types[owner] = make(map[string]leave.LeaveType)
	}
	m.types[owner][t.ID] = t
	return nil
}

func (m *Memory) DeleteType(_ context.Context, owner string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.types[owner], id)
	return nil
}

// =============================================================================
// QUOTA STORE
// =============================================================================

func (m *Memory) LoadQuotas(_ context.Context, owner string) (leave.QuotaTable, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(leave.QuotaTable, len(m.quotas[owner]))
	for k, v := range m.quotas[owner] {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) SaveQuota(_ context.Context, owner string, key leave.QuotaKey, days int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.quotas[owner] == nil {
		m.quotas[owner] = make(leave.QuotaTable)
	}
	m.quotas[owner][key] = days
	return nil
}

func (m *Memory) DeleteQuotasByType(_ context.Context, owner string, typeID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key := range m.quotas[owner] {
		if key.TypeID == typeID {
			delete(m.quotas[owner], key)
		}
	}
	return nil
}

// =============================================================================
// RULE STORE
// =============================================================================

func (m *Memory) LoadRules(_ context.Context, owner string) ([]recurrence.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []recurrence.Rule
	for _, r := range m.rules[owner] {
		out = append(out, r)
	}
	return out, nil
}

func (m *Memory) GetRule(_ context.Context, owner string, id string) (recurrence.Rule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.rules[owner][id]
	if !ok {
		return recurrence.Rule{}, leave.ErrRuleNotFound
	}
	return r, nil
}

func (m *Memory) SaveRule(_ context.Context, owner string, rule recurrence.Rule) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.rules[owner] == nil {
		m.rules[owner] = make(map[string]recurrence.Rule)
	}
	m.rules[owner][rule.ID] = rule
	return nil
}

func (m *Memory) DeleteRule(_ context.Context, owner string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rules[owner][id]; !ok {
		return leave.ErrRuleNotFound
	}
	delete(m.rules[owner], id)
	return nil
}
