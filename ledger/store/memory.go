// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu      sync.RWMutex
	entries map[ledger.Subject][]ledger.Entry
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[ledger.Subject][]ledger.Entry),
		nextID:  1,
	}
}

// InsertEntry assigns the next monotonic ID and stores the entry in
// partition order.
func (m *Memory) InsertEntry(_ context.Context, e ledger.Entry) (ledger.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.ID = m.nextID
	m.nextID++

	part := m.entries[e.Subject]

	// Binary search for the chronological insertion point. The new entry
	// has the highest ID, so it sorts after existing same-day entries.
	i := sort.Search(len(part), func(i int) bool {
		return part[i].Date.After(e.Date)
	})

	part = append(part, ledger.Entry{})
	copy(part[i+1:], part[i:])
	part[i] = e
	m.entries[e.Subject] = part

	return e, nil
}

func (m *Memory) Partition(_ context.Context, subject ledger.Subject) ([]ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	part := m.entries[subject]
	result := make([]ledger.Entry, len(part))
	copy(result, part)
	return result, nil
}

func (m *Memory) EntryByOrigin(_ context.Context, originTxID string) (*ledger.Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if originTxID == "" {
		return nil, nil
	}
	for _, part := range m.entries {
		for _, e := range part {
			if e.OriginTxID == originTxID {
				found := e
				return &found, nil
			}
		}
	}
	return nil, nil
}

// UpdateEntry rewrites a stored entry and restores partition order, since
// the entry's date may have moved.
func (m *Memory) UpdateEntry(_ context.Context, e ledger.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	part := m.entries[e.Subject]
	for i := range part {
		if part[i].ID == e.ID {
			part[i] = e
			sort.SliceStable(part, func(a, b int) bool { return part[a].Less(part[b]) })
			return nil
		}
	}
	return ledger.ErrEntryNotFound
}

func (m *Memory) DeleteEntry(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for subject, part := range m.entries {
		for i := range part {
			if part[i].ID == id {
				m.entries[subject] = append(part[:i], part[i+1:]...)
				return nil
			}
		}
	}
	return nil
}
