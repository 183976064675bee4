/*
store.go - Persistence interface for ledger entries

PURPOSE:
  Defines the boundary between the recompute engine and the database.
  The store is deliberately dumb: it persists entries and returns
  partitions in (date, id) order. All running-total arithmetic lives
  in the engine (ledger.go), so every store implementation behaves
  identically.

ID ASSIGNMENT:
  InsertEntry assigns a monotonically increasing entry ID. The ID is
  the same-day ordering tie-break, so stores MUST never reuse or
  reorder IDs.

IMPLEMENTATIONS:
  - store/memory.go:          In-memory, for engine unit tests
  - store/sqlite (top level): Production SQLite store

SEE ALSO:
  - ledger.go: The engine using this interface
*/
package ledger

import "context"

// Store persists ledger entries. It performs no balance arithmetic.
type Store interface {
	// InsertEntry persists a new entry and returns it with its assigned ID.
	// IDs are monotonically increasing across the whole store.
	InsertEntry(ctx context.Context, e Entry) (Entry, error)

	// Partition returns every entry for a subject, ordered by (date, id).
	Partition(ctx context.Context, subject Subject) ([]Entry, error)

	// EntryByOrigin returns the entry bound to an origin transaction,
	// or nil if none exists.
	EntryByOrigin(ctx context.Context, originTxID string) (*Entry, error)

	// UpdateEntry persists changed fields of an existing entry.
	UpdateEntry(ctx context.Context, e Entry) error

	// DeleteEntry removes an entry by ID. Missing IDs are a no-op.
	DeleteEntry(ctx context.Context, id int64) error
}
