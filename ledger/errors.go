/*
errors.go - Centralized error types for the ledger engine

PURPOSE:
  All ledger error types in one place. Domain packages wrap these with
  additional context where useful.

USAGE:
  if errors.Is(err, ledger.ErrDuplicateEntry) {
      // internal invariant violation - treat as a bug, not user input
  }
*/
package ledger

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrDuplicateEntry is returned when appending or updating would leave
	// two entries with the same origin transaction in one partition. This
	// indicates a caller bug, never bad user input.
	ErrDuplicateEntry = errors.New("duplicate ledger entry for origin transaction")

	// ErrEntryNotFound is returned by Update when no entry matches the
	// origin transaction. Remove treats the same case as a no-op.
	ErrEntryNotFound = errors.New("ledger entry not found")

	// ErrAlreadyInitialized is returned when initializing a partition that
	// already has entries.
	ErrAlreadyInitialized = errors.New("ledger partition already initialized")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// DuplicateEntryError carries the partition and origin of a duplicate append.
type DuplicateEntryError struct {
	Subject    Subject
	OriginTxID string
	ExistingID int64
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("duplicate ledger entry: origin %s already has entry %d in %s",
		e.OriginTxID, e.ExistingID, e.Subject)
}

func (e *DuplicateEntryError) Unwrap() error { return ErrDuplicateEntry }
