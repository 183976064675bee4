/*
ledger.go - Running-balance engine

PURPOSE:
  The engine that keeps every partition consistent with the invariant

    running_total[i] = running_total[i-1] + change[i]   (running_total[-1] = 0)

  no matter in what order entries arrive. Inserting, editing, or removing
  an entry in the middle of a partition recomputes the running total of
  that entry and every later entry.

OUT-OF-ORDER EDITS:
  An entry may be appended with any date - past, present, or future. The
  engine finds the chronological insertion point, seeds the new entry's
  running total from the balance at that date, and propagates the change
  forward. This is why historical edits "just work".

STARTING BALANCES:
  Every partition begins with a synthetic starting-balance entry whose
  date is strictly before all real transactions. If it were dated later,
  earlier entries would not include it in their running totals; callers
  must pick the date accordingly (Initialize enforces emptiness, not
  date order).

COST:
  Each mutation is O(n) in partition size. Partitions are per-subject
  and bounded by a single user's transaction volume, so this is fine.

SEE ALSO:
  - store.go: Persistence interface
  - budget/book.go: The only writer of ledger entries
*/
package ledger

import "context"

// =============================================================================
// LEDGER - Partition mutation and query engine
// =============================================================================

type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Initialize creates the synthetic starting-balance entry for a new subject.
// Fails with ErrAlreadyInitialized if the partition has any entries.
func (l *Ledger) Initialize(ctx context.Context, subject Subject, startingBalance Money, startDate Date) (Entry, error) {
	existing, err := l.store.Partition(ctx, subject)
	if err != nil {
		return Entry{}, err
	}
	if len(existing) > 0 {
		return Entry{}, ErrAlreadyInitialized
	}
	return l.store.InsertEntry(ctx, StartingBalanceEntry(subject, startingBalance, startDate))
}

// Append records a new balance change bound to an origin transaction and
// repairs every later running total in the partition.
func (l *Ledger) Append(ctx context.Context, subject Subject, change Money, date Date, originTxID string) (Entry, error) {
	if originTxID != "" {
		existing, err := l.store.EntryByOrigin(ctx, originTxID)
		if err != nil {
			return Entry{}, err
		}
		if existing != nil {
			return Entry{}, &DuplicateEntryError{Subject: subject, OriginTxID: originTxID, ExistingID: existing.ID}
		}
	}

	entry, err := l.store.InsertEntry(ctx, Entry{
		Subject:    subject,
		Change:     change,
		Date:       date,
		OriginTxID: originTxID,
	})
	if err != nil {
		return Entry{}, err
	}

	entries, err := l.store.Partition(ctx, subject)
	if err != nil {
		return Entry{}, err
	}
	idx := indexOf(entries, entry.ID)
	if err := l.recomputeFrom(ctx, entries, idx); err != nil {
		return Entry{}, err
	}
	return entries[idx], nil
}

// Update rewrites the change amount and date of the entry bound to an
// origin transaction, then repairs the partition from the earlier of the
// entry's old and new chronological positions.
func (l *Ledger) Update(ctx context.Context, originTxID string, newChange Money, newDate Date) error {
	entry, err := l.store.EntryByOrigin(ctx, originTxID)
	if err != nil {
		return err
	}
	if entry == nil {
		return ErrEntryNotFound
	}

	oldDate := entry.Date
	entry.Change = newChange
	entry.Date = newDate
	if err := l.store.UpdateEntry(ctx, *entry); err != nil {
		return err
	}

	entries, err := l.store.Partition(ctx, entry.Subject)
	if err != nil {
		return err
	}

	// Repair from wherever the entry used to sit or now sits, whichever
	// comes first in partition order.
	from := indexOf(entries, entry.ID)
	if oldDate.Before(newDate) {
		for i, e := range entries {
			if e.Date.AfterOrEqual(oldDate) {
				from = min(from, i)
				break
			}
		}
	}
	return l.recomputeFrom(ctx, entries, from)
}

// Remove deletes the entry bound to an origin transaction and repairs the
// partition. Removing a non-existent entry is a no-op.
func (l *Ledger) Remove(ctx context.Context, originTxID string) error {
	entry, err := l.store.EntryByOrigin(ctx, originTxID)
	if err != nil {
		return err
	}
	if entry == nil {
		return nil
	}

	if err := l.store.DeleteEntry(ctx, entry.ID); err != nil {
		return err
	}

	entries, err := l.store.Partition(ctx, entry.Subject)
	if err != nil {
		return err
	}
	from := len(entries)
	for i, e := range entries {
		if e.Date.After(entry.Date) || (e.Date.Equal(entry.Date) && e.ID > entry.ID) {
			from = i
			break
		}
	}
	return l.recomputeFrom(ctx, entries, from)
}

// BalanceAt returns the running total of the latest entry dated on or
// before asOf, or zero if the partition has no such entry.
func (l *Ledger) BalanceAt(ctx context.Context, subject Subject, asOf Date) (Money, error) {
	entries, err := l.store.Partition(ctx, subject)
	if err != nil {
		return Zero(), err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Date.BeforeOrEqual(asOf) {
			return entries[i].RunningTotal, nil
		}
	}
	return Zero(), nil
}

// CurrentBalance returns the running total of the partition's last entry.
func (l *Ledger) CurrentBalance(ctx context.Context, subject Subject) (Money, error) {
	entries, err := l.store.Partition(ctx, subject)
	if err != nil {
		return Zero(), err
	}
	if len(entries) == 0 {
		return Zero(), nil
	}
	return entries[len(entries)-1].RunningTotal, nil
}

// History returns the full partition in (date, id) order.
func (l *Ledger) History(ctx context.Context, subject Subject) ([]Entry, error) {
	return l.store.Partition(ctx, subject)
}

// Recalculate rebuilds every running total in a partition from scratch.
// Used for repair and bulk import.
func (l *Ledger) Recalculate(ctx context.Context, subject Subject) error {
	entries, err := l.store.Partition(ctx, subject)
	if err != nil {
		return err
	}
	return l.recomputeFrom(ctx, entries, 0)
}

// =============================================================================
// RECOMPUTE - The forward-propagation core
// =============================================================================

// recomputeFrom rewrites running totals for entries[from:]. Entries whose
// total is already correct are not rewritten.
func (l *Ledger) recomputeFrom(ctx context.Context, entries []Entry, from int) error {
	for i := from; i < len(entries); i++ {
		prev := Zero()
		if i > 0 {
			prev = entries[i-1].RunningTotal
		}
		total := prev.Add(entries[i].Change)
		if entries[i].RunningTotal.Equal(total) {
			continue
		}
		entries[i].RunningTotal = total
		if err := l.store.UpdateEntry(ctx, entries[i]); err != nil {
			return err
		}
	}
	return nil
}

func indexOf(entries []Entry, id int64) int {
	for i, e := range entries {
		if e.ID == id {
			return i
		}
	}
	return len(entries)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
