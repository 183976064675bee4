package ledger

// =============================================================================
// ENTRY - One balance change in a subject's partition
// =============================================================================

// Entry is a single balance change. Entries belong to exactly one subject
// partition and are ordered by (Date, ID) ascending. The ID tie-break makes
// same-day ordering well-defined, but it reflects insertion order, not
// causal order.
type Entry struct {
	ID           int64
	Subject      Subject
	Change       Money
	RunningTotal Money
	Date         Date

	// OriginTxID links the entry to the transaction that produced it.
	// Empty only for the synthetic starting-balance entry.
	OriginTxID string

	Description string
}

// IsStartingBalance reports whether this is the synthetic first entry.
func (e Entry) IsStartingBalance() bool { return e.OriginTxID == "" }

// Less reports whether e sorts before o in partition order.
func (e Entry) Less(o Entry) bool {
	if !e.Date.Equal(o.Date) {
		return e.Date.Before(o.Date)
	}
	return e.ID < o.ID
}

// StartingBalanceEntry builds the synthetic first entry for a new partition.
// The date must be strictly before any real transaction so that every later
// entry builds on the starting balance.
func StartingBalanceEntry(subject Subject, balance Money, date Date) Entry {
	return Entry{
		Subject:      subject,
		Change:       balance,
		RunningTotal: balance,
		Date:         date,
		Description:  "Starting balance",
	}
}
