/*
book.go - Append-and-amend transaction log

PURPOSE:
  The Book is the single writer of transactions and, through the ledger
  engine, of ledger entries. Recording a transaction that affects a
  subject synchronously appends the signed delta to that subject's
  partition; amending or deleting mirrors the change.

LEDGER BINDING (invariant I2):
  Every transaction that affects a subject has exactly one ledger entry
  whose origin is the transaction ID. Amending can move the binding:
  a field change may make the transaction start affecting a subject
  (create entry), stop affecting one (remove entry), or affect a
  different one (remove old, create new).

ROLLOVER TRIGGERING:
  Recording or amending a Spending or Saving transaction re-derives the
  rollovers of that transaction's week pair. Engine-generated rollover
  legs never re-trigger; that would recurse.

SEE ALSO:
  - ledger/ledger.go: The recompute engine behind Append/Update/Remove
  - rollover.go: The trigger target
*/
package budget

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/warp/budget-engine/ledger"
)

// RecomputeTrigger re-derives rollovers after upstream data changes.
// Implemented by the rollover engine.
type RecomputeTrigger interface {
	WeekPairChanged(ctx context.Context, weekNumber int) error
}

// =============================================================================
// BOOK - Transaction log
// =============================================================================

type Book struct {
	store   Store
	entries *ledger.Ledger
	trigger RecomputeTrigger
}

func NewBook(store Store, entries *ledger.Ledger) *Book {
	return &Book{store: store, entries: entries}
}

// BindTrigger wires the rollover engine in after construction. The Book
// and the engine reference each other; the engine is built second.
func (b *Book) BindTrigger(t RecomputeTrigger) { b.trigger = t }

// Record validates and persists a transaction, appends its ledger entry if
// it affects a subject, and re-derives the week pair's rollovers.
func (b *Book) Record(ctx context.Context, t Transaction) (Transaction, error) {
	return b.record(ctx, t, true)
}

// recordQuiet is Record without the rollover trigger. Used by the splitter
// and the rollover engine, which run their own sweeps.
func (b *Book) recordQuiet(ctx context.Context, t Transaction) (Transaction, error) {
	return b.record(ctx, t, false)
}

func (b *Book) record(ctx context.Context, t Transaction, triggerRecompute bool) (Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if err := b.validateRefs(ctx, t); err != nil {
		return Transaction{}, err
	}

	if err := b.store.InsertTransaction(ctx, t); err != nil {
		return Transaction{}, err
	}
	if t.AffectsSubject() {
		if _, err := b.entries.Append(ctx, t.Subject, t.LedgerDelta(), t.Date, t.ID); err != nil {
			return Transaction{}, err
		}
	}

	if triggerRecompute && b.shouldTrigger(t) {
		if err := b.trigger.WeekPairChanged(ctx, t.WeekNumber); err != nil {
			return Transaction{}, err
		}
	}
	return t, nil
}

// TransactionPatch is a partial update. Nil fields are left unchanged.
type TransactionPatch struct {
	Kind        *TxKind
	WeekNumber  *int
	Amount      *ledger.Money
	Date        *ledger.Date
	Description *string
	Category    *string
	Subject     *ledger.Subject // set to &ledger.Subject{} to detach
}

// Amend applies a patch to an existing transaction and reconciles its
// ledger binding and rollovers.
func (b *Book) Amend(ctx context.Context, id string, patch TransactionPatch) error {
	old, err := b.store.TransactionByID(ctx, id)
	if err != nil {
		return err
	}
	if old == nil {
		return &ReferenceNotFoundError{Kind: "transaction", Ref: id}
	}

	updated := *old
	if patch.Kind != nil {
		updated.Kind = *patch.Kind
	}
	if patch.WeekNumber != nil {
		updated.WeekNumber = *patch.WeekNumber
	}
	if patch.Amount != nil {
		updated.Amount = *patch.Amount
	}
	if patch.Date != nil {
		updated.Date = *patch.Date
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Category != nil {
		updated.Category = *patch.Category
	}
	if patch.Subject != nil {
		updated.Subject = *patch.Subject
	}

	if err := b.validateRefs(ctx, updated); err != nil {
		return err
	}
	if err := b.store.UpdateTransaction(ctx, updated); err != nil {
		return err
	}

	// Reconcile the ledger binding across the four transitions:
	// kept, created, removed, moved to another subject.
	switch {
	case old.AffectsSubject() && updated.AffectsSubject() && old.Subject == updated.Subject:
		if err := b.entries.Update(ctx, id, updated.LedgerDelta(), updated.Date); err != nil {
			return err
		}
	case old.AffectsSubject():
		if err := b.entries.Remove(ctx, id); err != nil {
			return err
		}
		if updated.AffectsSubject() {
			if _, err := b.entries.Append(ctx, updated.Subject, updated.LedgerDelta(), updated.Date, id); err != nil {
				return err
			}
		}
	case updated.AffectsSubject():
		if _, err := b.entries.Append(ctx, updated.Subject, updated.LedgerDelta(), updated.Date, id); err != nil {
			return err
		}
	}

	if b.shouldTrigger(*old) || b.shouldTrigger(updated) {
		if err := b.trigger.WeekPairChanged(ctx, old.WeekNumber); err != nil {
			return err
		}
		if updated.WeekNumber != old.WeekNumber {
			if err := b.trigger.WeekPairChanged(ctx, updated.WeekNumber); err != nil {
				return err
			}
		}
	}
	return nil
}

// Delete removes a transaction and its ledger entry, then re-derives the
// week pair's rollovers.
func (b *Book) Delete(ctx context.Context, id string) error {
	return b.delete(ctx, id, true)
}

// deleteQuiet is Delete without the rollover trigger.
func (b *Book) deleteQuiet(ctx context.Context, id string) error {
	return b.delete(ctx, id, false)
}

func (b *Book) delete(ctx context.Context, id string, triggerRecompute bool) error {
	t, err := b.store.TransactionByID(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return &ReferenceNotFoundError{Kind: "transaction", Ref: id}
	}

	// The ledger entry references the transaction row; remove it first.
	// Remove is a no-op for transactions without a ledger entry.
	if err := b.entries.Remove(ctx, id); err != nil {
		return err
	}
	if err := b.store.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if triggerRecompute && b.shouldTrigger(*t) {
		return b.trigger.WeekPairChanged(ctx, t.WeekNumber)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

func (b *Book) shouldTrigger(t Transaction) bool {
	if b.trigger == nil || t.EngineGenerated() {
		return false
	}
	return t.Kind == TxSpending || t.Kind == TxSaving
}

// validateRefs fails fast with ErrReferenceNotFound for unknown weeks or
// subjects.
func (b *Book) validateRefs(ctx context.Context, t Transaction) error {
	w, err := b.store.WeekByNumber(ctx, t.WeekNumber)
	if err != nil {
		return err
	}
	if w == nil {
		return &ReferenceNotFoundError{Kind: "week", Ref: strconv.Itoa(t.WeekNumber)}
	}

	if t.Subject.IsZero() {
		return nil
	}
	switch t.Subject.Kind {
	case ledger.KindAccount:
		a, err := b.store.AccountByID(ctx, t.Subject.ID)
		if err != nil {
			return err
		}
		if a == nil {
			return &ReferenceNotFoundError{Kind: "account", Ref: t.Subject.ID}
		}
	case ledger.KindBill:
		bill, err := b.store.BillByID(ctx, t.Subject.ID)
		if err != nil {
			return err
		}
		if bill == nil {
			return &ReferenceNotFoundError{Kind: "bill", Ref: t.Subject.ID}
		}
	}
	return nil
}
