/*
rollover.go - Week rollover state machine

PURPOSE:
  Carries each week's surplus or deficit forward: the odd week of a pair
  rolls into the even week, the even week rolls into the default savings
  account. Rollovers are re-derived whenever upstream data changes, so
  applying one is always remove-then-recreate, keyed on the structural
  (source week, target) pair - never on description text.

STATE MACHINE (per week):
  Pending -> Applied    once the week is complete and its rollover has
                        been carried to its target
  Applied -> Pending    forced re-derivation when a transaction in the
                        pair is recorded, amended, or deleted

ELIGIBILITY:
  A week is complete when a week with the next number exists, or today
  is strictly after its end date.

SWEEP BOUND:
  Applying an odd week's rollover re-pends its even target, so a sweep
  loops until a full pass changes nothing. The pass limit bounds
  pathological cascades; hitting it returns IncompleteSweepError and
  leaves the remaining weeks Pending for the next sweep.

SEE ALSO:
  - book.go: Creates/deletes the rollover transactions (quiet paths)
  - splitter.go: Runs a full sweep after applying each paycheck
*/
package budget

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/ledger"
)

// DefaultSweepPassLimit bounds sweep iterations when no explicit limit is
// configured.
const DefaultSweepPassLimit = 10

// =============================================================================
// ENGINE - Rollover computation and application
// =============================================================================

type Engine struct {
	store     Store
	book      *Book
	log       zerolog.Logger
	passLimit int
	now       func() ledger.Date
}

func NewEngine(store Store, book *Book, log zerolog.Logger, passLimit int, now func() ledger.Date) *Engine {
	if passLimit <= 0 {
		passLimit = DefaultSweepPassLimit
	}
	if now == nil {
		now = ledger.Today
	}
	return &Engine{store: store, book: book, log: log, passLimit: passLimit, now: now}
}

// Compute derives a week's rollover from its transactions:
// allocated = base allocation + rollover-in, spent = spending + bill pay.
func (e *Engine) Compute(ctx context.Context, w Week) (Rollover, error) {
	txs, err := e.store.TransactionsByWeek(ctx, w.Number)
	if err != nil {
		return Rollover{}, err
	}

	allocated := w.BaseAllocation
	spent := ledger.Zero()
	for _, t := range txs {
		switch t.Kind {
		case TxRollover:
			allocated = allocated.Add(t.Amount)
		case TxSpending, TxBillPay:
			spent = spent.Add(t.Amount)
		}
	}

	return Rollover{
		WeekNumber: w.Number,
		Allocated:  allocated,
		Spent:      spent,
		Amount:     allocated.Sub(spent),
	}, nil
}

// Complete reports whether the week is eligible for rollover: a following
// week exists, or today is strictly after the week's end date.
func (e *Engine) Complete(ctx context.Context, w Week) (bool, error) {
	next, err := e.store.WeekByNumber(ctx, w.Number+1)
	if err != nil {
		return false, err
	}
	if next != nil {
		return true, nil
	}
	return e.now().After(w.EndDate), nil
}

// Apply carries a computed rollover to its target: the pair's even week
// for an odd source, the default savings account for an even source.
// Returns true if anything was written.
func (e *Engine) Apply(ctx context.Context, r Rollover, source Week) (bool, error) {
	if source.IsFirstOfPair() {
		target, err := e.store.WeekByNumber(ctx, source.Number+1)
		if err != nil {
			return false, err
		}
		if target == nil {
			return false, &ReferenceNotFoundError{Kind: "week", Ref: "rollover target"}
		}
		return e.applyToWeek(ctx, r, source, *target)
	}
	return e.applyToSavings(ctx, r, source)
}

// applyToWeek removes any previously generated rollover transaction from
// this source into the target week, then recreates it with the current
// amount. Zero amounts are skipped (removal still happens).
func (e *Engine) applyToWeek(ctx context.Context, r Rollover, source, target Week) (bool, error) {
	changed, err := e.removePrior(ctx, source.Number)
	if err != nil {
		return false, err
	}

	if !r.Amount.IsZero() {
		_, err = e.book.recordQuiet(ctx, Transaction{
			Kind:        TxRollover,
			WeekNumber:  target.Number,
			Amount:      r.Amount,
			Date:        target.StartDate,
			Description: rolloverDescription(r, false),
			SourceWeek:  source.Number,
		})
		if err != nil {
			return false, err
		}
		changed = true
	}

	if changed && target.RolloverState == RolloverApplied {
		// The target's own rollover is stale now.
		target.RolloverState = RolloverPending
		if err := e.store.UpdateWeek(ctx, target); err != nil {
			return false, err
		}
	}
	return changed, nil
}

// applyToSavings sweeps an even week's surplus or deficit into the
// default savings account as a Saving transaction (so it also writes a
// ledger entry). Same remove-then-recreate pattern.
func (e *Engine) applyToSavings(ctx context.Context, r Rollover, source Week) (bool, error) {
	account, err := e.store.DefaultSavingsAccount(ctx)
	if err != nil {
		return false, err
	}
	if account == nil {
		return false, ErrMissingDefaultSavings
	}

	changed, err := e.removePrior(ctx, source.Number)
	if err != nil {
		return false, err
	}

	if !r.Amount.IsZero() {
		_, err = e.book.recordQuiet(ctx, Transaction{
			Kind:        TxSaving,
			WeekNumber:  source.Number,
			Amount:      r.Amount,
			Date:        source.EndDate,
			Description: rolloverDescription(r, true),
			Subject:     account.Subject(),
			SourceWeek:  source.Number,
		})
		if err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

// removePrior deletes every transaction previously generated to carry this
// source week's rollover. The lookup is structural (source_week column).
func (e *Engine) removePrior(ctx context.Context, sourceWeek int) (bool, error) {
	prior, err := e.store.TransactionsBySourceWeek(ctx, sourceWeek)
	if err != nil {
		return false, err
	}
	for _, t := range prior {
		if err := e.book.deleteQuiet(ctx, t.ID); err != nil {
			return false, err
		}
	}
	return len(prior) > 0, nil
}

// =============================================================================
// SWEEP - Bounded fixed-point iteration over pending weeks
// =============================================================================

// Sweep processes every eligible Pending week in ascending order, repeating
// until a full pass makes no change or the pass limit is hit.
func (e *Engine) Sweep(ctx context.Context) error {
	for pass := 1; pass <= e.passLimit; pass++ {
		changed, err := e.sweepPass(ctx)
		if err != nil {
			return err
		}
		if !changed {
			e.log.Debug().Int("passes", pass).Msg("rollover sweep reached fixed point")
			return nil
		}
	}

	pending, err := e.pendingWeekNumbers(ctx)
	if err != nil {
		return err
	}
	e.log.Warn().Int("pass_limit", e.passLimit).Ints("pending_weeks", pending).
		Msg("rollover sweep truncated by pass limit")
	return &IncompleteSweepError{Passes: e.passLimit, Pending: pending}
}

func (e *Engine) sweepPass(ctx context.Context) (bool, error) {
	weeks, err := e.store.Weeks(ctx)
	if err != nil {
		return false, err
	}

	changed := false
	for _, snapshot := range weeks {
		// Re-read: an earlier week in this pass may have re-pended us.
		w, err := e.store.WeekByNumber(ctx, snapshot.Number)
		if err != nil {
			return false, err
		}
		if w == nil || w.RolloverState != RolloverPending {
			continue
		}

		complete, err := e.Complete(ctx, *w)
		if err != nil {
			return false, err
		}
		if !complete {
			continue
		}
		if w.IsFirstOfPair() {
			// Complete by date but the target week does not exist yet;
			// nothing to carry the surplus into.
			next, err := e.store.WeekByNumber(ctx, w.Number+1)
			if err != nil {
				return false, err
			}
			if next == nil {
				continue
			}
		}

		r, err := e.Compute(ctx, *w)
		if err != nil {
			return false, err
		}

		_, err = e.Apply(ctx, r, *w)
		if errors.Is(err, ErrMissingDefaultSavings) {
			// Non-fatal: money is simply not swept; the week stays
			// Pending and a later sweep retries.
			e.log.Warn().Int("week", w.Number).Msg("skipping savings rollover: no default savings account")
			continue
		}
		if err != nil {
			return false, err
		}

		w.RolloverState = RolloverApplied
		if err := e.store.UpdateWeek(ctx, *w); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

func (e *Engine) pendingWeekNumbers(ctx context.Context) ([]int, error) {
	weeks, err := e.store.Weeks(ctx)
	if err != nil {
		return nil, err
	}
	var pending []int
	for _, w := range weeks {
		if w.RolloverState == RolloverPending {
			pending = append(pending, w.Number)
		}
	}
	return pending, nil
}

// WeekPairChanged re-pends both weeks of the pair containing weekNumber
// and runs a sweep. Called by the Book after transaction changes.
func (e *Engine) WeekPairChanged(ctx context.Context, weekNumber int) error {
	first, second := PairOf(weekNumber)
	for _, n := range []int{first, second} {
		w, err := e.store.WeekByNumber(ctx, n)
		if err != nil {
			return err
		}
		if w == nil || w.RolloverState == RolloverPending {
			continue
		}
		w.RolloverState = RolloverPending
		if err := e.store.UpdateWeek(ctx, *w); err != nil {
			return err
		}
	}
	return e.Sweep(ctx)
}

func rolloverDescription(r Rollover, toSavings bool) string {
	switch {
	case toSavings:
		return "End-of-period rollover"
	case r.Amount.IsNegative():
		return "Deficit rollover"
	default:
		return "Surplus rollover"
	}
}
