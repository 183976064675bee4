/*
splitter.go - Paycheck splitting and application

PURPOSE:
  Computes how a gross bi-weekly paycheck divides into bill reserves,
  account auto-saves, and two week allocations, then applies the split:
  creates the week pair, records the income and per-subject saving
  transactions, and runs a full rollover sweep (new weeks can make
  previously blocked rollovers eligible).

SPLIT POLICY:
  The remainder is split evenly between the two weeks. The ratio is a
  pluggable function, not user-configurable today.
*/
package budget

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/ledger"
)

// SplitRatio divides the post-deduction remainder between the two weeks.
type SplitRatio func(remaining ledger.Money) (week1, week2 ledger.Money)

// EvenSplit is the current policy: 50/50.
func EvenSplit(remaining ledger.Money) (ledger.Money, ledger.Money) {
	half := remaining.Div(decimal.NewFromInt(2))
	return half, remaining.Sub(half)
}

// =============================================================================
// SPLITTER
// =============================================================================

type Splitter struct {
	store    Store
	calendar *Calendar
	book     *Book
	engine   *Engine
	ratio    SplitRatio
}

func NewSplitter(store Store, calendar *Calendar, book *Book, engine *Engine, ratio SplitRatio) *Splitter {
	if ratio == nil {
		ratio = EvenSplit
	}
	return &Splitter{store: store, calendar: calendar, book: book, engine: engine, ratio: ratio}
}

// Split computes the paycheck division without writing anything.
// Deductions are restricted to bills and accounts active on periodStart.
func (s *Splitter) Split(ctx context.Context, gross ledger.Money, paycheckDate, periodStart ledger.Date) (PaycheckSplit, error) {
	if gross.IsNegative() {
		return PaycheckSplit{}, &InvalidAmountError{Op: "split paycheck", Amount: gross}
	}

	bills, err := s.store.Bills(ctx)
	if err != nil {
		return PaycheckSplit{}, err
	}
	billsReserved := ledger.Zero()
	for _, b := range bills {
		if b.ActiveOn(periodStart) {
			billsReserved = billsReserved.Add(b.Savings.AmountFor(gross))
		}
	}

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return PaycheckSplit{}, err
	}
	autoSaved := ledger.Zero()
	for _, a := range accounts {
		if a.ActiveOn(periodStart) {
			autoSaved = autoSaved.Add(a.AutoSaveAmount)
		}
	}

	remaining := gross.Sub(billsReserved).Sub(autoSaved)
	week1, week2 := s.ratio(remaining)

	return PaycheckSplit{
		Gross:             gross,
		BillsReserved:     billsReserved,
		AccountsAutoSaved: autoSaved,
		Remaining:         remaining,
		Week1Allocation:   week1,
		Week2Allocation:   week2,
		PaycheckDate:      paycheckDate,
		PeriodStart:       periodStart,
	}, nil
}

// Apply writes a computed split: two new weeks, the income transaction,
// one saving transaction per active bill and account, then a full sweep.
func (s *Splitter) Apply(ctx context.Context, split PaycheckSplit) error {
	periodEnd := split.PeriodStart.AddDays(2*WeekLength - 1)
	if conflict, err := s.calendar.Overlapping(ctx, split.PeriodStart, periodEnd); err != nil {
		return err
	} else if conflict != nil {
		return &OverlappingPeriodError{Start: split.PeriodStart, End: periodEnd, ExistingWeek: conflict.Number}
	}

	week1, err := s.calendar.CreateWeek(ctx, split.PeriodStart)
	if err != nil {
		return err
	}
	week2, err := s.calendar.CreateWeek(ctx, split.PeriodStart.AddDays(WeekLength))
	if err != nil {
		return err
	}

	week1.BaseAllocation = split.Week1Allocation
	week2.BaseAllocation = split.Week2Allocation
	if err := s.store.UpdateWeek(ctx, week1); err != nil {
		return err
	}
	if err := s.store.UpdateWeek(ctx, week2); err != nil {
		return err
	}

	if _, err := s.book.recordQuiet(ctx, Transaction{
		Kind:        TxIncome,
		WeekNumber:  week1.Number,
		Amount:      split.Gross,
		Date:        split.PaycheckDate,
		Description: "Bi-weekly paycheck",
	}); err != nil {
		return err
	}

	bills, err := s.store.Bills(ctx)
	if err != nil {
		return err
	}
	for _, b := range bills {
		if !b.ActiveOn(split.PeriodStart) {
			continue
		}
		reserve := b.Savings.AmountFor(split.Gross)
		if reserve.IsZero() {
			continue
		}
		if _, err := s.book.recordQuiet(ctx, Transaction{
			Kind:        TxSaving,
			WeekNumber:  week1.Number,
			Amount:      reserve,
			Date:        split.PaycheckDate,
			Description: fmt.Sprintf("Reserve for %s", b.Name),
			Subject:     b.Subject(),
		}); err != nil {
			return err
		}
	}

	accounts, err := s.store.Accounts(ctx)
	if err != nil {
		return err
	}
	for _, a := range accounts {
		if !a.ActiveOn(split.PeriodStart) || !a.AutoSaveAmount.IsPositive() {
			continue
		}
		if _, err := s.book.recordQuiet(ctx, Transaction{
			Kind:        TxSaving,
			WeekNumber:  week1.Number,
			Amount:      a.AutoSaveAmount,
			Date:        split.PaycheckDate,
			Description: fmt.Sprintf("Auto-save to %s", a.Name),
			Subject:     a.Subject(),
		}); err != nil {
			return err
		}
	}

	// New weeks may make previously blocked rollovers eligible.
	return s.engine.Sweep(ctx)
}
