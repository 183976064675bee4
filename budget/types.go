/*
Package budget implements bi-weekly paycheck planning.

PURPOSE:
  Splits a gross paycheck across bill reserves, savings goals, and two
  7-day spending weeks, records every monetary event as a transaction,
  and carries unspent or overspent amounts forward: week 1 rolls into
  week 2, week 2 rolls into the default savings account.

KEY CONCEPTS IN THIS FILE (types.go):
  - Account: A savings goal with optional auto-save per paycheck
  - Bill: A recurring payment with a per-paycheck reserve rule
  - Week: One 7-day spending period; two consecutive weeks form a pay period
  - Transaction: A monetary event (income, spending, bill pay, saving, rollover)
  - SavingsRule: Tagged fixed-dollar vs percentage-of-paycheck reserve

DESIGN PRINCIPLES:
  1. Balances live in the ledger package, never as settable fields
  2. Rollover transactions carry a structural origin key (SourceWeek),
     never description text
  3. All amounts are ledger.Money (decimal), never float64

SEE ALSO:
  - ledger: Balance-history engine the transactions feed
  - book.go: The only writer of transactions and ledger entries
  - rollover.go: The Pending -> Applied week state machine
*/
package budget

import (
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// ACTIVATION PERIODS - Seasonal/temporary subjects
// =============================================================================

// ActivationPeriod is a half-open date interval [Start, End) during which a
// subject participates in paycheck deductions. A nil End means open-ended.
type ActivationPeriod struct {
	Start ledger.Date  `json:"start"`
	End   *ledger.Date `json:"end,omitempty"`
}

func (p ActivationPeriod) Contains(d ledger.Date) bool {
	if d.Before(p.Start) {
		return false
	}
	return p.End == nil || d.Before(*p.End)
}

// activeOn reports whether any period contains d. A subject with no
// periods at all is always active.
func activeOn(periods []ActivationPeriod, d ledger.Date) bool {
	if len(periods) == 0 {
		return true
	}
	for _, p := range periods {
		if p.Contains(d) {
			return true
		}
	}
	return false
}

// =============================================================================
// ACCOUNT - A savings goal
// =============================================================================

type Account struct {
	ID             string
	Name           string
	GoalAmount     ledger.Money
	AutoSaveAmount ledger.Money

	// IsDefaultSave marks the account that receives end-of-period
	// rollovers. At most one account has this set; the first account
	// ever created becomes the default automatically.
	IsDefaultSave bool

	Activation []ActivationPeriod
}

func (a Account) Subject() ledger.Subject       { return ledger.AccountSubject(a.ID) }
func (a Account) ActiveOn(d ledger.Date) bool   { return activeOn(a.Activation, d) }

// GoalProgress returns progress toward the goal as a 0-100 percentage.
func (a Account) GoalProgress(balance ledger.Money) float64 {
	if !a.GoalAmount.IsPositive() {
		return 0
	}
	pct := balance.Div(a.GoalAmount.Value).Mul(decimal.NewFromInt(100)).Float64()
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// GoalRemaining returns the amount still needed to reach the goal.
func (a Account) GoalRemaining(balance ledger.Money) ledger.Money {
	if !a.GoalAmount.IsPositive() {
		return ledger.Zero()
	}
	remaining := a.GoalAmount.Sub(balance)
	if remaining.IsNegative() {
		return ledger.Zero()
	}
	return remaining
}

// =============================================================================
// SAVINGS RULE - Fixed dollars vs percentage of paycheck
// =============================================================================

type RuleKind string

const (
	RuleFixed      RuleKind = "fixed"
	RulePercentage RuleKind = "percentage"
)

// SavingsRule is how much to reserve for a bill each paycheck: either a
// fixed dollar amount or a fraction of the gross paycheck.
type SavingsRule struct {
	Kind     RuleKind
	Fixed    ledger.Money    // RuleFixed
	Fraction decimal.Decimal // RulePercentage, in (0, 1)
}

func FixedSavings(amount ledger.Money) SavingsRule {
	return SavingsRule{Kind: RuleFixed, Fixed: amount}
}

func PercentageSavings(fraction decimal.Decimal) SavingsRule {
	return SavingsRule{Kind: RulePercentage, Fraction: fraction}
}

// SavingsRuleFromLegacy decodes the historical dual encoding: values below
// 1.0 mean a fraction of the gross paycheck, values at or above 1.0 mean
// fixed dollars. The encoding cannot express "$0.50 fixed"; that ambiguity
// is inherited, not resolvable here.
func SavingsRuleFromLegacy(v float64) SavingsRule {
	if v < 1.0 {
		return PercentageSavings(decimal.NewFromFloat(v))
	}
	return FixedSavings(ledger.NewMoney(v))
}

// AmountFor returns the reserve for one paycheck of the given gross.
func (r SavingsRule) AmountFor(gross ledger.Money) ledger.Money {
	if r.Kind == RulePercentage {
		return gross.Mul(r.Fraction)
	}
	return r.Fixed
}

// =============================================================================
// BILL - A recurring payment reserve
// =============================================================================

type Bill struct {
	ID               string
	Name             string
	BillType         string
	PaymentFrequency string
	TypicalAmount    ledger.Money
	Savings          SavingsRule
	Activation       []ActivationPeriod
}

func (b Bill) Subject() ledger.Subject     { return ledger.BillSubject(b.ID) }
func (b Bill) ActiveOn(d ledger.Date) bool { return activeOn(b.Activation, d) }

// =============================================================================
// WEEK - One 7-day spending period
// =============================================================================

type RolloverState string

const (
	RolloverPending RolloverState = "pending"
	RolloverApplied RolloverState = "applied"
)

type Week struct {
	Number    int
	StartDate ledger.Date
	EndDate   ledger.Date

	// BaseAllocation is the money assigned at paycheck time, before any
	// rollovers. Rollovers are separate transactions; this field never
	// includes them.
	BaseAllocation ledger.Money

	RolloverState RolloverState
}

// IsFirstOfPair reports whether this is the odd (first) week of its
// bi-weekly pay period.
func (w Week) IsFirstOfPair() bool { return w.Number%2 == 1 }

// =============================================================================
// TRANSACTION - A monetary event
// =============================================================================

type TxKind string

const (
	TxIncome   TxKind = "income"
	TxSpending TxKind = "spending"
	TxBillPay  TxKind = "bill_pay"
	TxSaving   TxKind = "saving"
	TxRollover TxKind = "rollover"
)

// Transaction records one monetary event. Amount is signed: positive means
// money entering the referenced subject or week, negative means leaving.
type Transaction struct {
	ID          string
	Kind        TxKind
	WeekNumber  int
	Amount      ledger.Money
	Date        ledger.Date
	Description string
	Category    string

	// Subject is the Account or Bill this transaction affects, if any.
	// Only Saving and BillPay transactions touch the ledger.
	Subject ledger.Subject

	// TransferGroupID links the two legs of an account-to-account transfer.
	TransferGroupID string

	// SourceWeek is the structural rollover-origin key: nonzero only on
	// transactions the rollover engine generated to carry that week's
	// surplus or deficit. Removal-before-reapply is keyed on this, never
	// on description text.
	SourceWeek int
}

// AffectsSubject reports whether this transaction owns a ledger entry.
func (t Transaction) AffectsSubject() bool {
	return !t.Subject.IsZero() && (t.Kind == TxSaving || t.Kind == TxBillPay)
}

// LedgerDelta is the signed balance change for the referenced subject:
// +amount for Saving, -amount for BillPay.
func (t Transaction) LedgerDelta() ledger.Money {
	switch t.Kind {
	case TxSaving:
		return t.Amount
	case TxBillPay:
		return t.Amount.Neg()
	default:
		return ledger.Zero()
	}
}

// EngineGenerated reports whether the rollover engine created this
// transaction. Engine-generated transactions never re-trigger rollover
// recomputation.
func (t Transaction) EngineGenerated() bool { return t.SourceWeek != 0 }

// =============================================================================
// COMPUTED RESULTS
// =============================================================================

// PaycheckSplit is how a gross paycheck divides before any spending.
type PaycheckSplit struct {
	Gross             ledger.Money
	BillsReserved     ledger.Money
	AccountsAutoSaved ledger.Money
	Remaining         ledger.Money
	Week1Allocation   ledger.Money
	Week2Allocation   ledger.Money
	PaycheckDate      ledger.Date
	PeriodStart       ledger.Date
}

// Rollover is a week's surplus (positive) or deficit (negative).
type Rollover struct {
	WeekNumber int
	Allocated  ledger.Money // base allocation + rollover-in
	Spent      ledger.Money // spending + bill payments
	Amount     ledger.Money // Allocated - Spent
}

// WeekSummary aggregates a week's transactions by kind.
type WeekSummary struct {
	Week          Week
	TotalIncome   ledger.Money
	TotalSpending ledger.Money
	TotalBills    ledger.Money
	TotalSavings  ledger.Money
	Transactions  int
}

// PeriodSummary covers one bi-weekly pay period (a week pair).
type PeriodSummary struct {
	FirstWeek  WeekSummary
	SecondWeek WeekSummary
}

// Totals is the all-time income vs outflow picture.
type Totals struct {
	Income   ledger.Money
	Spending ledger.Money
	Bills    ledger.Money
	Savings  ledger.Money
}

func (t Totals) Net() ledger.Money {
	return t.Income.Sub(t.Spending).Sub(t.Bills)
}
