/*
planner.go - The library surface external collaborators consume

PURPOSE:
  One facade over the whole engine: subjects, transactions, paychecks,
  rollovers, and balance queries. GUI, import tooling, and tests call
  this; nothing outside this package implements ledger logic.

TRANSACTION SCOPES:
  Every mutating operation runs inside a single store transaction. All
  writes commit atomically; any error rolls back everything the
  operation wrote. An IncompleteSweepError is an outcome, not a failure:
  the work done so far commits and the error propagates so the caller
  knows a later sweep must finish the job.

DEPENDENCY INJECTION:
  Components are rebuilt over the per-operation Store handle, so there
  is no ambient session anywhere.
*/
package budget

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// PLANNER - Facade and operation scopes
// =============================================================================

type Planner struct {
	store     TxStore
	log       zerolog.Logger
	passLimit int
	now       func() ledger.Date
	ratio     SplitRatio
}

type Option func(*Planner)

// WithLogger sets the structured logger used by sweeps.
func WithLogger(log zerolog.Logger) Option { return func(p *Planner) { p.log = log } }

// WithSweepPassLimit bounds rollover sweep iterations.
func WithSweepPassLimit(n int) Option { return func(p *Planner) { p.passLimit = n } }

// WithClock overrides "today" for rollover eligibility. Tests use this.
func WithClock(now func() ledger.Date) Option { return func(p *Planner) { p.now = now } }

// WithSplitRatio overrides the even week split.
func WithSplitRatio(r SplitRatio) Option { return func(p *Planner) { p.ratio = r } }

func NewPlanner(store TxStore, opts ...Option) *Planner {
	p := &Planner{
		store:     store,
		log:       zerolog.Nop(),
		passLimit: DefaultSweepPassLimit,
		now:       ledger.Today,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// components wires the engine over one operation's store handle.
func (p *Planner) components(s Store) (*ledger.Ledger, *Book, *Engine, *Calendar, *Splitter) {
	entries := ledger.New(s)
	book := NewBook(s, entries)
	engine := NewEngine(s, book, p.log, p.passLimit, p.now)
	book.BindTrigger(engine)
	calendar := NewCalendar(s)
	splitter := NewSplitter(s, calendar, book, engine, p.ratio)
	return entries, book, engine, calendar, splitter
}

// inTx runs fn in one transaction scope. IncompleteSweepError commits and
// propagates; everything else rolls back.
func (p *Planner) inTx(ctx context.Context, fn func(Store) error) error {
	var incomplete error
	err := p.store.WithTx(ctx, func(s Store) error {
		if err := fn(s); err != nil {
			if errors.Is(err, ErrIncompleteSweep) {
				incomplete = err
				return nil
			}
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}
	return incomplete
}

// =============================================================================
// LEDGER SUBJECTS
// =============================================================================

// NewAccount are the fields for creating a savings account.
type NewAccount struct {
	Name            string
	GoalAmount      ledger.Money
	AutoSaveAmount  ledger.Money
	StartingBalance ledger.Money
	// StartDate dates the synthetic starting-balance entry. It must be
	// strictly before any transaction that will reference the account.
	// Zero means today.
	StartDate  ledger.Date
	Activation []ActivationPeriod
}

// AddAccount creates an account with its starting-balance ledger entry.
// The first account ever created becomes the default savings account.
func (p *Planner) AddAccount(ctx context.Context, na NewAccount) (Account, error) {
	account := Account{
		ID:             uuid.NewString(),
		Name:           na.Name,
		GoalAmount:     na.GoalAmount,
		AutoSaveAmount: na.AutoSaveAmount,
		Activation:     na.Activation,
	}
	err := p.inTx(ctx, func(s Store) error {
		existing, err := s.Accounts(ctx)
		if err != nil {
			return err
		}
		account.IsDefaultSave = len(existing) == 0

		if err := s.InsertAccount(ctx, account); err != nil {
			return err
		}
		entries, _, _, _, _ := p.components(s)
		_, err = entries.Initialize(ctx, account.Subject(), na.StartingBalance, p.startDate(na.StartDate))
		return err
	})
	if err != nil {
		return Account{}, err
	}
	return account, nil
}

// NewBill are the fields for creating a bill reserve.
type NewBill struct {
	Name             string
	BillType         string
	PaymentFrequency string
	TypicalAmount    ledger.Money
	Savings          SavingsRule
	StartingBalance  ledger.Money
	StartDate        ledger.Date
	Activation       []ActivationPeriod
}

// AddBill creates a bill with its starting-balance ledger entry.
func (p *Planner) AddBill(ctx context.Context, nb NewBill) (Bill, error) {
	bill := Bill{
		ID:               uuid.NewString(),
		Name:             nb.Name,
		BillType:         nb.BillType,
		PaymentFrequency: nb.PaymentFrequency,
		TypicalAmount:    nb.TypicalAmount,
		Savings:          nb.Savings,
		Activation:       nb.Activation,
	}
	err := p.inTx(ctx, func(s Store) error {
		if err := s.InsertBill(ctx, bill); err != nil {
			return err
		}
		entries, _, _, _, _ := p.components(s)
		_, err := entries.Initialize(ctx, bill.Subject(), nb.StartingBalance, p.startDate(nb.StartDate))
		return err
	})
	if err != nil {
		return Bill{}, err
	}
	return bill, nil
}

// SetDefaultSavings moves the default flag to the given account. Exactly
// one account holds the flag afterwards.
func (p *Planner) SetDefaultSavings(ctx context.Context, accountID string) error {
	return p.inTx(ctx, func(s Store) error {
		account, err := s.AccountByID(ctx, accountID)
		if err != nil {
			return err
		}
		if account == nil {
			return &ReferenceNotFoundError{Kind: "account", Ref: accountID}
		}
		if err := s.ClearDefaultSavings(ctx); err != nil {
			return err
		}
		account.IsDefaultSave = true
		return s.UpdateAccount(ctx, *account)
	})
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (p *Planner) RecordTransaction(ctx context.Context, t Transaction) (Transaction, error) {
	var recorded Transaction
	err := p.inTx(ctx, func(s Store) error {
		_, book, _, _, _ := p.components(s)
		var err error
		recorded, err = book.Record(ctx, t)
		return err
	})
	return recorded, err
}

func (p *Planner) AmendTransaction(ctx context.Context, id string, patch TransactionPatch) error {
	return p.inTx(ctx, func(s Store) error {
		_, book, _, _, _ := p.components(s)
		return book.Amend(ctx, id, patch)
	})
}

func (p *Planner) DeleteTransaction(ctx context.Context, id string) error {
	return p.inTx(ctx, func(s Store) error {
		_, book, _, _, _ := p.components(s)
		return book.Delete(ctx, id)
	})
}

// Transfer moves money between two accounts as a linked pair of saving
// transactions sharing one transfer group.
func (p *Planner) Transfer(ctx context.Context, fromAccountID, toAccountID string, amount ledger.Money, date ledger.Date, weekNumber int) error {
	if !amount.IsPositive() {
		return &InvalidAmountError{Op: "transfer", Amount: amount}
	}
	group := uuid.NewString()
	return p.inTx(ctx, func(s Store) error {
		_, book, engine, _, _ := p.components(s)
		legs := []Transaction{
			{
				Kind:            TxSaving,
				WeekNumber:      weekNumber,
				Amount:          amount.Neg(),
				Date:            date,
				Description:     "Transfer out",
				Subject:         ledger.AccountSubject(fromAccountID),
				TransferGroupID: group,
			},
			{
				Kind:            TxSaving,
				WeekNumber:      weekNumber,
				Amount:          amount,
				Date:            date,
				Description:     "Transfer in",
				Subject:         ledger.AccountSubject(toAccountID),
				TransferGroupID: group,
			},
		}
		for _, leg := range legs {
			if _, err := book.recordQuiet(ctx, leg); err != nil {
				return err
			}
		}
		return engine.WeekPairChanged(ctx, weekNumber)
	})
}

// =============================================================================
// PAYCHECKS AND ROLLOVERS
// =============================================================================

// ProcessPaycheck splits and applies a gross paycheck: creates the week
// pair, records income and saving transactions, and sweeps rollovers.
func (p *Planner) ProcessPaycheck(ctx context.Context, gross ledger.Money, paycheckDate, periodStart ledger.Date) (PaycheckSplit, error) {
	var split PaycheckSplit
	err := p.inTx(ctx, func(s Store) error {
		_, _, _, _, splitter := p.components(s)
		var err error
		split, err = splitter.Split(ctx, gross, paycheckDate, periodStart)
		if err != nil {
			return err
		}
		return splitter.Apply(ctx, split)
	})
	if err != nil && !errors.Is(err, ErrIncompleteSweep) {
		return PaycheckSplit{}, err
	}
	return split, err
}

func (p *Planner) ComputeWeekRollover(ctx context.Context, weekNumber int) (Rollover, error) {
	_, _, engine, calendar, _ := p.components(p.store)
	w, err := calendar.WeekByNumber(ctx, weekNumber)
	if err != nil {
		return Rollover{}, err
	}
	return engine.Compute(ctx, w)
}

func (p *Planner) SweepRollovers(ctx context.Context) error {
	return p.inTx(ctx, func(s Store) error {
		_, _, engine, _, _ := p.components(s)
		return engine.Sweep(ctx)
	})
}

// =============================================================================
// QUERIES
// =============================================================================

func (p *Planner) CurrentBalance(ctx context.Context, subject ledger.Subject) (ledger.Money, error) {
	return ledger.New(p.store).CurrentBalance(ctx, subject)
}

func (p *Planner) BalanceAt(ctx context.Context, subject ledger.Subject, asOf ledger.Date) (ledger.Money, error) {
	return ledger.New(p.store).BalanceAt(ctx, subject, asOf)
}

func (p *Planner) BalanceHistory(ctx context.Context, subject ledger.Subject) ([]ledger.Entry, error) {
	return ledger.New(p.store).History(ctx, subject)
}

func (p *Planner) Accounts(ctx context.Context) ([]Account, error) { return p.store.Accounts(ctx) }
func (p *Planner) Bills(ctx context.Context) ([]Bill, error)       { return p.store.Bills(ctx) }
func (p *Planner) Weeks(ctx context.Context) ([]Week, error)       { return p.store.Weeks(ctx) }

func (p *Planner) Week(ctx context.Context, number int) (Week, error) {
	return NewCalendar(p.store).WeekByNumber(ctx, number)
}

func (p *Planner) TransactionsByWeek(ctx context.Context, weekNumber int) ([]Transaction, error) {
	return p.store.TransactionsByWeek(ctx, weekNumber)
}

func (p *Planner) startDate(d ledger.Date) ledger.Date {
	if d.IsZero() {
		return p.now()
	}
	return d
}
