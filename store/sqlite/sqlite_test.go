package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/ledger"
	"github.com/warp/budget-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(month time.Month, d int) ledger.Date {
	return ledger.NewDate(2025, month, d)
}

// =============================================================================
// ROUND TRIPS
// =============================================================================

func TestStore_AccountRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	end := date(time.June, 1)
	account := budget.Account{
		ID:             "acc-1",
		Name:           "Emergency",
		GoalAmount:     ledger.NewMoney(5000),
		AutoSaveAmount: ledger.NewMoney(200),
		IsDefaultSave:  true,
		Activation: []budget.ActivationPeriod{
			{Start: date(time.January, 1), End: &end},
		},
	}
	require.NoError(t, store.InsertAccount(ctx, account))

	got, err := store.AccountByID(ctx, "acc-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, account.Name, got.Name)
	assert.True(t, got.GoalAmount.Equal(account.GoalAmount))
	assert.True(t, got.IsDefaultSave)
	require.Len(t, got.Activation, 1)
	assert.True(t, got.Activation[0].Start.Equal(account.Activation[0].Start))
	require.NotNil(t, got.Activation[0].End)
	assert.True(t, got.Activation[0].End.Equal(end))

	missing, err := store.AccountByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_BillSavingsRuleRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fixed := budget.Bill{
		ID: "bill-1", Name: "Rent", BillType: "housing", PaymentFrequency: "monthly",
		TypicalAmount: ledger.NewMoney(600),
		Savings:       budget.FixedSavings(ledger.NewMoney(300)),
	}
	pct := budget.Bill{
		ID: "bill-2", Name: "Insurance", BillType: "insurance", PaymentFrequency: "monthly",
		TypicalAmount: ledger.NewMoney(120),
		Savings:       budget.PercentageSavings(decimal.NewFromFloat(0.1)),
	}
	require.NoError(t, store.InsertBill(ctx, fixed))
	require.NoError(t, store.InsertBill(ctx, pct))

	gotFixed, err := store.BillByID(ctx, "bill-1")
	require.NoError(t, err)
	require.NotNil(t, gotFixed)
	assert.Equal(t, budget.RuleFixed, gotFixed.Savings.Kind)
	assert.True(t, gotFixed.Savings.Fixed.Equal(ledger.NewMoney(300)))

	gotPct, err := store.BillByID(ctx, "bill-2")
	require.NoError(t, err)
	require.NotNil(t, gotPct)
	assert.Equal(t, budget.RulePercentage, gotPct.Savings.Kind)
	assert.True(t, gotPct.Savings.Fraction.Equal(decimal.NewFromFloat(0.1)))
}

func TestStore_DefaultSavingsAccount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertAccount(ctx, budget.Account{ID: "a", Name: "A", IsDefaultSave: true}))
	require.NoError(t, store.InsertAccount(ctx, budget.Account{ID: "b", Name: "B"}))

	def, err := store.DefaultSavingsAccount(ctx)
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, "a", def.ID)

	require.NoError(t, store.ClearDefaultSavings(ctx))
	def, err = store.DefaultSavingsAccount(ctx)
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestStore_WeekRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	week := budget.Week{
		Number:         1,
		StartDate:      date(time.January, 6),
		EndDate:        date(time.January, 12),
		BaseAllocation: ledger.NewMoney(1425),
		RolloverState:  budget.RolloverPending,
	}
	require.NoError(t, store.InsertWeek(ctx, week))

	got, err := store.WeekByNumber(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.StartDate.Equal(week.StartDate))
	assert.True(t, got.BaseAllocation.Equal(week.BaseAllocation))
	assert.Equal(t, budget.RolloverPending, got.RolloverState)

	got.RolloverState = budget.RolloverApplied
	require.NoError(t, store.UpdateWeek(ctx, *got))
	got, err = store.WeekByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, budget.RolloverApplied, got.RolloverState)

	latest, err := store.LatestWeek(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 1, latest.Number)
}

func TestStore_TransactionSubjectColumns(t *testing.T) {
	// GIVEN: Transactions referencing a bill, an account, and nothing
	// WHEN: They round-trip
	// THEN: The subject is reconstructed from the right FK column

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertAccount(ctx, budget.Account{ID: "acc-1", Name: "Emergency"}))
	require.NoError(t, store.InsertBill(ctx, budget.Bill{ID: "bill-1", Name: "Rent"}))
	require.NoError(t, store.InsertWeek(ctx, budget.Week{
		Number: 1, StartDate: date(time.January, 6), EndDate: date(time.January, 12),
	}))

	txs := []budget.Transaction{
		{ID: "t1", Kind: budget.TxSaving, WeekNumber: 1, Amount: ledger.NewMoney(200),
			Date: date(time.January, 6), Subject: ledger.AccountSubject("acc-1"), SourceWeek: 2},
		{ID: "t2", Kind: budget.TxBillPay, WeekNumber: 1, Amount: ledger.NewMoney(300),
			Date: date(time.January, 7), Subject: ledger.BillSubject("bill-1")},
		{ID: "t3", Kind: budget.TxSpending, WeekNumber: 1, Amount: ledger.NewMoney(50),
			Date: date(time.January, 8)},
	}
	for _, tx := range txs {
		require.NoError(t, store.InsertTransaction(ctx, tx))
	}

	t1, err := store.TransactionByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, ledger.AccountSubject("acc-1"), t1.Subject)
	assert.Equal(t, 2, t1.SourceWeek)

	t2, err := store.TransactionByID(ctx, "t2")
	require.NoError(t, err)
	assert.Equal(t, ledger.BillSubject("bill-1"), t2.Subject)

	t3, err := store.TransactionByID(ctx, "t3")
	require.NoError(t, err)
	assert.True(t, t3.Subject.IsZero())

	bySource, err := store.TransactionsBySourceWeek(ctx, 2)
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "t1", bySource[0].ID)
}

func TestStore_PartitionOrdering(t *testing.T) {
	// GIVEN: Entries inserted out of chronological order, two on the same day
	// WHEN: The partition is read
	// THEN: Order is (date, id) ascending

	store := newTestStore(t)
	ctx := context.Background()
	subject := ledger.AccountSubject("acc-1")

	days := []int{10, 6, 8, 8}
	var ids []int64
	for i, d := range days {
		e, err := store.InsertEntry(ctx, ledger.Entry{
			Subject: subject,
			Change:  ledger.NewMoney(float64(i + 1)),
			Date:    date(time.January, d),
		})
		require.NoError(t, err)
		ids = append(ids, e.ID)
	}

	entries, err := store.Partition(ctx, subject)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, ids[1], entries[0].ID) // Jan 6
	assert.Equal(t, ids[2], entries[1].ID) // Jan 8, inserted first
	assert.Equal(t, ids[3], entries[2].ID) // Jan 8, inserted second
	assert.Equal(t, ids[0], entries[3].ID) // Jan 10
}

func TestStore_EntryByOrigin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.InsertWeek(ctx, budget.Week{
		Number: 1, StartDate: date(time.January, 6), EndDate: date(time.January, 12),
	}))
	require.NoError(t, store.InsertAccount(ctx, budget.Account{ID: "acc-1", Name: "A"}))
	require.NoError(t, store.InsertTransaction(ctx, budget.Transaction{
		ID: "t1", Kind: budget.TxSaving, WeekNumber: 1,
		Amount: ledger.NewMoney(10), Date: date(time.January, 6),
		Subject: ledger.AccountSubject("acc-1"),
	}))
	_, err := store.InsertEntry(ctx, ledger.Entry{
		Subject: ledger.AccountSubject("acc-1"), Change: ledger.NewMoney(10),
		Date: date(time.January, 6), OriginTxID: "t1",
	})
	require.NoError(t, err)

	got, err := store.EntryByOrigin(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "t1", got.OriginTxID)

	none, err := store.EntryByOrigin(ctx, "ghost")
	require.NoError(t, err)
	assert.Nil(t, none)

	blank, err := store.EntryByOrigin(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, blank, "starting-balance entries are not addressable by origin")
}

// =============================================================================
// TRANSACTION SCOPES
// =============================================================================

func TestStore_WithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: A transaction scope that writes a week then fails
	// WHEN: WithTx returns
	// THEN: The week is gone

	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(s budget.Store) error {
		if err := s.InsertWeek(ctx, budget.Week{
			Number: 1, StartDate: date(time.January, 6), EndDate: date(time.January, 12),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	week, err := store.WeekByNumber(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, week)
}

func TestStore_WithTx_CommitsOnSuccess(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(s budget.Store) error {
		return s.InsertWeek(ctx, budget.Week{
			Number: 1, StartDate: date(time.January, 6), EndDate: date(time.January, 12),
		})
	})
	require.NoError(t, err)

	week, err := store.WeekByNumber(ctx, 1)
	require.NoError(t, err)
	assert.NotNil(t, week)
}
