package budget_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/ledger"
	"github.com/warp/budget-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestPlanner(t *testing.T, opts ...budget.Option) (*budget.Planner, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	planner := budget.NewPlanner(store, opts...)
	return planner, store
}

func jan(d int) ledger.Date {
	return ledger.NewDate(2025, time.January, d)
}

func money(v float64) ledger.Money {
	return ledger.NewMoney(v)
}

// frozenJan6 pins "today" inside the first test week so date-based
// eligibility never fires; only next-week-exists does.
func frozenJan6() ledger.Date { return jan(6) }

func requireBalance(t *testing.T, p *budget.Planner, subject ledger.Subject, want float64) {
	t.Helper()
	balance, err := p.CurrentBalance(context.Background(), subject)
	require.NoError(t, err)
	require.True(t, balance.Equal(money(want)), "balance %s, want %v", balance, want)
}

// =============================================================================
// END-TO-END PAY PERIOD SCENARIO
// =============================================================================

func TestPlanner_FullPayPeriod(t *testing.T) {
	// GIVEN: Rent bill ($300/paycheck) and Emergency account
	//        ($200 auto-save, $1000 starting balance, default savings)
	// WHEN: A $3350 paycheck is processed, $150 is spent in week 1 and
	//       $200 in week 2, then the next paycheck arrives
	// THEN: Every intermediate figure matches the hand-computed values

	p, _ := newTestPlanner(t, budget.WithClock(frozenJan6))
	ctx := context.Background()

	emergency, err := p.AddAccount(ctx, budget.NewAccount{
		Name:            "Emergency",
		GoalAmount:      money(5000),
		AutoSaveAmount:  money(200),
		StartingBalance: money(1000),
		StartDate:       jan(1),
	})
	require.NoError(t, err)
	assert.True(t, emergency.IsDefaultSave, "first account becomes the default")

	rent, err := p.AddBill(ctx, budget.NewBill{
		Name:             "Rent",
		BillType:         "housing",
		PaymentFrequency: "monthly",
		TypicalAmount:    money(600),
		Savings:          budget.FixedSavings(money(300)),
		StartDate:        jan(1),
	})
	require.NoError(t, err)

	// First paycheck: 3350 - 300 rent - 200 auto-save = 2850, split 1425/1425.
	split, err := p.ProcessPaycheck(ctx, money(3350), jan(6), jan(6))
	require.NoError(t, err)
	assert.True(t, split.BillsReserved.Equal(money(300)))
	assert.True(t, split.AccountsAutoSaved.Equal(money(200)))
	assert.True(t, split.Week1Allocation.Equal(money(1425)))
	assert.True(t, split.Week2Allocation.Equal(money(1425)))

	requireBalance(t, p, emergency.Subject(), 1200)
	requireBalance(t, p, rent.Subject(), 300)

	// Week 1 is complete (week 2 exists), so its untouched allocation has
	// already rolled into week 2.
	week2Rollover, err := p.ComputeWeekRollover(ctx, 2)
	require.NoError(t, err)
	assert.True(t, week2Rollover.Allocated.Equal(money(2850)))

	// Spend 150 in week 1; the rollover is re-derived to 1275.
	_, err = p.RecordTransaction(ctx, budget.Transaction{
		Kind:        budget.TxSpending,
		WeekNumber:  1,
		Amount:      money(150),
		Date:        jan(8),
		Description: "Groceries",
	})
	require.NoError(t, err)

	week1Rollover, err := p.ComputeWeekRollover(ctx, 1)
	require.NoError(t, err)
	assert.True(t, week1Rollover.Amount.Equal(money(1275)))

	week2Rollover, err = p.ComputeWeekRollover(ctx, 2)
	require.NoError(t, err)
	assert.True(t, week2Rollover.Allocated.Equal(money(2700)), "1425 base + 1275 rollover")

	// Spend 200 in week 2.
	_, err = p.RecordTransaction(ctx, budget.Transaction{
		Kind:        budget.TxSpending,
		WeekNumber:  2,
		Amount:      money(200),
		Date:        jan(15),
		Description: "Dining",
	})
	require.NoError(t, err)

	week2Rollover, err = p.ComputeWeekRollover(ctx, 2)
	require.NoError(t, err)
	assert.True(t, week2Rollover.Amount.Equal(money(2500)))

	// Week 2 is not complete yet, so nothing has reached savings.
	requireBalance(t, p, emergency.Subject(), 1200)

	// Next paycheck creates weeks 3 and 4; week 2 becomes complete and its
	// 2500 surplus sweeps into Emergency: 1200 + 200 auto-save + 2500.
	_, err = p.ProcessPaycheck(ctx, money(3350), jan(20), jan(20))
	require.NoError(t, err)

	requireBalance(t, p, emergency.Subject(), 3900)

	week2, err := p.Week(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, budget.RolloverApplied, week2.RolloverState)
}

func TestPlanner_SweepIdempotent(t *testing.T) {
	// GIVEN: A fully swept pay period
	// WHEN: Sweeping again with no upstream changes
	// THEN: Balances and transactions do not change

	p, store := newTestPlanner(t, budget.WithClock(frozenJan6))
	ctx := context.Background()

	account, err := p.AddAccount(ctx, budget.NewAccount{
		Name: "Savings", StartingBalance: money(500), StartDate: jan(1),
	})
	require.NoError(t, err)
	_, err = p.ProcessPaycheck(ctx, money(1000), jan(6), jan(6))
	require.NoError(t, err)

	before, err := store.Transactions(ctx)
	require.NoError(t, err)
	balanceBefore, err := p.CurrentBalance(ctx, account.Subject())
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, p.SweepRollovers(ctx))
	}

	after, err := store.Transactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after), "repeat sweeps must not create transactions")
	requireBalance(t, p, account.Subject(), balanceBefore.Float64())
}

// =============================================================================
// CONSERVATION PROPERTY
// =============================================================================

func TestPlanner_Conservation(t *testing.T) {
	// GIVEN: Paychecks, spending, bill pays, and sweeps with zero starting
	//        balances
	// THEN: income - spending - bill pays = week balances + account balances
	//       (rollovers and savings legs only move money, never create it)

	p, _ := newTestPlanner(t, budget.WithClock(frozenJan6))
	ctx := context.Background()

	account, err := p.AddAccount(ctx, budget.NewAccount{
		Name: "Goal", AutoSaveAmount: money(100), StartDate: jan(1),
	})
	require.NoError(t, err)
	bill, err := p.AddBill(ctx, budget.NewBill{
		Name: "Internet", Savings: budget.FixedSavings(money(80)), StartDate: jan(1),
	})
	require.NoError(t, err)

	_, err = p.ProcessPaycheck(ctx, money(2000), jan(6), jan(6))
	require.NoError(t, err)
	_, err = p.RecordTransaction(ctx, budget.Transaction{
		Kind: budget.TxSpending, WeekNumber: 1, Amount: money(330), Date: jan(7),
	})
	require.NoError(t, err)
	_, err = p.RecordTransaction(ctx, budget.Transaction{
		Kind: budget.TxBillPay, WeekNumber: 1, Amount: money(80), Date: jan(9),
		Subject: bill.Subject(), Description: "Internet bill",
	})
	require.NoError(t, err)
	_, err = p.ProcessPaycheck(ctx, money(2000), jan(20), jan(20))
	require.NoError(t, err)

	totals, err := p.Totals(ctx)
	require.NoError(t, err)
	assert.True(t, totals.Income.Equal(money(4000)))
	assert.True(t, totals.Spending.Equal(money(330)))
	assert.True(t, totals.Bills.Equal(money(80)))

	accountBalance, err := p.CurrentBalance(ctx, account.Subject())
	require.NoError(t, err)
	billBalance, err := p.CurrentBalance(ctx, bill.Subject())
	require.NoError(t, err)

	// Remaining spendable money is the un-swept weeks' allocations plus
	// rollovers in, minus what they spent.
	held := ledger.Zero()
	weeks, err := p.Weeks(ctx)
	require.NoError(t, err)
	for _, w := range weeks {
		if w.RolloverState == budget.RolloverApplied {
			continue
		}
		r, err := p.ComputeWeekRollover(ctx, w.Number)
		require.NoError(t, err)
		held = held.Add(r.Amount)
	}

	net := totals.Net()
	distributed := accountBalance.Add(billBalance).Add(held)
	assert.True(t, net.Equal(distributed),
		"net %s must equal accounts %s + bills %s + held %s",
		net, accountBalance, billBalance, held)
}

// =============================================================================
// DEFAULT SAVINGS SINGLETON
// =============================================================================

func TestPlanner_DefaultSavings_Singleton(t *testing.T) {
	// GIVEN: Two accounts, the first holding the default flag
	// WHEN: The default moves to the second
	// THEN: Exactly one account holds the flag at all times

	p, _ := newTestPlanner(t)
	ctx := context.Background()

	first, err := p.AddAccount(ctx, budget.NewAccount{Name: "First", StartDate: jan(1)})
	require.NoError(t, err)
	second, err := p.AddAccount(ctx, budget.NewAccount{Name: "Second", StartDate: jan(1)})
	require.NoError(t, err)
	assert.True(t, first.IsDefaultSave)
	assert.False(t, second.IsDefaultSave)

	require.NoError(t, p.SetDefaultSavings(ctx, second.ID))

	accounts, err := p.Accounts(ctx)
	require.NoError(t, err)
	defaults := 0
	for _, a := range accounts {
		if a.IsDefaultSave {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestPlanner_SetDefaultSavings_UnknownAccount(t *testing.T) {
	p, _ := newTestPlanner(t)
	err := p.SetDefaultSavings(context.Background(), "ghost")
	assert.True(t, budget.IsNotFound(err))
}

// =============================================================================
// TRANSFERS
// =============================================================================

func TestPlanner_Transfer_MovesMoneyBetweenAccounts(t *testing.T) {
	// GIVEN: Two funded accounts and an open week
	// WHEN: Transferring 250 from one to the other
	// THEN: Both balances move and the legs share a transfer group

	p, store := newTestPlanner(t, budget.WithClock(frozenJan6))
	ctx := context.Background()

	from, err := p.AddAccount(ctx, budget.NewAccount{
		Name: "Vacation", StartingBalance: money(800), StartDate: jan(1),
	})
	require.NoError(t, err)
	to, err := p.AddAccount(ctx, budget.NewAccount{
		Name: "Car", StartingBalance: money(100), StartDate: jan(1),
	})
	require.NoError(t, err)
	_, err = p.ProcessPaycheck(ctx, money(1000), jan(6), jan(6))
	require.NoError(t, err)

	require.NoError(t, p.Transfer(ctx, from.ID, to.ID, money(250), jan(8), 1))

	requireBalance(t, p, from.Subject(), 550)
	requireBalance(t, p, to.Subject(), 350)

	txs, err := store.Transactions(ctx)
	require.NoError(t, err)
	var group string
	legs := 0
	for _, tx := range txs {
		if tx.TransferGroupID == "" {
			continue
		}
		legs++
		if group == "" {
			group = tx.TransferGroupID
		}
		assert.Equal(t, group, tx.TransferGroupID)
	}
	assert.Equal(t, 2, legs)
}

func TestPlanner_Transfer_NonPositiveAmount(t *testing.T) {
	p, _ := newTestPlanner(t)
	err := p.Transfer(context.Background(), "a", "b", money(0), jan(8), 1)
	assert.ErrorIs(t, err, budget.ErrInvalidAmount)
}
