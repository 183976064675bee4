/*
store.go - Persistence interface for the budget domain

PURPOSE:
  Defines everything the domain needs from the database: accounts, bills,
  weeks, transactions, and (embedded) the ledger entry store. Components
  receive an explicit Store handle - there is no ambient session.

TRANSACTION SCOPES:
  Every top-level operation (process a paycheck, amend a transaction, run
  a sweep) executes inside one TxStore.WithTx scope. All writes commit
  atomically; any error rolls back every write made during the operation.

IMPLEMENTATIONS:
  - store/sqlite: Production SQLite store (the only full implementation)

SEE ALSO:
  - planner.go: Owns the per-operation transaction scopes
  - ledger/store.go: The embedded entry store interface
*/
package budget

import (
	"context"

	"github.com/warp/budget-engine/ledger"
)

// Store is the persistence surface for one operation. It embeds the ledger
// entry store so a single database transaction covers both domains.
type Store interface {
	ledger.Store

	// Accounts
	InsertAccount(ctx context.Context, a Account) error
	UpdateAccount(ctx context.Context, a Account) error
	AccountByID(ctx context.Context, id string) (*Account, error)
	Accounts(ctx context.Context) ([]Account, error)
	DefaultSavingsAccount(ctx context.Context) (*Account, error)
	// ClearDefaultSavings unsets the flag on every account. Used before
	// setting a new default so the singleton invariant holds.
	ClearDefaultSavings(ctx context.Context) error

	// Bills
	InsertBill(ctx context.Context, b Bill) error
	UpdateBill(ctx context.Context, b Bill) error
	BillByID(ctx context.Context, id string) (*Bill, error)
	Bills(ctx context.Context) ([]Bill, error)

	// Weeks
	InsertWeek(ctx context.Context, w Week) error
	UpdateWeek(ctx context.Context, w Week) error
	WeekByNumber(ctx context.Context, number int) (*Week, error)
	// Weeks returns all weeks in ascending week_number order.
	Weeks(ctx context.Context) ([]Week, error)
	LatestWeek(ctx context.Context) (*Week, error)

	// Transactions
	InsertTransaction(ctx context.Context, t Transaction) error
	UpdateTransaction(ctx context.Context, t Transaction) error
	DeleteTransaction(ctx context.Context, id string) error
	TransactionByID(ctx context.Context, id string) (*Transaction, error)
	TransactionsByWeek(ctx context.Context, weekNumber int) ([]Transaction, error)
	// TransactionsBySourceWeek returns engine-generated transactions
	// carrying the given week's rollover (the structural origin key).
	TransactionsBySourceWeek(ctx context.Context, sourceWeek int) ([]Transaction, error)
	Transactions(ctx context.Context) ([]Transaction, error)
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a database transaction. If fn returns an
	// error the transaction is rolled back, otherwise committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
