/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements budget.TxStore (which embeds ledger.Store) over five tables:
  accounts, bills, weeks, transactions, and account_history. All balance
  arithmetic lives in the engines; this package only persists rows and
  returns them in the order the engines require.

KEY TABLES:
  accounts:        Savings goals (one may be the default rollover target)
  bills:           Recurring payment reserves with their savings rules
  weeks:           7-day spending periods and their rollover state
  transactions:    Every monetary event, including engine-generated rollovers
  account_history: The per-subject ledger partitions (running totals)

ORDERING CONTRACT:
  Partition() returns entries ordered by (transaction_date, id). The id
  is SQLite's AUTOINCREMENT rowid, so it is the insertion-order tie-break
  the ledger engine depends on. Never reuse or reorder ids.

TRANSACTION SCOPES:
  WithTx wraps a function in BEGIN/COMMIT. The function receives a view
  implementing the same interfaces against the open transaction, so one
  scope covers domain rows and ledger entries together.

WAL MODE:
  Opened with WAL and foreign keys on. Single writer at a time, guarded
  by a mutex; readers don't block.

USAGE:
  store, err := sqlite.New("./data/budget.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  planner := budget.NewPlanner(store)

SEE ALSO:
  - budget/store.go: Interface definitions
  - ledger/store.go: The embedded entry store contract
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/ledger"
)

// Store implements budget.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
	session
}

// New creates a SQLite store at the given path. Use ":memory:" for an
// in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db, session: session{q: db}}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Reset clears all data. Child tables go first to satisfy foreign keys.
// Used by the demo scenario loader; never called in normal operation.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"account_history", "transactions", "weeks", "bills", "accounts"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		goal_amount TEXT NOT NULL,
		auto_save_amount TEXT NOT NULL,
		is_default_save BOOLEAN NOT NULL DEFAULT FALSE,
		activation_periods TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS bills (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		bill_type TEXT NOT NULL,
		payment_frequency TEXT NOT NULL,
		typical_amount TEXT NOT NULL,
		savings_rule_kind TEXT NOT NULL,
		savings_rule_value TEXT NOT NULL,
		activation_periods TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS weeks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		week_number INTEGER NOT NULL UNIQUE,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		base_allocation TEXT NOT NULL,
		rollover_applied BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		week_number INTEGER NOT NULL REFERENCES weeks(week_number),
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		description TEXT,
		category TEXT,
		bill_id TEXT REFERENCES bills(id),
		account_id TEXT REFERENCES accounts(id),
		transfer_group_id TEXT,
		source_week INTEGER,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_week
		ON transactions(week_number);
	CREATE INDEX IF NOT EXISTS idx_transactions_kind
		ON transactions(kind);
	-- Rollover removal-before-reapply lookup
	CREATE INDEX IF NOT EXISTS idx_transactions_source_week
		ON transactions(source_week) WHERE source_week IS NOT NULL;

	CREATE TABLE IF NOT EXISTS account_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_id TEXT REFERENCES transactions(id),
		account_id TEXT NOT NULL,
		account_type TEXT NOT NULL,
		change_amount TEXT NOT NULL,
		running_total TEXT NOT NULL,
		transaction_date TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	-- Partition scan in (date, id) order is the recompute hot path
	CREATE INDEX IF NOT EXISTS idx_history_partition
		ON account_history(account_id, account_type, transaction_date, id);
	-- One ledger entry per transaction
	CREATE UNIQUE INDEX IF NOT EXISTS idx_history_origin
		ON account_history(transaction_id) WHERE transaction_id IS NOT NULL;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION SCOPES (budget.TxStore)
// =============================================================================

// WithTx executes fn within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(budget.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	view := &txView{session{q: tx}}
	if err := fn(view); err != nil {
		return err
	}
	return tx.Commit()
}

// txView implements budget.Store against an open transaction.
type txView struct {
	session
}

// dbtx is the common surface of *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// session holds every row-level operation; Store and txView embed it so
// both run the exact same SQL.
type session struct {
	q dbtx
}

// =============================================================================
// LEDGER ENTRIES (ledger.Store)
// =============================================================================

func (s session) InsertEntry(ctx context.Context, e ledger.Entry) (ledger.Entry, error) {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO account_history
		(transaction_id, account_id, account_type, change_amount, running_total, transaction_date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(e.OriginTxID),
		e.Subject.ID,
		subjectType(e.Subject.Kind),
		e.Change.Value.String(),
		e.RunningTotal.Value.String(),
		e.Date.String(),
		nullString(e.Description),
		now(),
	)
	if err != nil {
		return ledger.Entry{}, fmt.Errorf("failed to insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return ledger.Entry{}, err
	}
	e.ID = id
	return e, nil
}

func (s session) Partition(ctx context.Context, subject ledger.Subject) ([]ledger.Entry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, transaction_id, account_id, account_type, change_amount, running_total, transaction_date, description
		FROM account_history
		WHERE account_id = ? AND account_type = ?
		ORDER BY transaction_date ASC, id ASC`,
		subject.ID, subjectType(subject.Kind),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query partition: %w", err)
	}
	defer rows.Close()

	var entries []ledger.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s session) EntryByOrigin(ctx context.Context, originTxID string) (*ledger.Entry, error) {
	if originTxID == "" {
		return nil, nil
	}
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, transaction_id, account_id, account_type, change_amount, running_total, transaction_date, description
		FROM account_history
		WHERE transaction_id = ?`,
		originTxID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	e, err := scanEntry(rows)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s session) UpdateEntry(ctx context.Context, e ledger.Entry) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE account_history
		SET change_amount = ?, running_total = ?, transaction_date = ?
		WHERE id = ?`,
		e.Change.Value.String(),
		e.RunningTotal.Value.String(),
		e.Date.String(),
		e.ID,
	)
	return err
}

func (s session) DeleteEntry(ctx context.Context, id int64) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM account_history WHERE id = ?`, id)
	return err
}

func scanEntry(rows *sql.Rows) (ledger.Entry, error) {
	var (
		e           ledger.Entry
		originTxID  sql.NullString
		accountType string
		change      string
		total       string
		date        string
		description sql.NullString
	)
	err := rows.Scan(&e.ID, &originTxID, &e.Subject.ID, &accountType, &change, &total, &date, &description)
	if err != nil {
		return e, fmt.Errorf("failed to scan ledger entry: %w", err)
	}
	e.Subject.Kind = kindFromType(accountType)
	e.OriginTxID = originTxID.String
	e.Change = parseMoney(change)
	e.RunningTotal = parseMoney(total)
	e.Date = parseDate(date)
	e.Description = description.String
	return e, nil
}

// =============================================================================
// ACCOUNTS
// =============================================================================

func (s session) InsertAccount(ctx context.Context, a budget.Account) error {
	activation, err := marshalActivation(a.Activation)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO accounts (id, name, goal_amount, auto_save_amount, is_default_save, activation_periods, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, a.GoalAmount.Value.String(), a.AutoSaveAmount.Value.String(),
		a.IsDefaultSave, activation, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}
	return nil
}

func (s session) UpdateAccount(ctx context.Context, a budget.Account) error {
	activation, err := marshalActivation(a.Activation)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, `
		UPDATE accounts
		SET name = ?, goal_amount = ?, auto_save_amount = ?, is_default_save = ?, activation_periods = ?
		WHERE id = ?`,
		a.Name, a.GoalAmount.Value.String(), a.AutoSaveAmount.Value.String(),
		a.IsDefaultSave, activation, a.ID,
	)
	return err
}

func (s session) AccountByID(ctx context.Context, id string) (*budget.Account, error) {
	accounts, err := s.queryAccounts(ctx, `WHERE id = ?`, id)
	if err != nil || len(accounts) == 0 {
		return nil, err
	}
	return &accounts[0], nil
}

func (s session) Accounts(ctx context.Context) ([]budget.Account, error) {
	return s.queryAccounts(ctx, `ORDER BY name`)
}

func (s session) DefaultSavingsAccount(ctx context.Context) (*budget.Account, error) {
	accounts, err := s.queryAccounts(ctx, `WHERE is_default_save`)
	if err != nil || len(accounts) == 0 {
		return nil, err
	}
	return &accounts[0], nil
}

func (s session) ClearDefaultSavings(ctx context.Context) error {
	_, err := s.q.ExecContext(ctx, `UPDATE accounts SET is_default_save = FALSE WHERE is_default_save`)
	return err
}

func (s session) queryAccounts(ctx context.Context, clause string, args ...any) ([]budget.Account, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, goal_amount, auto_save_amount, is_default_save, activation_periods
		FROM accounts `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []budget.Account
	for rows.Next() {
		var (
			a          budget.Account
			goal       string
			autoSave   string
			activation sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.Name, &goal, &autoSave, &a.IsDefaultSave, &activation); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		a.GoalAmount = parseMoney(goal)
		a.AutoSaveAmount = parseMoney(autoSave)
		if a.Activation, err = unmarshalActivation(activation); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// =============================================================================
// BILLS
// =============================================================================

func (s session) InsertBill(ctx context.Context, b budget.Bill) error {
	activation, err := marshalActivation(b.Activation)
	if err != nil {
		return err
	}
	kind, value := encodeSavingsRule(b.Savings)
	_, err = s.q.ExecContext(ctx, `
		INSERT INTO bills (id, name, bill_type, payment_frequency, typical_amount, savings_rule_kind, savings_rule_value, activation_periods, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.BillType, b.PaymentFrequency, b.TypicalAmount.Value.String(),
		kind, value, activation, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}
	return nil
}

func (s session) UpdateBill(ctx context.Context, b budget.Bill) error {
	activation, err := marshalActivation(b.Activation)
	if err != nil {
		return err
	}
	kind, value := encodeSavingsRule(b.Savings)
	_, err = s.q.ExecContext(ctx, `
		UPDATE bills
		SET name = ?, bill_type = ?, payment_frequency = ?, typical_amount = ?,
		    savings_rule_kind = ?, savings_rule_value = ?, activation_periods = ?
		WHERE id = ?`,
		b.Name, b.BillType, b.PaymentFrequency, b.TypicalAmount.Value.String(),
		kind, value, activation, b.ID,
	)
	return err
}

func (s session) BillByID(ctx context.Context, id string) (*budget.Bill, error) {
	bills, err := s.queryBills(ctx, `WHERE id = ?`, id)
	if err != nil || len(bills) == 0 {
		return nil, err
	}
	return &bills[0], nil
}

func (s session) Bills(ctx context.Context) ([]budget.Bill, error) {
	return s.queryBills(ctx, `ORDER BY name`)
}

func (s session) queryBills(ctx context.Context, clause string, args ...any) ([]budget.Bill, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, name, bill_type, payment_frequency, typical_amount, savings_rule_kind, savings_rule_value, activation_periods
		FROM bills `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query bills: %w", err)
	}
	defer rows.Close()

	var bills []budget.Bill
	for rows.Next() {
		var (
			b          budget.Bill
			typical    string
			ruleKind   string
			ruleValue  string
			activation sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.BillType, &b.PaymentFrequency, &typical, &ruleKind, &ruleValue, &activation); err != nil {
			return nil, fmt.Errorf("failed to scan bill: %w", err)
		}
		b.TypicalAmount = parseMoney(typical)
		b.Savings = decodeSavingsRule(ruleKind, ruleValue)
		if b.Activation, err = unmarshalActivation(activation); err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// =============================================================================
// WEEKS
// =============================================================================

func (s session) InsertWeek(ctx context.Context, w budget.Week) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO weeks (week_number, start_date, end_date, base_allocation, rollover_applied, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		w.Number, w.StartDate.String(), w.EndDate.String(),
		w.BaseAllocation.Value.String(), w.RolloverState == budget.RolloverApplied, now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert week: %w", err)
	}
	return nil
}

func (s session) UpdateWeek(ctx context.Context, w budget.Week) error {
	_, err := s.q.ExecContext(ctx, `
		UPDATE weeks
		SET start_date = ?, end_date = ?, base_allocation = ?, rollover_applied = ?
		WHERE week_number = ?`,
		w.StartDate.String(), w.EndDate.String(),
		w.BaseAllocation.Value.String(), w.RolloverState == budget.RolloverApplied, w.Number,
	)
	return err
}

func (s session) WeekByNumber(ctx context.Context, number int) (*budget.Week, error) {
	weeks, err := s.queryWeeks(ctx, `WHERE week_number = ?`, number)
	if err != nil || len(weeks) == 0 {
		return nil, err
	}
	return &weeks[0], nil
}

func (s session) Weeks(ctx context.Context) ([]budget.Week, error) {
	return s.queryWeeks(ctx, `ORDER BY week_number ASC`)
}

func (s session) LatestWeek(ctx context.Context) (*budget.Week, error) {
	weeks, err := s.queryWeeks(ctx, `ORDER BY week_number DESC LIMIT 1`)
	if err != nil || len(weeks) == 0 {
		return nil, err
	}
	return &weeks[0], nil
}

func (s session) queryWeeks(ctx context.Context, clause string, args ...any) ([]budget.Week, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT week_number, start_date, end_date, base_allocation, rollover_applied
		FROM weeks `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query weeks: %w", err)
	}
	defer rows.Close()

	var weeks []budget.Week
	for rows.Next() {
		var (
			w          budget.Week
			start, end string
			allocation string
			applied    bool
		)
		if err := rows.Scan(&w.Number, &start, &end, &allocation, &applied); err != nil {
			return nil, fmt.Errorf("failed to scan week: %w", err)
		}
		w.StartDate = parseDate(start)
		w.EndDate = parseDate(end)
		w.BaseAllocation = parseMoney(allocation)
		w.RolloverState = budget.RolloverPending
		if applied {
			w.RolloverState = budget.RolloverApplied
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

func (s session) InsertTransaction(ctx context.Context, t budget.Transaction) error {
	billID, accountID := splitSubject(t.Subject)
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO transactions
		(id, kind, week_number, amount, date, description, category, bill_id, account_id, transfer_group_id, source_week, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, string(t.Kind), t.WeekNumber, t.Amount.Value.String(), t.Date.String(),
		nullString(t.Description), nullString(t.Category),
		billID, accountID, nullString(t.TransferGroupID), nullInt(t.SourceWeek), now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s session) UpdateTransaction(ctx context.Context, t budget.Transaction) error {
	billID, accountID := splitSubject(t.Subject)
	_, err := s.q.ExecContext(ctx, `
		UPDATE transactions
		SET kind = ?, week_number = ?, amount = ?, date = ?, description = ?, category = ?,
		    bill_id = ?, account_id = ?, transfer_group_id = ?, source_week = ?
		WHERE id = ?`,
		string(t.Kind), t.WeekNumber, t.Amount.Value.String(), t.Date.String(),
		nullString(t.Description), nullString(t.Category),
		billID, accountID, nullString(t.TransferGroupID), nullInt(t.SourceWeek), t.ID,
	)
	return err
}

func (s session) DeleteTransaction(ctx context.Context, id string) error {
	_, err := s.q.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	return err
}

func (s session) TransactionByID(ctx context.Context, id string) (*budget.Transaction, error) {
	txs, err := s.queryTransactions(ctx, `WHERE id = ?`, id)
	if err != nil || len(txs) == 0 {
		return nil, err
	}
	return &txs[0], nil
}

func (s session) TransactionsByWeek(ctx context.Context, weekNumber int) ([]budget.Transaction, error) {
	return s.queryTransactions(ctx, `WHERE week_number = ? ORDER BY date ASC, created_at ASC`, weekNumber)
}

func (s session) TransactionsBySourceWeek(ctx context.Context, sourceWeek int) ([]budget.Transaction, error) {
	return s.queryTransactions(ctx, `WHERE source_week = ?`, sourceWeek)
}

func (s session) Transactions(ctx context.Context) ([]budget.Transaction, error) {
	return s.queryTransactions(ctx, `ORDER BY date ASC, created_at ASC`)
}

func (s session) queryTransactions(ctx context.Context, clause string, args ...any) ([]budget.Transaction, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, kind, week_number, amount, date, description, category, bill_id, account_id, transfer_group_id, source_week
		FROM transactions `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txs []budget.Transaction
	for rows.Next() {
		var (
			t             budget.Transaction
			kind          string
			amount, date  string
			description   sql.NullString
			category      sql.NullString
			billID        sql.NullString
			accountID     sql.NullString
			transferGroup sql.NullString
			sourceWeek    sql.NullInt64
		)
		if err := rows.Scan(&t.ID, &kind, &t.WeekNumber, &amount, &date,
			&description, &category, &billID, &accountID, &transferGroup, &sourceWeek); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Kind = budget.TxKind(kind)
		t.Amount = parseMoney(amount)
		t.Date = parseDate(date)
		t.Description = description.String
		t.Category = category.String
		t.TransferGroupID = transferGroup.String
		t.SourceWeek = int(sourceWeek.Int64)
		switch {
		case billID.Valid:
			t.Subject = ledger.BillSubject(billID.String)
		case accountID.Valid:
			t.Subject = ledger.AccountSubject(accountID.String)
		}
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// =============================================================================
// HELPERS
// =============================================================================

func now() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func parseMoney(s string) ledger.Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return ledger.Zero()
	}
	return ledger.Money{Value: d}
}

func parseDate(s string) ledger.Date {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return ledger.Date{}
	}
	return ledger.Date{Time: t}
}

// subjectType maps subject kinds onto the account_type column values.
func subjectType(k ledger.SubjectKind) string {
	if k == ledger.KindAccount {
		return "savings"
	}
	return "bill"
}

func kindFromType(t string) ledger.SubjectKind {
	if t == "savings" {
		return ledger.KindAccount
	}
	return ledger.KindBill
}

func splitSubject(subject ledger.Subject) (billID, accountID any) {
	switch subject.Kind {
	case ledger.KindBill:
		if subject.ID != "" {
			billID = subject.ID
		}
	case ledger.KindAccount:
		if subject.ID != "" {
			accountID = subject.ID
		}
	}
	return billID, accountID
}

func encodeSavingsRule(r budget.SavingsRule) (kind, value string) {
	if r.Kind == budget.RulePercentage {
		return string(budget.RulePercentage), r.Fraction.String()
	}
	return string(budget.RuleFixed), r.Fixed.Value.String()
}

func decodeSavingsRule(kind, value string) budget.SavingsRule {
	d, err := decimal.NewFromString(value)
	if err != nil {
		d = decimal.Zero
	}
	if kind == string(budget.RulePercentage) {
		return budget.PercentageSavings(d)
	}
	return budget.FixedSavings(ledger.Money{Value: d})
}

func marshalActivation(periods []budget.ActivationPeriod) (any, error) {
	if len(periods) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(periods)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal activation periods: %w", err)
	}
	return string(raw), nil
}

func unmarshalActivation(raw sql.NullString) ([]budget.ActivationPeriod, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var periods []budget.ActivationPeriod
	if err := json.Unmarshal([]byte(raw.String), &periods); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activation periods: %w", err)
	}
	return periods, nil
}
