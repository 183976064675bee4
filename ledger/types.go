/*
Package ledger provides the balance-history engine.

PURPOSE:
  Every Account and Bill owns a partition of date-ordered ledger entries.
  Each entry records a signed change and the running total after that
  change. The engine keeps running totals consistent when entries are
  inserted, edited, or removed out of chronological order.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: A dollar amount backed by decimal.Decimal
  - Subject: The (id, kind) pair a partition belongs to
  - Date: A day-granularity point in time (ordering key, with entry ID
    as the same-day tie-break)

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal, never float64 arithmetic
  2. Derived balances: running totals are recomputed, never hand-set
  3. Type safety: Subject kinds are closed, IDs are not bare strings

SEE ALSO:
  - entry.go: The Entry record and partition ordering
  - ledger.go: Mutation operations and the recompute algorithm
*/
package ledger

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY - Dollar amount with decimal precision
// =============================================================================

type Money struct {
	Value decimal.Decimal
}

func NewMoney(value float64) Money {
	return Money{Value: decimal.NewFromFloat(value)}
}

func NewMoneyFromInt(value int) Money {
	return Money{Value: decimal.NewFromInt(int64(value))}
}

func MustParseMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{Value: decimal.Zero}
	}
	return Money{Value: d}
}

func Zero() Money { return Money{Value: decimal.Zero} }

func (m Money) Add(o Money) Money          { return Money{Value: m.Value.Add(o.Value)} }
func (m Money) Sub(o Money) Money          { return Money{Value: m.Value.Sub(o.Value)} }
func (m Money) Mul(s decimal.Decimal) Money { return Money{Value: m.Value.Mul(s)} }
func (m Money) Div(s decimal.Decimal) Money { return Money{Value: m.Value.Div(s)} }
func (m Money) Neg() Money                 { return Money{Value: m.Value.Neg()} }
func (m Money) IsNegative() bool           { return m.Value.IsNegative() }
func (m Money) IsPositive() bool           { return m.Value.IsPositive() }
func (m Money) IsZero() bool               { return m.Value.IsZero() }
func (m Money) Equal(o Money) bool         { return m.Value.Equal(o.Value) }
func (m Money) GreaterThan(o Money) bool   { return m.Value.GreaterThan(o.Value) }
func (m Money) LessThan(o Money) bool      { return m.Value.LessThan(o.Value) }
func (m Money) Float64() float64           { f, _ := m.Value.Float64(); return f }
func (m Money) String() string             { return m.Value.StringFixed(2) }

// =============================================================================
// SUBJECT - Which Account or Bill a partition belongs to
// =============================================================================

type SubjectKind string

const (
	KindAccount SubjectKind = "account"
	KindBill    SubjectKind = "bill"
)

type Subject struct {
	ID   string
	Kind SubjectKind
}

func AccountSubject(id string) Subject { return Subject{ID: id, Kind: KindAccount} }
func BillSubject(id string) Subject    { return Subject{ID: id, Kind: KindBill} }

func (s Subject) IsZero() bool { return s.ID == "" }

func (s Subject) String() string { return string(s.Kind) + ":" + s.ID }

// =============================================================================
// DATE - Day-granularity time point
// =============================================================================

type Date struct {
	Time time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date { return DateOf(time.Now().UTC()) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }
func (d Date) AddDays(n int) Date        { return Date{Time: d.Time.AddDate(0, 0, n)} }
func (d Date) IsZero() bool              { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return err
	}
	*d = Date{Time: t}
	return nil
}

func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}
