/*
errors.go - Centralized error types for the budget domain

PURPOSE:
  All domain error types in one place. The core performs no user-facing
  messaging; callers inspect these with errors.Is/errors.As.

ERROR CATEGORIES:
  1. Input errors   - Bad amounts, unknown references, overlapping periods
  2. Sweep outcomes - Missing default savings, truncated sweeps
  3. Invariant bugs - Duplicate ledger bindings (wrapped from ledger)
*/
package budget

import (
	"errors"
	"fmt"

	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned for a negative paycheck or a malformed
	// split ratio.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrReferenceNotFound is returned when a transaction names an unknown
	// week, account, or bill.
	ErrReferenceNotFound = errors.New("reference not found")

	// ErrOverlappingPeriod is returned when a paycheck would create weeks
	// overlapping existing ones.
	ErrOverlappingPeriod = errors.New("overlapping pay period")

	// ErrMissingDefaultSavings means no account is flagged as the default
	// savings target. Sweeps log and skip the savings leg; it is non-fatal.
	ErrMissingDefaultSavings = errors.New("no default savings account configured")

	// ErrIncompleteSweep means a sweep hit its pass limit before reaching
	// a fixed point. Remaining weeks stay Pending and a later sweep retries.
	ErrIncompleteSweep = errors.New("rollover sweep incomplete")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidAmountError reports the offending amount.
type InvalidAmountError struct {
	Op     string
	Amount ledger.Money
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("%s: invalid amount %s", e.Op, e.Amount)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// ReferenceNotFoundError names the missing reference.
type ReferenceNotFoundError struct {
	Kind string // "week", "account", "bill", "transaction"
	Ref  string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

func (e *ReferenceNotFoundError) Unwrap() error { return ErrReferenceNotFound }

// OverlappingPeriodError reports the conflicting week.
type OverlappingPeriodError struct {
	Start        ledger.Date
	End          ledger.Date
	ExistingWeek int
}

func (e *OverlappingPeriodError) Error() string {
	return fmt.Sprintf("period [%s, %s] overlaps week %d", e.Start, e.End, e.ExistingWeek)
}

func (e *OverlappingPeriodError) Unwrap() error { return ErrOverlappingPeriod }

// IncompleteSweepError reports a sweep truncated by its pass limit.
type IncompleteSweepError struct {
	Passes  int
	Pending []int // week numbers still pending
}

func (e *IncompleteSweepError) Error() string {
	return fmt.Sprintf("sweep hit pass limit %d with weeks %v still pending", e.Passes, e.Pending)
}

func (e *IncompleteSweepError) Unwrap() error { return ErrIncompleteSweep }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrReferenceNotFound) ||
		errors.Is(err, ErrOverlappingPeriod)
}

// IsNotFound returns true if the error indicates a missing reference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrReferenceNotFound)
}
