/*
calendar.go - Sequential 7-day weeks and bi-weekly pairing

PURPOSE:
  Weeks are numbered monotonically from 1. Two consecutive numbers form
  one paycheck period: odd = first week, even = second week. The pairing
  is purely arithmetic; the calendar keeps no state machine of its own.

OVERLAP:
  The calendar does not enforce non-overlap. The paycheck splitter
  validates ranges before creating weeks; overlap reaching CreateWeek is
  a caller error.
*/
package budget

import (
	"context"
	"strconv"

	"github.com/warp/budget-engine/ledger"
)

// WeekLength is the fixed length of a spending period in days.
const WeekLength = 7

// PairOf returns the week numbers of the bi-weekly period containing n:
// first = 2k-1, second = 2k.
func PairOf(n int) (first, second int) {
	k := (n + 1) / 2
	return 2*k - 1, 2 * k
}

// =============================================================================
// CALENDAR - Week creation and lookup
// =============================================================================

type Calendar struct {
	store Store
}

func NewCalendar(store Store) *Calendar {
	return &Calendar{store: store}
}

// CreateWeek creates the next week starting at start. Week numbers always
// increment by one; the end date is start + 6 days.
func (c *Calendar) CreateWeek(ctx context.Context, start ledger.Date) (Week, error) {
	number := 1
	latest, err := c.store.LatestWeek(ctx)
	if err != nil {
		return Week{}, err
	}
	if latest != nil {
		number = latest.Number + 1
	}

	w := Week{
		Number:         number,
		StartDate:      start,
		EndDate:        start.AddDays(WeekLength - 1),
		BaseAllocation: ledger.Zero(),
		RolloverState:  RolloverPending,
	}
	if err := c.store.InsertWeek(ctx, w); err != nil {
		return Week{}, err
	}
	return w, nil
}

// WeekByNumber returns the week or ErrReferenceNotFound.
func (c *Calendar) WeekByNumber(ctx context.Context, number int) (Week, error) {
	w, err := c.store.WeekByNumber(ctx, number)
	if err != nil {
		return Week{}, err
	}
	if w == nil {
		return Week{}, &ReferenceNotFoundError{Kind: "week", Ref: strconv.Itoa(number)}
	}
	return *w, nil
}

// Overlapping returns the first existing week whose [start, end] range
// intersects the given range, or nil.
func (c *Calendar) Overlapping(ctx context.Context, start, end ledger.Date) (*Week, error) {
	weeks, err := c.store.Weeks(ctx)
	if err != nil {
		return nil, err
	}
	for _, w := range weeks {
		if start.BeforeOrEqual(w.EndDate) && end.AfterOrEqual(w.StartDate) {
			found := w
			return &found, nil
		}
	}
	return nil, nil
}
