/*
summary.go - Aggregated views over weeks and the whole book

PURPOSE:
  Read-only roll-ups the presentation layer consumes: per-week totals,
  bi-weekly period summaries, and the all-time income vs outflow
  picture. No ledger logic lives here.
*/
package budget

import "context"

// WeekSummary aggregates one week's transactions by kind.
func (p *Planner) WeekSummary(ctx context.Context, weekNumber int) (WeekSummary, error) {
	w, err := p.Week(ctx, weekNumber)
	if err != nil {
		return WeekSummary{}, err
	}
	txs, err := p.store.TransactionsByWeek(ctx, weekNumber)
	if err != nil {
		return WeekSummary{}, err
	}

	summary := WeekSummary{Week: w, Transactions: len(txs)}
	for _, t := range txs {
		switch t.Kind {
		case TxIncome:
			summary.TotalIncome = summary.TotalIncome.Add(t.Amount)
		case TxSpending:
			summary.TotalSpending = summary.TotalSpending.Add(t.Amount)
		case TxBillPay:
			summary.TotalBills = summary.TotalBills.Add(t.Amount)
		case TxSaving:
			summary.TotalSavings = summary.TotalSavings.Add(t.Amount)
		}
	}
	return summary, nil
}

// PeriodSummary covers the bi-weekly pair containing weekNumber.
func (p *Planner) PeriodSummary(ctx context.Context, weekNumber int) (PeriodSummary, error) {
	first, second := PairOf(weekNumber)

	firstSummary, err := p.WeekSummary(ctx, first)
	if err != nil {
		return PeriodSummary{}, err
	}
	secondSummary, err := p.WeekSummary(ctx, second)
	if err != nil {
		// The second week may not exist yet mid-period.
		if IsNotFound(err) {
			return PeriodSummary{FirstWeek: firstSummary}, nil
		}
		return PeriodSummary{}, err
	}
	return PeriodSummary{FirstWeek: firstSummary, SecondWeek: secondSummary}, nil
}

// Totals sums every transaction ever recorded by kind.
func (p *Planner) Totals(ctx context.Context) (Totals, error) {
	txs, err := p.store.Transactions(ctx)
	if err != nil {
		return Totals{}, err
	}
	var totals Totals
	for _, t := range txs {
		switch t.Kind {
		case TxIncome:
			totals.Income = totals.Income.Add(t.Amount)
		case TxSpending:
			totals.Spending = totals.Spending.Add(t.Amount)
		case TxBillPay:
			totals.Bills = totals.Bills.Add(t.Amount)
		case TxSaving:
			totals.Savings = totals.Savings.Add(t.Amount)
		}
	}
	return totals, nil
}
