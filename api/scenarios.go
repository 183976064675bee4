/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates accounts, bills, and
	transactions that demonstrate specific features.

AVAILABLE SCENARIOS:

	fresh-start:   Accounts and bills only, no paycheck yet
	mid-period:    One paycheck with spending in the first week
	two-paychecks: A full pay period rolled forward, plus a fresh one

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Create savings accounts and bill reserves
 3. Process paychecks
 4. Optionally record spending

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - server.go: Route registration
  - budget/planner.go: The operations every loader goes through
*/
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/ledger"
)

// Resetter clears all persisted data before a scenario loads.
type Resetter interface {
	Reset(ctx context.Context) error
}

// ScenarioInfo describes one loadable scenario.
type ScenarioInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioInfo{
	{
		ID:          "fresh-start",
		Name:        "Fresh Start",
		Description: "An emergency fund and two bills, no paycheck processed yet",
	},
	{
		ID:          "mid-period",
		Name:        "Mid Pay Period",
		Description: "One paycheck split, groceries and gas spent in week one",
	},
	{
		ID:          "two-paychecks",
		Name:        "Two Paychecks",
		Description: "A finished pay period rolled into savings, plus a fresh one",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets the database and loads the named scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	if h.Resetter == nil {
		writeError(w, http.StatusNotFound, "Scenario loading is disabled", nil)
		return
	}

	var req struct {
		ScenarioID string `json:"scenario_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Resetter.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "fresh-start":
		err = loadSubjects(ctx, h.Planner)
	case "mid-period":
		err = loadMidPeriod(ctx, h.Planner)
	case "two-paychecks":
		err = loadTwoPaychecks(ctx, h.Planner)
	default:
		writeError(w, http.StatusBadRequest, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("scenario", req.ScenarioID).Msg("scenario load failed")
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"loaded": req.ScenarioID})
}

// =============================================================================
// LOADERS
// =============================================================================

// loadSubjects creates the shared fixture every scenario starts from:
// a funded emergency account, rent, and car insurance.
func loadSubjects(ctx context.Context, p *budget.Planner) error {
	start := periodAnchor().AddDays(-28)

	_, err := p.AddAccount(ctx, budget.NewAccount{
		Name:            "Emergency fund",
		GoalAmount:      ledger.NewMoney(5000),
		AutoSaveAmount:  ledger.NewMoney(200),
		StartingBalance: ledger.NewMoney(1000),
		StartDate:       start,
	})
	if err != nil {
		return err
	}

	_, err = p.AddBill(ctx, budget.NewBill{
		Name:             "Rent",
		BillType:         "housing",
		PaymentFrequency: "monthly",
		TypicalAmount:    ledger.NewMoney(1200),
		Savings:          budget.FixedSavings(ledger.NewMoney(600)),
		StartDate:        start,
	})
	if err != nil {
		return err
	}

	_, err = p.AddBill(ctx, budget.NewBill{
		Name:             "Car insurance",
		BillType:         "insurance",
		PaymentFrequency: "monthly",
		TypicalAmount:    ledger.NewMoney(160),
		Savings:          budget.PercentageSavings(decimal.NewFromFloat(0.05)),
		StartDate:        start,
	})
	return err
}

func loadMidPeriod(ctx context.Context, p *budget.Planner) error {
	if err := loadSubjects(ctx, p); err != nil {
		return err
	}

	anchor := periodAnchor()
	if _, err := p.ProcessPaycheck(ctx, ledger.NewMoney(3350), anchor, anchor); err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
		return err
	}

	spending := []struct {
		amount      float64
		day         int
		description string
		category    string
	}{
		{84.52, 1, "Groceries", "food"},
		{41.00, 2, "Gas", "transport"},
		{23.75, 3, "Lunch out", "food"},
	}
	for _, s := range spending {
		_, err := p.RecordTransaction(ctx, budget.Transaction{
			Kind:        budget.TxSpending,
			WeekNumber:  1,
			Amount:      ledger.NewMoney(s.amount),
			Date:        anchor.AddDays(s.day),
			Description: s.description,
			Category:    s.category,
		})
		if err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
			return err
		}
	}
	return nil
}

func loadTwoPaychecks(ctx context.Context, p *budget.Planner) error {
	if err := loadMidPeriod(ctx, p); err != nil {
		return err
	}

	anchor := periodAnchor()
	_, err := p.RecordTransaction(ctx, budget.Transaction{
		Kind:        budget.TxSpending,
		WeekNumber:  2,
		Amount:      ledger.NewMoney(196.30),
		Date:        anchor.AddDays(9),
		Description: "Groceries and household",
		Category:    "food",
	})
	if err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
		return err
	}

	next := anchor.AddDays(14)
	if _, err := p.ProcessPaycheck(ctx, ledger.NewMoney(3350), next, next); err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
		return err
	}
	return nil
}

// periodAnchor picks a period start two weeks back from the current
// week's Monday, so the first pay period has fully elapsed and the
// second is in progress.
func periodAnchor() ledger.Date {
	today := time.Now()
	monday := today.AddDate(0, 0, -int((today.Weekday()+6)%7))
	anchor := ledger.Date{Time: time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, time.UTC)}
	return anchor.AddDays(-14)
}
