/*
handlers_test.go - HTTP-level tests for the API

Tests drive the real router against a planner backed by an in-memory
SQLite store, so every request exercises the full stack: JSON decoding,
handler, domain, persistence.
*/
package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/ledger"
	"github.com/warp/budget-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	planner := budget.NewPlanner(store, budget.WithClock(func() ledger.Date {
		return ledger.NewDate(2025, time.January, 6)
	}))
	handler := api.NewHandler(planner, zerolog.Nop())
	return api.NewRouter(handler)
}

func doJSON(t *testing.T, router *chi.Mux, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// =============================================================================
// ACCOUNT ENDPOINTS
// =============================================================================

func TestAPI_CreateAndListAccounts(t *testing.T) {
	// GIVEN: A fresh server
	// WHEN: An account is created and the list is fetched
	// THEN: It appears with its starting balance and the default flag

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]any{
		"name":             "Emergency",
		"goal_amount":      5000,
		"auto_save_amount": 200,
		"starting_balance": 1000,
		"start_date":       "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	assert.Equal(t, true, created["is_default_save"], "first account becomes the default")

	rec = doJSON(t, router, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decode[[]map[string]any](t, rec)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Emergency", accounts[0]["name"])
	assert.InDelta(t, 1000.0, accounts[0]["balance"], 1e-6)
	assert.InDelta(t, 20.0, accounts[0]["goal_progress"], 1e-6)
}

func TestAPI_CreateAccount_MissingName(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// PAYCHECK FLOW
// =============================================================================

func TestAPI_PaycheckFlow(t *testing.T) {
	// GIVEN: A Rent bill and a default Emergency account
	// WHEN: A paycheck is processed, spending recorded, and a rollover queried
	// THEN: The responses carry the computed figures end to end

	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]any{
		"name": "Emergency", "auto_save_amount": 200, "starting_balance": 1000,
		"start_date": "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/bills", map[string]any{
		"name": "Rent", "bill_type": "housing", "payment_frequency": "monthly",
		"typical_amount": 600,
		"savings_rule":   map[string]any{"kind": "fixed", "value": 300},
		"start_date":     "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/paychecks", map[string]any{
		"gross": 3350, "paycheck_date": "2025-01-06", "period_start": "2025-01-06",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	split := decode[map[string]any](t, rec)
	assert.InDelta(t, 300.0, split["bills_reserved"], 1e-6)
	assert.InDelta(t, 200.0, split["accounts_auto_saved"], 1e-6)
	assert.InDelta(t, 1425.0, split["week1_allocation"], 1e-6)
	assert.Equal(t, true, split["sweep_complete"])

	rec = doJSON(t, router, http.MethodPost, "/api/transactions", map[string]any{
		"kind": "spending", "week_number": 1, "amount": 150,
		"date": "2025-01-08", "description": "Groceries",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/weeks/1/rollover", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rollover := decode[map[string]any](t, rec)
	assert.InDelta(t, 1275.0, rollover["amount"], 1e-6)

	rec = doJSON(t, router, http.MethodGet, "/api/weeks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weeks := decode[[]map[string]any](t, rec)
	require.Len(t, weeks, 2)
	assert.Equal(t, "applied", weeks[0]["rollover_state"])
	assert.Equal(t, "pending", weeks[1]["rollover_state"])
}

func TestAPI_AmendAndDeleteTransaction(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/paychecks", map[string]any{
		"gross": 1000, "paycheck_date": "2025-01-06", "period_start": "2025-01-06",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodPost, "/api/transactions", map[string]any{
		"kind": "spending", "week_number": 1, "amount": 100, "date": "2025-01-07",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[map[string]any](t, rec)
	id, ok := created["id"].(string)
	require.True(t, ok)

	rec = doJSON(t, router, http.MethodPut, "/api/transactions/"+id, map[string]any{
		"amount": 250,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/weeks/1/rollover", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rollover := decode[map[string]any](t, rec)
	assert.InDelta(t, 250.0, rollover["spent"], 1e-6)

	rec = doJSON(t, router, http.MethodDelete, "/api/transactions/"+id, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/weeks/1/rollover", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rollover = decode[map[string]any](t, rec)
	assert.InDelta(t, 0.0, rollover["spent"], 1e-6)
}

// =============================================================================
// ERROR MAPPING
// =============================================================================

func TestAPI_UnknownWeek_Returns404(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodGet, "/api/weeks/99/rollover", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAPI_OverlappingPaycheck_Returns400(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/paychecks", map[string]any{
		"gross": 1000, "paycheck_date": "2025-01-06", "period_start": "2025-01-06",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/paychecks", map[string]any{
		"gross": 1000, "paycheck_date": "2025-01-13", "period_start": "2025-01-13",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPI_BadDate_Returns400(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/transactions", map[string]any{
		"kind": "spending", "week_number": 1, "amount": 10, "date": "January 8th",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// SWEEP AND TOTALS
// =============================================================================

func TestAPI_SweepAndTotals(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/paychecks", map[string]any{
		"gross": 2000, "paycheck_date": "2025-01-06", "period_start": "2025-01-06",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/rollovers/sweep", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	sweep := decode[map[string]any](t, rec)
	assert.Equal(t, true, sweep["complete"])

	rec = doJSON(t, router, http.MethodPost, "/api/transactions", map[string]any{
		"kind": "spending", "week_number": 1, "amount": 75, "date": "2025-01-07",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/totals", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	totals := decode[map[string]any](t, rec)
	assert.InDelta(t, 2000.0, totals["income"], 1e-6)
	assert.InDelta(t, 75.0, totals["spending"], 1e-6)
	assert.InDelta(t, 1925.0, totals["net"], 1e-6)
}

func TestAPI_Transfer(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/accounts", map[string]any{
		"name": "Emergency", "starting_balance": 500, "start_date": "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	from := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/accounts", map[string]any{
		"name": "Vacation", "start_date": "2025-01-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	to := decode[map[string]any](t, rec)["id"].(string)

	rec = doJSON(t, router, http.MethodPost, "/api/paychecks", map[string]any{
		"gross": 1000, "paycheck_date": "2025-01-06", "period_start": "2025-01-06",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/transfers", map[string]any{
		"from_account_id": from, "to_account_id": to,
		"amount": 200, "date": "2025-01-07", "week_number": 1,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, router, http.MethodGet, "/api/accounts", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	accounts := decode[[]map[string]any](t, rec)
	balances := map[string]float64{}
	for _, a := range accounts {
		balances[a["name"].(string)] = a["balance"].(float64)
	}
	assert.InDelta(t, 300.0, balances["Emergency"], 1e-6)
	assert.InDelta(t, 200.0, balances["Vacation"], 1e-6)
}
