/*
handlers.go - HTTP API handlers for the budget engine

PURPOSE:
  Exposes the Planner via REST API. Handles HTTP request/response, JSON
  serialization, and delegates every operation to the domain. No ledger
  logic lives here.

ENDPOINTS:
  Accounts:
    GET    /api/accounts               List accounts with balances
    POST   /api/accounts               Create a savings account
    GET    /api/accounts/{id}/history  Balance history
    POST   /api/accounts/{id}/default  Make this the default savings account

  Bills:
    GET    /api/bills                  List bills with reserve balances
    POST   /api/bills                  Create a bill
    GET    /api/bills/{id}/history     Reserve history

  Transactions:
    POST   /api/transactions           Record a transaction
    PUT    /api/transactions/{id}      Amend a transaction
    DELETE /api/transactions/{id}      Delete a transaction
    POST   /api/transfers              Move money between accounts

  Paychecks and rollovers:
    POST   /api/paychecks              Split and apply a paycheck
    POST   /api/rollovers/sweep        Run a rollover sweep
    GET    /api/weeks/{number}/rollover  Compute one week's rollover

  Weeks and summaries:
    GET    /api/weeks                  List weeks
    GET    /api/weeks/{number}         One week
    GET    /api/weeks/{number}/transactions
    GET    /api/weeks/{number}/summary
    GET    /api/periods/{number}       Bi-weekly period summary
    GET    /api/totals                 All-time income vs outflow

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input (IsClientError)
  - 404: Reference not found (IsNotFound)
  - 500: Internal errors
  A truncated rollover sweep is not an error: the response carries
  complete=false and the pending week numbers.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - budget/planner.go: The operations behind every handler
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Planner *budget.Planner
	Log     zerolog.Logger

	// Resetter enables the demo scenario endpoints when set.
	Resetter Resetter
}

// NewHandler creates a new handler over the given planner.
func NewHandler(planner *budget.Planner, log zerolog.Logger) *Handler {
	return &Handler{Planner: planner, Log: log}
}

// =============================================================================
// ACCOUNT HANDLERS
// =============================================================================

// ListAccounts returns all accounts with current balances and goal progress.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accounts, err := h.Planner.Accounts(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list accounts", err)
		return
	}

	dtos := make([]AccountDTO, len(accounts))
	for i, a := range accounts {
		balance, err := h.Planner.CurrentBalance(ctx, a.Subject())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
			return
		}
		dtos[i] = AccountDTO{
			ID:             a.ID,
			Name:           a.Name,
			GoalAmount:     a.GoalAmount.Float64(),
			AutoSaveAmount: a.AutoSaveAmount.Float64(),
			IsDefaultSave:  a.IsDefaultSave,
			Balance:        balance.Float64(),
			GoalProgress:   a.GoalProgress(balance),
			GoalRemaining:  a.GoalRemaining(balance).Float64(),
			Activation:     toActivationDTOs(a.Activation),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateAccount creates a savings account with its starting balance.
func (h *Handler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Account name is required", nil)
		return
	}
	startDate, ok := parseOptionalDate(w, req.StartDate)
	if !ok {
		return
	}
	activation, err := parseActivation(req.Activation)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid activation period", err)
		return
	}

	account, err := h.Planner.AddAccount(r.Context(), budget.NewAccount{
		Name:            req.Name,
		GoalAmount:      ledger.NewMoney(req.GoalAmount),
		AutoSaveAmount:  ledger.NewMoney(req.AutoSaveAmount),
		StartingBalance: ledger.NewMoney(req.StartingBalance),
		StartDate:       startDate,
		Activation:      activation,
	})
	if err != nil {
		writeDomainError(w, "Failed to create account", err)
		return
	}

	writeJSON(w, http.StatusCreated, AccountDTO{
		ID:             account.ID,
		Name:           account.Name,
		GoalAmount:     account.GoalAmount.Float64(),
		AutoSaveAmount: account.AutoSaveAmount.Float64(),
		IsDefaultSave:  account.IsDefaultSave,
		Balance:        req.StartingBalance,
		Activation:     toActivationDTOs(account.Activation),
	})
}

// AccountHistory returns an account's balance history.
func (h *Handler) AccountHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries, err := h.Planner.BalanceHistory(r.Context(), ledger.AccountSubject(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read history", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerEntryDTOs(entries))
}

// SetDefaultSavings makes the given account the default rollover target.
func (h *Handler) SetDefaultSavings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Planner.SetDefaultSavings(r.Context(), id); err != nil {
		writeDomainError(w, "Failed to set default savings", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"default_account_id": id})
}

// =============================================================================
// BILL HANDLERS
// =============================================================================

// ListBills returns all bills with current reserve balances.
func (h *Handler) ListBills(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	bills, err := h.Planner.Bills(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list bills", err)
		return
	}

	dtos := make([]BillDTO, len(bills))
	for i, b := range bills {
		balance, err := h.Planner.CurrentBalance(ctx, b.Subject())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
			return
		}
		dtos[i] = BillDTO{
			ID:               b.ID,
			Name:             b.Name,
			BillType:         b.BillType,
			PaymentFrequency: b.PaymentFrequency,
			TypicalAmount:    b.TypicalAmount.Float64(),
			SavingsRule:      toSavingsRuleDTO(b.Savings),
			Balance:          balance.Float64(),
			Activation:       toActivationDTOs(b.Activation),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateBill creates a bill reserve.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var req CreateBillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Bill name is required", nil)
		return
	}
	startDate, ok := parseOptionalDate(w, req.StartDate)
	if !ok {
		return
	}
	activation, err := parseActivation(req.Activation)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid activation period", err)
		return
	}

	bill, err := h.Planner.AddBill(r.Context(), budget.NewBill{
		Name:             req.Name,
		BillType:         req.BillType,
		PaymentFrequency: req.PaymentFrequency,
		TypicalAmount:    ledger.NewMoney(req.TypicalAmount),
		Savings:          parseSavingsRule(req.SavingsRule),
		StartingBalance:  ledger.NewMoney(req.StartingBalance),
		StartDate:        startDate,
		Activation:       activation,
	})
	if err != nil {
		writeDomainError(w, "Failed to create bill", err)
		return
	}

	writeJSON(w, http.StatusCreated, BillDTO{
		ID:               bill.ID,
		Name:             bill.Name,
		BillType:         bill.BillType,
		PaymentFrequency: bill.PaymentFrequency,
		TypicalAmount:    bill.TypicalAmount.Float64(),
		SavingsRule:      toSavingsRuleDTO(bill.Savings),
		Balance:          req.StartingBalance,
		Activation:       toActivationDTOs(bill.Activation),
	})
}

// BillHistory returns a bill's reserve history.
func (h *Handler) BillHistory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	entries, err := h.Planner.BalanceHistory(r.Context(), ledger.BillSubject(id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read history", err)
		return
	}
	writeJSON(w, http.StatusOK, toLedgerEntryDTOs(entries))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// RecordTransaction records a transaction.
func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, ok := parseRequiredDate(w, req.Date)
	if !ok {
		return
	}

	recorded, err := h.Planner.RecordTransaction(r.Context(), budget.Transaction{
		Kind:        budget.TxKind(req.Kind),
		WeekNumber:  req.WeekNumber,
		Amount:      ledger.NewMoney(req.Amount),
		Date:        date,
		Description: req.Description,
		Category:    req.Category,
		Subject:     parseSubject(req.SubjectKind, req.SubjectID),
	})
	if err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
		writeDomainError(w, "Failed to record transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(recorded))
}

// AmendTransaction applies a partial update to a transaction.
func (h *Handler) AmendTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req AmendTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var patch budget.TransactionPatch
	if req.Kind != nil {
		kind := budget.TxKind(*req.Kind)
		patch.Kind = &kind
	}
	patch.WeekNumber = req.WeekNumber
	if req.Amount != nil {
		amount := ledger.NewMoney(*req.Amount)
		patch.Amount = &amount
	}
	if req.Date != nil {
		date, ok := parseRequiredDate(w, *req.Date)
		if !ok {
			return
		}
		patch.Date = &date
	}
	patch.Description = req.Description
	patch.Category = req.Category
	if req.SubjectKind != nil || req.SubjectID != nil {
		subject := parseSubject(deref(req.SubjectKind), deref(req.SubjectID))
		patch.Subject = &subject
	}

	err := h.Planner.AmendTransaction(r.Context(), id, patch)
	if err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
		writeDomainError(w, "Failed to amend transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

// DeleteTransaction deletes a transaction and its ledger entry.
func (h *Handler) DeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := h.Planner.DeleteTransaction(r.Context(), id)
	if err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
		writeDomainError(w, "Failed to delete transaction", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Transfer moves money between two accounts.
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, ok := parseRequiredDate(w, req.Date)
	if !ok {
		return
	}

	err := h.Planner.Transfer(r.Context(), req.FromAccountID, req.ToAccountID,
		ledger.NewMoney(req.Amount), date, req.WeekNumber)
	if err != nil && !errors.Is(err, budget.ErrIncompleteSweep) {
		writeDomainError(w, "Failed to transfer", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"from_account_id": req.FromAccountID,
		"to_account_id":   req.ToAccountID,
		"amount":          req.Amount,
	})
}

// =============================================================================
// PAYCHECK AND ROLLOVER HANDLERS
// =============================================================================

// ProcessPaycheck splits a gross paycheck and applies the split.
func (h *Handler) ProcessPaycheck(w http.ResponseWriter, r *http.Request) {
	var req ProcessPaycheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	paycheckDate, ok := parseRequiredDate(w, req.PaycheckDate)
	if !ok {
		return
	}
	periodStart, ok := parseRequiredDate(w, req.PeriodStart)
	if !ok {
		return
	}

	split, err := h.Planner.ProcessPaycheck(r.Context(),
		ledger.NewMoney(req.Gross), paycheckDate, periodStart)
	sweepComplete := true
	if err != nil {
		if !errors.Is(err, budget.ErrIncompleteSweep) {
			writeDomainError(w, "Failed to process paycheck", err)
			return
		}
		sweepComplete = false
	}

	writeJSON(w, http.StatusCreated, PaycheckSplitDTO{
		Gross:             split.Gross.Float64(),
		BillsReserved:     split.BillsReserved.Float64(),
		AccountsAutoSaved: split.AccountsAutoSaved.Float64(),
		Remaining:         split.Remaining.Float64(),
		Week1Allocation:   split.Week1Allocation.Float64(),
		Week2Allocation:   split.Week2Allocation.Float64(),
		SweepComplete:     sweepComplete,
	})
}

// SweepRollovers runs a full rollover sweep.
func (h *Handler) SweepRollovers(w http.ResponseWriter, r *http.Request) {
	err := h.Planner.SweepRollovers(r.Context())
	if err != nil {
		var incomplete *budget.IncompleteSweepError
		if errors.As(err, &incomplete) {
			writeJSON(w, http.StatusOK, SweepResultDTO{
				Complete:     false,
				PendingWeeks: incomplete.Pending,
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to sweep rollovers", err)
		return
	}
	writeJSON(w, http.StatusOK, SweepResultDTO{Complete: true})
}

// WeekRollover computes one week's rollover without applying it.
func (h *Handler) WeekRollover(w http.ResponseWriter, r *http.Request) {
	number, ok := parseWeekNumber(w, r)
	if !ok {
		return
	}
	rollover, err := h.Planner.ComputeWeekRollover(r.Context(), number)
	if err != nil {
		writeDomainError(w, "Failed to compute rollover", err)
		return
	}
	writeJSON(w, http.StatusOK, RolloverDTO{
		WeekNumber: rollover.WeekNumber,
		Allocated:  rollover.Allocated.Float64(),
		Spent:      rollover.Spent.Float64(),
		Amount:     rollover.Amount.Float64(),
	})
}

// =============================================================================
// WEEK AND SUMMARY HANDLERS
// =============================================================================

// ListWeeks returns all weeks in ascending order.
func (h *Handler) ListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.Planner.Weeks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list weeks", err)
		return
	}
	dtos := make([]WeekDTO, len(weeks))
	for i, week := range weeks {
		dtos[i] = toWeekDTO(week)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetWeek returns a single week.
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	number, ok := parseWeekNumber(w, r)
	if !ok {
		return
	}
	week, err := h.Planner.Week(r.Context(), number)
	if err != nil {
		writeDomainError(w, "Failed to get week", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekDTO(week))
}

// WeekTransactions returns a week's transactions.
func (h *Handler) WeekTransactions(w http.ResponseWriter, r *http.Request) {
	number, ok := parseWeekNumber(w, r)
	if !ok {
		return
	}
	txs, err := h.Planner.TransactionsByWeek(r.Context(), number)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list transactions", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTOs(txs))
}

// WeekSummary returns a week's aggregates.
func (h *Handler) WeekSummary(w http.ResponseWriter, r *http.Request) {
	number, ok := parseWeekNumber(w, r)
	if !ok {
		return
	}
	summary, err := h.Planner.WeekSummary(r.Context(), number)
	if err != nil {
		writeDomainError(w, "Failed to summarize week", err)
		return
	}
	writeJSON(w, http.StatusOK, toWeekSummaryDTO(summary))
}

// PeriodSummary returns the bi-weekly period containing the given week.
func (h *Handler) PeriodSummary(w http.ResponseWriter, r *http.Request) {
	number, ok := parseWeekNumber(w, r)
	if !ok {
		return
	}
	summary, err := h.Planner.PeriodSummary(r.Context(), number)
	if err != nil {
		writeDomainError(w, "Failed to summarize period", err)
		return
	}
	dto := PeriodSummaryDTO{FirstWeek: toWeekSummaryDTO(summary.FirstWeek)}
	if summary.SecondWeek.Week.Number != 0 {
		second := toWeekSummaryDTO(summary.SecondWeek)
		dto.SecondWeek = &second
	}
	writeJSON(w, http.StatusOK, dto)
}

// Totals returns all-time income vs outflow.
func (h *Handler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := h.Planner.Totals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute totals", err)
		return
	}
	writeJSON(w, http.StatusOK, TotalsDTO{
		Income:   totals.Income.Float64(),
		Spending: totals.Spending.Float64(),
		Bills:    totals.Bills.Float64(),
		Savings:  totals.Savings.Float64(),
		Net:      totals.Net().Float64(),
	})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case budget.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case budget.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func parseRequiredDate(w http.ResponseWriter, s string) (ledger.Date, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return ledger.Date{}, false
	}
	return ledger.Date{Time: t}, true
}

func parseOptionalDate(w http.ResponseWriter, s string) (ledger.Date, bool) {
	if s == "" {
		return ledger.Date{}, true
	}
	return parseRequiredDate(w, s)
}

func parseWeekNumber(w http.ResponseWriter, r *http.Request) (int, bool) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid week number", err)
		return 0, false
	}
	return number, true
}

func parseSubject(kind, id string) ledger.Subject {
	if id == "" {
		return ledger.Subject{}
	}
	if kind == string(ledger.KindBill) {
		return ledger.BillSubject(id)
	}
	return ledger.AccountSubject(id)
}

func parseSavingsRule(dto SavingsRuleDTO) budget.SavingsRule {
	switch dto.Kind {
	case string(budget.RuleFixed):
		return budget.FixedSavings(ledger.NewMoney(dto.Value))
	case string(budget.RulePercentage):
		return budget.PercentageSavings(decimal.NewFromFloat(dto.Value))
	default:
		return budget.SavingsRuleFromLegacy(dto.Value)
	}
}

func parseActivation(dtos []ActivationPeriodDTO) ([]budget.ActivationPeriod, error) {
	if len(dtos) == 0 {
		return nil, nil
	}
	periods := make([]budget.ActivationPeriod, len(dtos))
	for i, dto := range dtos {
		start, err := time.Parse("2006-01-02", dto.Start)
		if err != nil {
			return nil, err
		}
		periods[i] = budget.ActivationPeriod{Start: ledger.Date{Time: start}}
		if dto.End != nil {
			end, err := time.Parse("2006-01-02", *dto.End)
			if err != nil {
				return nil, err
			}
			periods[i].End = &ledger.Date{Time: end}
		}
	}
	return periods, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
