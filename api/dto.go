/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY ENCODING:
  Amounts cross the wire as float64. The domain converts to decimal at
  the boundary; two-decimal currency survives the float round trip.

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - budget/types.go: The domain model behind them
*/
package api

import (
	"github.com/warp/budget-engine/budget"
	"github.com/warp/budget-engine/ledger"
)

// =============================================================================
// REQUEST/RESPONSE TYPES
// =============================================================================

// AccountDTO represents a savings account in API responses.
type AccountDTO struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	GoalAmount     float64  `json:"goal_amount"`
	AutoSaveAmount float64  `json:"auto_save_amount"`
	IsDefaultSave  bool     `json:"is_default_save"`
	Balance        float64  `json:"balance"`
	GoalProgress   float64  `json:"goal_progress"`
	GoalRemaining  float64  `json:"goal_remaining"`
	Activation     []ActivationPeriodDTO `json:"activation_periods,omitempty"`
}

// ActivationPeriodDTO is a half-open [start, end) interval.
type ActivationPeriodDTO struct {
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

// CreateAccountRequest is the request to create a savings account.
type CreateAccountRequest struct {
	Name            string                `json:"name"`
	GoalAmount      float64               `json:"goal_amount"`
	AutoSaveAmount  float64               `json:"auto_save_amount"`
	StartingBalance float64               `json:"starting_balance"`
	StartDate       string                `json:"start_date,omitempty"`
	Activation      []ActivationPeriodDTO `json:"activation_periods,omitempty"`
}

// BillDTO represents a bill reserve in API responses.
type BillDTO struct {
	ID               string                `json:"id"`
	Name             string                `json:"name"`
	BillType         string                `json:"bill_type"`
	PaymentFrequency string                `json:"payment_frequency"`
	TypicalAmount    float64               `json:"typical_amount"`
	SavingsRule      SavingsRuleDTO        `json:"savings_rule"`
	Balance          float64               `json:"balance"`
	Activation       []ActivationPeriodDTO `json:"activation_periods,omitempty"`
}

// SavingsRuleDTO is the per-paycheck reserve rule. Kind is "fixed" or
// "percentage". A request with an empty kind uses the legacy encoding:
// values below 1.0 mean a fraction of the paycheck.
type SavingsRuleDTO struct {
	Kind  string  `json:"kind,omitempty"`
	Value float64 `json:"value"`
}

// CreateBillRequest is the request to create a bill reserve.
type CreateBillRequest struct {
	Name             string                `json:"name"`
	BillType         string                `json:"bill_type"`
	PaymentFrequency string                `json:"payment_frequency"`
	TypicalAmount    float64               `json:"typical_amount"`
	SavingsRule      SavingsRuleDTO        `json:"savings_rule"`
	StartingBalance  float64               `json:"starting_balance"`
	StartDate        string                `json:"start_date,omitempty"`
	Activation       []ActivationPeriodDTO `json:"activation_periods,omitempty"`
}

// WeekDTO represents one 7-day spending period.
type WeekDTO struct {
	Number         int     `json:"week_number"`
	StartDate      string  `json:"start_date"`
	EndDate        string  `json:"end_date"`
	BaseAllocation float64 `json:"base_allocation"`
	RolloverState  string  `json:"rollover_state"`
}

// TransactionDTO represents a recorded transaction.
type TransactionDTO struct {
	ID              string  `json:"id"`
	Kind            string  `json:"kind"`
	WeekNumber      int     `json:"week_number"`
	Amount          float64 `json:"amount"`
	Date            string  `json:"date"`
	Description     string  `json:"description,omitempty"`
	Category        string  `json:"category,omitempty"`
	SubjectKind     string  `json:"subject_kind,omitempty"`
	SubjectID       string  `json:"subject_id,omitempty"`
	TransferGroupID string  `json:"transfer_group_id,omitempty"`
	SourceWeek      int     `json:"source_week,omitempty"`
}

// RecordTransactionRequest is the request to record a transaction.
type RecordTransactionRequest struct {
	Kind        string  `json:"kind"`
	WeekNumber  int     `json:"week_number"`
	Amount      float64 `json:"amount"`
	Date        string  `json:"date"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category,omitempty"`
	SubjectKind string  `json:"subject_kind,omitempty"` // "account" or "bill"
	SubjectID   string  `json:"subject_id,omitempty"`
}

// AmendTransactionRequest is a partial update; absent fields are unchanged.
type AmendTransactionRequest struct {
	Kind        *string  `json:"kind,omitempty"`
	WeekNumber  *int     `json:"week_number,omitempty"`
	Amount      *float64 `json:"amount,omitempty"`
	Date        *string  `json:"date,omitempty"`
	Description *string  `json:"description,omitempty"`
	Category    *string  `json:"category,omitempty"`
	SubjectKind *string  `json:"subject_kind,omitempty"`
	SubjectID   *string  `json:"subject_id,omitempty"` // "" detaches the subject
}

// ProcessPaycheckRequest is the request to split and apply a paycheck.
type ProcessPaycheckRequest struct {
	Gross        float64 `json:"gross"`
	PaycheckDate string  `json:"paycheck_date"`
	PeriodStart  string  `json:"period_start"`
}

// PaycheckSplitDTO is the computed paycheck division.
type PaycheckSplitDTO struct {
	Gross             float64 `json:"gross"`
	BillsReserved     float64 `json:"bills_reserved"`
	AccountsAutoSaved float64 `json:"accounts_auto_saved"`
	Remaining         float64 `json:"remaining"`
	Week1Allocation   float64 `json:"week1_allocation"`
	Week2Allocation   float64 `json:"week2_allocation"`
	SweepComplete     bool    `json:"sweep_complete"`
}

// TransferRequest moves money between two accounts.
type TransferRequest struct {
	FromAccountID string  `json:"from_account_id"`
	ToAccountID   string  `json:"to_account_id"`
	Amount        float64 `json:"amount"`
	Date          string  `json:"date"`
	WeekNumber    int     `json:"week_number"`
}

// RolloverDTO is a week's surplus or deficit.
type RolloverDTO struct {
	WeekNumber int     `json:"week_number"`
	Allocated  float64 `json:"allocated"`
	Spent      float64 `json:"spent"`
	Amount     float64 `json:"amount"`
}

// SweepResultDTO reports a sweep outcome.
type SweepResultDTO struct {
	Complete     bool  `json:"complete"`
	PendingWeeks []int `json:"pending_weeks,omitempty"`
}

// LedgerEntryDTO is one row of a subject's balance history.
type LedgerEntryDTO struct {
	ID           int64   `json:"id"`
	Change       float64 `json:"change"`
	RunningTotal float64 `json:"running_total"`
	Date         string  `json:"date"`
	OriginTxID   string  `json:"origin_tx_id,omitempty"`
	Description  string  `json:"description,omitempty"`
}

// WeekSummaryDTO aggregates a week's transactions by kind.
type WeekSummaryDTO struct {
	Week          WeekDTO `json:"week"`
	TotalIncome   float64 `json:"total_income"`
	TotalSpending float64 `json:"total_spending"`
	TotalBills    float64 `json:"total_bills"`
	TotalSavings  float64 `json:"total_savings"`
	Transactions  int     `json:"transactions"`
}

// PeriodSummaryDTO covers one bi-weekly pay period.
type PeriodSummaryDTO struct {
	FirstWeek  WeekSummaryDTO  `json:"first_week"`
	SecondWeek *WeekSummaryDTO `json:"second_week,omitempty"`
}

// TotalsDTO is the all-time income vs outflow picture.
type TotalsDTO struct {
	Income   float64 `json:"income"`
	Spending float64 `json:"spending"`
	Bills    float64 `json:"bills"`
	Savings  float64 `json:"savings"`
	Net      float64 `json:"net"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toWeekDTO(w budget.Week) WeekDTO {
	return WeekDTO{
		Number:         w.Number,
		StartDate:      w.StartDate.String(),
		EndDate:        w.EndDate.String(),
		BaseAllocation: w.BaseAllocation.Float64(),
		RolloverState:  string(w.RolloverState),
	}
}

func toTransactionDTO(t budget.Transaction) TransactionDTO {
	dto := TransactionDTO{
		ID:              t.ID,
		Kind:            string(t.Kind),
		WeekNumber:      t.WeekNumber,
		Amount:          t.Amount.Float64(),
		Date:            t.Date.String(),
		Description:     t.Description,
		Category:        t.Category,
		TransferGroupID: t.TransferGroupID,
		SourceWeek:      t.SourceWeek,
	}
	if !t.Subject.IsZero() {
		dto.SubjectKind = string(t.Subject.Kind)
		dto.SubjectID = t.Subject.ID
	}
	return dto
}

func toTransactionDTOs(txs []budget.Transaction) []TransactionDTO {
	dtos := make([]TransactionDTO, len(txs))
	for i, t := range txs {
		dtos[i] = toTransactionDTO(t)
	}
	return dtos
}

func toLedgerEntryDTOs(entries []ledger.Entry) []LedgerEntryDTO {
	dtos := make([]LedgerEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = LedgerEntryDTO{
			ID:           e.ID,
			Change:       e.Change.Float64(),
			RunningTotal: e.RunningTotal.Float64(),
			Date:         e.Date.String(),
			OriginTxID:   e.OriginTxID,
			Description:  e.Description,
		}
	}
	return dtos
}

func toWeekSummaryDTO(s budget.WeekSummary) WeekSummaryDTO {
	return WeekSummaryDTO{
		Week:          toWeekDTO(s.Week),
		TotalIncome:   s.TotalIncome.Float64(),
		TotalSpending: s.TotalSpending.Float64(),
		TotalBills:    s.TotalBills.Float64(),
		TotalSavings:  s.TotalSavings.Float64(),
		Transactions:  s.Transactions,
	}
}

func toSavingsRuleDTO(r budget.SavingsRule) SavingsRuleDTO {
	if r.Kind == budget.RulePercentage {
		f, _ := r.Fraction.Float64()
		return SavingsRuleDTO{Kind: string(budget.RulePercentage), Value: f}
	}
	return SavingsRuleDTO{Kind: string(budget.RuleFixed), Value: r.Fixed.Float64()}
}

func toActivationDTOs(periods []budget.ActivationPeriod) []ActivationPeriodDTO {
	if len(periods) == 0 {
		return nil
	}
	dtos := make([]ActivationPeriodDTO, len(periods))
	for i, p := range periods {
		dtos[i] = ActivationPeriodDTO{Start: p.Start.String()}
		if p.End != nil {
			end := p.End.String()
			dtos[i].End = &end
		}
	}
	return dtos
}
