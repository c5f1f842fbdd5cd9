package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================================
// Payment Schedule (drafts, wire fees, rollups)
// ============================================================

// ItemStatus is the lifecycle status of a scheduled draft.
type ItemStatus string

const (
	StatusScheduled ItemStatus = "Scheduled"
	StatusCleared   ItemStatus = "Cleared"
	StatusNSF       ItemStatus = "NSF"
	StatusCancelled ItemStatus = "Cancelled"
)

// DefaultStatusOptions is the built-in fallback when the backend's
// status_options table cannot be fetched.
var DefaultStatusOptions = []StatusOption{
	{Value: string(StatusScheduled), Label: "Scheduled"},
	{Value: string(StatusCleared), Label: "Cleared"},
	{Value: string(StatusNSF), Label: "NSF"},
	{Value: string(StatusCancelled), Label: "Cancelled"},
}

// StatusOption is one selectable draft status.
type StatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// ScheduleItem is one dated payment draft after normalization.
// Amounts are always populated (coerced to zero when the source value
// is missing or non-numeric). Dates use YYYY-MM-DD.
type ScheduleItem struct {
	ID          string     `json:"id"`
	IsTemporary bool       `json:"is_temporary,omitempty"`
	RowNumber   int        `json:"row_number"`
	PaymentDate string     `json:"payment_date"`
	Status      ItemStatus `json:"status"`

	DraftAmount decimal.Decimal `json:"draft_amount"`
	SetupFee    decimal.Decimal `json:"setup_fee"`
	ProgramFee  decimal.Decimal `json:"program_fee"`
	BankingFee  decimal.Decimal `json:"banking_fee"`
	Savings     decimal.Decimal `json:"savings_amount"`

	// CalculatedDraftNumber is the display sequence assigned after
	// date ordering; "-" for NSF/Cancelled items.
	CalculatedDraftNumber string `json:"calculated_draft_number,omitempty"`
	HasDraftNumber        bool   `json:"has_draft_number,omitempty"`

	// Extra preserves source keys outside the canonical shape.
	Extra map[string]any `json:"-"`
}

// PaymentTime parses the item's payment date. Missing or malformed
// dates return the zero time, which sorts before any real date.
func (it ScheduleItem) PaymentTime() time.Time {
	if it.PaymentDate == "" {
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", it.PaymentDate)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FeeRecord is an ancillary charge (e.g. a wire transfer fee) attached
// to a schedule item. Its lifetime is independent of the draft it
// annotates.
type FeeRecord struct {
	ID                   string          `json:"id"`
	ParentScheduleItemID string          `json:"schedule_item_id"`
	FeeType              string          `json:"fee_type"`
	Amount               decimal.Decimal `json:"amount"`
}

// PlanRollups carries backend-precomputed aggregates. A nil field means
// "not supplied" and the aggregator derives the value from line items.
// SavingsBalance is a running balance, not a per-draft savings total,
// and is never substituted for a live savings sum.
type PlanRollups struct {
	TotalCount       *int             `json:"total_count"`
	TotalDraftAmount *decimal.Decimal `json:"total_draft_amount"`
	TotalSetupFee    *decimal.Decimal `json:"total_setup_fee"`
	TotalProgramFee  *decimal.Decimal `json:"total_program_fee"`
	TotalBankingFee  *decimal.Decimal `json:"total_banking_fee"`

	ClearedCount       *int             `json:"cleared_count"`
	ClearedDraftAmount *decimal.Decimal `json:"cleared_draft_amount"`
	ClearedSetupFee    *decimal.Decimal `json:"cleared_setup_fee"`
	ClearedProgramFee  *decimal.Decimal `json:"cleared_program_fee"`
	ClearedBankingFee  *decimal.Decimal `json:"cleared_banking_fee"`

	NSFCount       *int             `json:"nsf_count"`
	NSFDraftAmount *decimal.Decimal `json:"nsf_draft_amount"`
	NSFSetupFee    *decimal.Decimal `json:"nsf_setup_fee"`
	NSFProgramFee  *decimal.Decimal `json:"nsf_program_fee"`
	NSFBankingFee  *decimal.Decimal `json:"nsf_banking_fee"`

	SavingsBalance *decimal.Decimal `json:"savings_balance"`
}

// PlanHeader is the plan-level record the schedule hangs off.
type PlanHeader struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	PlanStatus string    `json:"plan_status"`
	Segments   []Segment `json:"segments"`
	CreatedAt  string    `json:"created_at,omitempty"`
}

// PlanSchedule is the result of one schedule fetch: the plan header,
// the raw (pre-normalization) schedule rows, and optional rollups.
type PlanSchedule struct {
	Header   PlanHeader
	RawItems []map[string]any
	Rollups  *PlanRollups
}
