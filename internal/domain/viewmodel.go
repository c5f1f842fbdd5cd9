package domain

import "github.com/shopspring/decimal"

// ============================================================
// Presentation view model
// ============================================================

// Wire fee style classes, chosen by comparing the fee sum against the
// parent draft amount.
const (
	WireClassCovered   = "wire-covered"
	WireClassShortfall = "wire-shortfall"
)

// DisplayRow is one row of the flattened schedule display: either a
// schedule item or one of its attached wire fees. Key is unique across
// both kinds even when an item and a fee share a numeric id.
type DisplayRow struct {
	Key       string `json:"key"`
	IsWireFee bool   `json:"is_wire_fee"`

	// Item is set on parent rows, Fee on wire fee rows.
	Item *ScheduleItem `json:"item,omitempty"`
	Fee  *FeeRecord    `json:"fee,omitempty"`

	DraftNumber     string `json:"draft_number,omitempty"`
	FormattedAmount string `json:"formatted_amount"`
	StyleClass      string `json:"style_class,omitempty"`
	IsExpanded      bool   `json:"is_expanded,omitempty"`
}

// RollupRow holds the aggregates for one status category.
type RollupRow struct {
	Count       int             `json:"count"`
	DraftAmount decimal.Decimal `json:"draft_amount"`
	SetupFee    decimal.Decimal `json:"setup_fee"`
	ProgramFee  decimal.Decimal `json:"program_fee"`
	BankingFee  decimal.Decimal `json:"banking_fee"`
	Savings     decimal.Decimal `json:"savings_amount"`
}

// RollupTable partitions aggregates by status category.
type RollupTable struct {
	All     RollupRow `json:"all"`
	Cleared RollupRow `json:"cleared"`
	NSF     RollupRow `json:"nsf"`
}

// PlanViewModel is the presentation-ready result of one refresh cycle.
type PlanViewModel struct {
	PlanID     string       `json:"plan_id"`
	Header     PlanHeader   `json:"header"`
	Rows       []DisplayRow `json:"rows"`
	Rollups    RollupTable  `json:"rollups"`
	ItemCount  int          `json:"item_count"`
	FirstDraft string       `json:"first_draft_date,omitempty"`
	LastDraft  string       `json:"last_draft_date,omitempty"`

	// Empty marks the degraded "no data" state rendered when the
	// backend fetch fails.
	Empty bool `json:"empty,omitempty"`
}
