package domain

import "github.com/shopspring/decimal"

// ============================================================
// Payment Plan Segments
// ============================================================

// SegmentType determines which amount/count fields a segment requires.
type SegmentType string

const (
	// SegmentFixed pays a fixed amount for a fixed number of drafts.
	SegmentFixed SegmentType = "fixed"
	// SegmentRemainder pays a fixed amount until the plan balance is
	// exhausted; the draft count is open-ended.
	SegmentRemainder SegmentType = "remainder"
	// SegmentSolveAmount pays for a fixed number of drafts with the
	// per-draft amount solved by the schedule generator.
	SegmentSolveAmount SegmentType = "solve_amount"
)

// Frequency is the draft cadence within a segment.
type Frequency string

const (
	FrequencyWeekly      Frequency = "weekly"
	FrequencyBiWeekly    Frequency = "bi_weekly"
	FrequencySemiMonthly Frequency = "semi_monthly"
	FrequencyMonthly     Frequency = "monthly"
)

// Segment is one contiguous portion of a plan's schedule sharing a
// single generation policy. Dates use YYYY-MM-DD, matching the backend.
//
// Field population depends on Type: fixed requires Amount and Count,
// remainder requires Amount only, solve_amount requires Count only.
// EndDate is meaningful only for semi_monthly frequency, where it
// defines the second monthly draft date.
type Segment struct {
	// Key is an internal identity used to track a segment across edits.
	// It is never serialized to the backend.
	Key string `json:"-"`

	Order     int              `json:"order"`
	Type      SegmentType      `json:"type"`
	Amount    *decimal.Decimal `json:"amount"`
	Count     *int             `json:"count"`
	Frequency Frequency        `json:"frequency"`
	StartDate *string          `json:"start_date"`
	EndDate   *string          `json:"end_date"`
}

// Clone returns a deep copy of the segment.
func (s Segment) Clone() Segment {
	out := s
	if s.Amount != nil {
		amt := *s.Amount
		out.Amount = &amt
	}
	if s.Count != nil {
		cnt := *s.Count
		out.Count = &cnt
	}
	if s.StartDate != nil {
		sd := *s.StartDate
		out.StartDate = &sd
	}
	if s.EndDate != nil {
		ed := *s.EndDate
		out.EndDate = &ed
	}
	return out
}

// SegmentField names a mutable segment field for constrained updates.
type SegmentField string

const (
	FieldType      SegmentField = "type"
	FieldAmount    SegmentField = "amount"
	FieldCount     SegmentField = "count"
	FieldFrequency SegmentField = "frequency"
	FieldStartDate SegmentField = "start_date"
	FieldEndDate   SegmentField = "end_date"
)

// ValidSegmentType reports whether t is a known segment type.
func ValidSegmentType(t SegmentType) bool {
	switch t {
	case SegmentFixed, SegmentRemainder, SegmentSolveAmount:
		return true
	}
	return false
}

// ValidFrequency reports whether f is a known frequency.
func ValidFrequency(f Frequency) bool {
	switch f {
	case FrequencyWeekly, FrequencyBiWeekly, FrequencySemiMonthly, FrequencyMonthly:
		return true
	}
	return false
}
