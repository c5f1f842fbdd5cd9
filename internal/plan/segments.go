// Package plan implements the schedule and ledger aggregation engine:
// segment editing, line item normalization, display sequencing, wire
// fee merging and financial rollups. Everything here is a pure,
// synchronous transform over in-memory collections; all I/O lives in
// the store layer behind the port interfaces.
package plan

import (
	"fmt"
	"time"

	"github.com/brightpath/planview-bfa-go/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SegmentList holds the ordered payment segments of a plan draft and
// enforces the editing rules: dense 1..N ordering, type-dependent
// field clearing, and the one-segment minimum.
//
// SegmentList is not safe for concurrent use; callers hold one per
// draft session and serialize access.
type SegmentList struct {
	segments []domain.Segment
	onChange func([]domain.Segment)
}

// NewSegmentList creates an empty segment list. onChange, if non-nil,
// is invoked exactly once per successful mutation with the serialized
// segment list.
func NewSegmentList(onChange func([]domain.Segment)) *SegmentList {
	return &SegmentList{onChange: onChange}
}

// SetSegments replaces the list with a deep copy of in. Segments
// without an identity key get one assigned. A nil input resets to an
// empty list.
func (l *SegmentList) SetSegments(in []domain.Segment) {
	if in == nil {
		l.segments = nil
		l.notify()
		return
	}
	segs := make([]domain.Segment, 0, len(in))
	for _, s := range in {
		c := s.Clone()
		if c.Key == "" {
			c.Key = uuid.New().String()
		}
		segs = append(segs, c)
	}
	l.segments = segs
	l.notify()
}

// Len returns the number of segments.
func (l *SegmentList) Len() int {
	return len(l.segments)
}

// Segments returns a deep copy of the current list, identity keys
// included.
func (l *SegmentList) Segments() []domain.Segment {
	out := make([]domain.Segment, 0, len(l.segments))
	for _, s := range l.segments {
		out = append(out, s.Clone())
	}
	return out
}

// AddSegment appends a new fixed/monthly segment with the next order
// number and all amount and date fields unset.
func (l *SegmentList) AddSegment() domain.Segment {
	seg := domain.Segment{
		Key:       uuid.New().String(),
		Order:     len(l.segments) + 1,
		Type:      domain.SegmentFixed,
		Frequency: domain.FrequencyMonthly,
	}
	l.segments = append(l.segments, seg)
	l.notify()
	return seg.Clone()
}

// UpdateField applies a constrained single-field mutation:
//   - type → remainder clears the count; type → solve_amount clears
//     the amount
//   - frequency away from semi_monthly clears the end date
func (l *SegmentList) UpdateField(index int, field domain.SegmentField, value any) error {
	if index < 0 || index >= len(l.segments) {
		return &domain.ErrIndexOutOfRange{Index: index, Len: len(l.segments)}
	}
	seg := &l.segments[index]

	switch field {
	case domain.FieldType:
		t, err := coerceSegmentType(value)
		if err != nil {
			return err
		}
		seg.Type = t
		switch t {
		case domain.SegmentRemainder:
			seg.Count = nil
		case domain.SegmentSolveAmount:
			seg.Amount = nil
		}

	case domain.FieldAmount:
		amt, err := coerceAmount(value)
		if err != nil {
			return err
		}
		seg.Amount = amt

	case domain.FieldCount:
		cnt, err := coerceCount(value)
		if err != nil {
			return err
		}
		seg.Count = cnt

	case domain.FieldFrequency:
		f, err := coerceFrequency(value)
		if err != nil {
			return err
		}
		seg.Frequency = f
		if f != domain.FrequencySemiMonthly {
			seg.EndDate = nil
		}

	case domain.FieldStartDate:
		d, err := coerceDate(value, "start_date")
		if err != nil {
			return err
		}
		seg.StartDate = d

	case domain.FieldEndDate:
		d, err := coerceDate(value, "end_date")
		if err != nil {
			return err
		}
		seg.EndDate = d

	default:
		return &domain.ErrValidation{Field: string(field), Message: "unknown segment field"}
	}

	l.notify()
	return nil
}

// DeleteSegment removes the segment at index and renumbers the rest.
// Deleting the sole remaining segment fails with ErrMinimumSegment and
// leaves the list unchanged.
func (l *SegmentList) DeleteSegment(index int) error {
	if index < 0 || index >= len(l.segments) {
		return &domain.ErrIndexOutOfRange{Index: index, Len: len(l.segments)}
	}
	if len(l.segments) <= 1 {
		return &domain.ErrMinimumSegment{}
	}
	l.segments = append(l.segments[:index], l.segments[index+1:]...)
	l.renumber()
	l.notify()
	return nil
}

// MoveUp swaps the segment at index with its predecessor. Index 0 is a
// no-op.
func (l *SegmentList) MoveUp(index int) error {
	if index < 0 || index >= len(l.segments) {
		return &domain.ErrIndexOutOfRange{Index: index, Len: len(l.segments)}
	}
	if index == 0 {
		return nil
	}
	l.segments[index-1], l.segments[index] = l.segments[index], l.segments[index-1]
	l.renumber()
	l.notify()
	return nil
}

// MoveDown swaps the segment at index with its successor. The last
// index is a no-op.
func (l *SegmentList) MoveDown(index int) error {
	if index < 0 || index >= len(l.segments) {
		return &domain.ErrIndexOutOfRange{Index: index, Len: len(l.segments)}
	}
	if index == len(l.segments)-1 {
		return nil
	}
	l.segments[index], l.segments[index+1] = l.segments[index+1], l.segments[index]
	l.renumber()
	l.notify()
	return nil
}

// Serialize returns the list in its backend shape: deep copies in
// current order with identity keys stripped, carrying only the seven
// canonical segment fields.
func (l *SegmentList) Serialize() []domain.Segment {
	out := make([]domain.Segment, 0, len(l.segments))
	for _, s := range l.segments {
		c := s.Clone()
		c.Key = ""
		out = append(out, c)
	}
	return out
}

// Validate checks the segment population invariants ahead of schedule
// generation and returns every violation found.
func (l *SegmentList) Validate() []error {
	var errs []error
	for i, s := range l.segments {
		field := func(name string) string { return fmt.Sprintf("segments[%d].%s", i, name) }

		switch s.Type {
		case domain.SegmentFixed:
			if s.Amount == nil {
				errs = append(errs, &domain.ErrValidation{Field: field("amount"), Message: "required for fixed segments"})
			}
			if s.Count == nil {
				errs = append(errs, &domain.ErrValidation{Field: field("count"), Message: "required for fixed segments"})
			}
		case domain.SegmentRemainder:
			if s.Amount == nil {
				errs = append(errs, &domain.ErrValidation{Field: field("amount"), Message: "required for remainder segments"})
			}
			if s.Count != nil {
				errs = append(errs, &domain.ErrValidation{Field: field("count"), Message: "must be empty for remainder segments"})
			}
		case domain.SegmentSolveAmount:
			if s.Count == nil {
				errs = append(errs, &domain.ErrValidation{Field: field("count"), Message: "required for solve_amount segments"})
			}
			if s.Amount != nil {
				errs = append(errs, &domain.ErrValidation{Field: field("amount"), Message: "must be empty for solve_amount segments"})
			}
		default:
			errs = append(errs, &domain.ErrValidation{Field: field("type"), Message: fmt.Sprintf("unknown segment type '%s'", s.Type)})
		}

		if s.Amount != nil && !s.Amount.IsPositive() {
			errs = append(errs, &domain.ErrValidation{Field: field("amount"), Message: "must be positive"})
		}
		if s.Count != nil && *s.Count <= 0 {
			errs = append(errs, &domain.ErrValidation{Field: field("count"), Message: "must be positive"})
		}

		if s.EndDate != nil && s.Frequency != domain.FrequencySemiMonthly {
			errs = append(errs, &domain.ErrValidation{Field: field("end_date"), Message: "only valid for semi_monthly frequency"})
		}
		if s.StartDate == nil && (i == 0 || s.Frequency == domain.FrequencySemiMonthly) {
			errs = append(errs, &domain.ErrValidation{Field: field("start_date"), Message: "required for the first segment and for semi_monthly segments"})
		}
	}
	return errs
}

func (l *SegmentList) renumber() {
	for i := range l.segments {
		l.segments[i].Order = i + 1
	}
}

func (l *SegmentList) notify() {
	if l.onChange != nil {
		l.onChange(l.Serialize())
	}
}

// --- field coercion helpers ---

func coerceSegmentType(v any) (domain.SegmentType, error) {
	s, ok := v.(string)
	if !ok {
		if t, ok := v.(domain.SegmentType); ok {
			s = string(t)
		} else {
			return "", &domain.ErrValidation{Field: "type", Message: "must be a string"}
		}
	}
	t := domain.SegmentType(s)
	if !domain.ValidSegmentType(t) {
		return "", &domain.ErrValidation{Field: "type", Message: fmt.Sprintf("unknown segment type '%s'", s)}
	}
	return t, nil
}

func coerceFrequency(v any) (domain.Frequency, error) {
	s, ok := v.(string)
	if !ok {
		if f, ok := v.(domain.Frequency); ok {
			s = string(f)
		} else {
			return "", &domain.ErrValidation{Field: "frequency", Message: "must be a string"}
		}
	}
	f := domain.Frequency(s)
	if !domain.ValidFrequency(f) {
		return "", &domain.ErrValidation{Field: "frequency", Message: fmt.Sprintf("unknown frequency '%s'", s)}
	}
	return f, nil
}

func coerceAmount(v any) (*decimal.Decimal, error) {
	switch a := v.(type) {
	case nil:
		return nil, nil
	case decimal.Decimal:
		return &a, nil
	case *decimal.Decimal:
		return a, nil
	case float64:
		d := decimal.NewFromFloat(a)
		return &d, nil
	case string:
		if a == "" {
			return nil, nil
		}
		d, err := decimal.NewFromString(a)
		if err != nil {
			return nil, &domain.ErrValidation{Field: "amount", Message: fmt.Sprintf("not a valid amount: '%s'", a)}
		}
		return &d, nil
	}
	return nil, &domain.ErrValidation{Field: "amount", Message: "must be a number"}
}

func coerceCount(v any) (*int, error) {
	switch c := v.(type) {
	case nil:
		return nil, nil
	case int:
		return &c, nil
	case *int:
		return c, nil
	case float64:
		// JSON numbers decode as float64.
		if c != float64(int(c)) {
			return nil, &domain.ErrValidation{Field: "count", Message: "must be a whole number"}
		}
		n := int(c)
		return &n, nil
	}
	return nil, &domain.ErrValidation{Field: "count", Message: "must be a whole number"}
}

func coerceDate(v any, field string) (*string, error) {
	s, ok := v.(string)
	if !ok {
		if v == nil {
			return nil, nil
		}
		return nil, &domain.ErrValidation{Field: field, Message: "must be a YYYY-MM-DD string"}
	}
	if s == "" {
		return nil, nil
	}
	if _, err := time.Parse("2006-01-02", s); err != nil {
		return nil, &domain.ErrValidation{Field: field, Message: fmt.Sprintf("invalid date '%s', use YYYY-MM-DD", s)}
	}
	return &s, nil
}
