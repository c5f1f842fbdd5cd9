package plan

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/brightpath/planview-bfa-go/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Raw schedule rows arrive from two sources with overlapping but
// differently named columns: persisted backend records (authoritative
// names) and provisional generator estimates (estimated_* aliases).
// Each canonical field resolves through an ordered lookup: the
// authoritative name first, then the alias, then zero.
var amountFields = []struct {
	canonical string
	sources   []string
	assign    func(*domain.ScheduleItem, decimal.Decimal)
}{
	{"draft_amount", []string{"draft_amount", "estimated_draft_amount"},
		func(it *domain.ScheduleItem, d decimal.Decimal) { it.DraftAmount = d }},
	{"setup_fee", []string{"setup_fee", "estimated_setup_fee"},
		func(it *domain.ScheduleItem, d decimal.Decimal) { it.SetupFee = d }},
	{"program_fee", []string{"program_fee", "estimated_program_fee"},
		func(it *domain.ScheduleItem, d decimal.Decimal) { it.ProgramFee = d }},
	{"banking_fee", []string{"banking_fee", "estimated_banking_fee"},
		func(it *domain.ScheduleItem, d decimal.Decimal) { it.BankingFee = d }},
	{"savings_amount", []string{"savings_amount", "estimated_savings_amount"},
		func(it *domain.ScheduleItem, d decimal.Decimal) { it.Savings = d }},
}

var dateSources = []string{"payment_date", "date"}

// consumedKeys are source keys folded into the canonical shape; every
// other key passes through untouched on Extra.
var consumedKeys = func() map[string]bool {
	keys := map[string]bool{"id": true, "is_temporary": true, "row_number": true, "status": true}
	for _, f := range amountFields {
		for _, s := range f.sources {
			keys[s] = true
		}
	}
	for _, s := range dateSources {
		keys[s] = true
	}
	return keys
}()

// Processor normalizes raw schedule rows into canonical items.
// Normalization is idempotent: processing the Raw() form of an item
// yields the item back.
type Processor struct {
	logger *zap.Logger

	// OnAnomaly, if set, is called once per coerced-to-zero field so
	// the caller can count anomalies.
	OnAnomaly func(field string)
}

// NewProcessor creates a processor. A nil logger disables anomaly
// logging.
func NewProcessor(logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{logger: logger}
}

// Process normalizes a batch of raw rows. Row numbers default to the
// 1-based position, statuses to Scheduled, and items without a
// persisted id receive a generated temporary one.
func (p *Processor) Process(raw []map[string]any) []domain.ScheduleItem {
	items := make([]domain.ScheduleItem, 0, len(raw))
	for i, row := range raw {
		items = append(items, p.processRow(row, i+1))
	}
	return items
}

func (p *Processor) processRow(row map[string]any, position int) domain.ScheduleItem {
	var it domain.ScheduleItem

	if id, ok := row["id"].(string); ok && id != "" {
		it.ID = id
		it.IsTemporary, _ = row["is_temporary"].(bool)
	} else {
		it.ID = uuid.New().String()
		it.IsTemporary = true
	}

	it.RowNumber = position
	if n, ok := coerceInt(row["row_number"]); ok && n > 0 {
		it.RowNumber = n
	}

	it.Status = coerceStatus(row["status"])
	it.PaymentDate = p.coercePaymentDate(row)

	for _, f := range amountFields {
		f.assign(&it, p.resolveAmount(row, f.canonical, f.sources))
	}

	for k, v := range row {
		if consumedKeys[k] {
			continue
		}
		if it.Extra == nil {
			it.Extra = make(map[string]any)
		}
		it.Extra[k] = v
	}

	return it
}

// resolveAmount walks the ordered source list and coerces the first
// present value. Missing and non-numeric values collapse to zero; this
// is a deliberate lossy recovery so a bad cell never blocks the whole
// schedule.
func (p *Processor) resolveAmount(row map[string]any, canonical string, sources []string) decimal.Decimal {
	for _, key := range sources {
		v, present := row[key]
		if !present || v == nil {
			continue
		}
		d, ok := coerceDecimal(v)
		if !ok {
			p.logger.Debug("non-numeric financial field coerced to zero",
				zap.String("field", canonical),
				zap.String("source_key", key),
				zap.Any("value", v),
			)
			if p.OnAnomaly != nil {
				p.OnAnomaly(canonical)
			}
			continue
		}
		return d
	}
	return decimal.Zero
}

func (p *Processor) coercePaymentDate(row map[string]any) string {
	for _, key := range dateSources {
		v, present := row[key]
		if !present || v == nil {
			continue
		}
		switch d := v.(type) {
		case string:
			if d == "" {
				continue
			}
			if t, err := time.Parse("2006-01-02", d); err == nil {
				return t.Format("2006-01-02")
			}
			if t, err := time.Parse(time.RFC3339, d); err == nil {
				return t.Format("2006-01-02")
			}
			p.logger.Debug("unparseable payment date ignored", zap.String("value", d))
		case time.Time:
			return d.Format("2006-01-02")
		}
	}
	return ""
}

// Raw converts a canonical item back to its row form using the
// authoritative key names, extras included. Process(Raw(item)) is a
// fixed point.
func Raw(it domain.ScheduleItem) map[string]any {
	row := map[string]any{
		"id":             it.ID,
		"row_number":     it.RowNumber,
		"status":         string(it.Status),
		"draft_amount":   it.DraftAmount,
		"setup_fee":      it.SetupFee,
		"program_fee":    it.ProgramFee,
		"banking_fee":    it.BankingFee,
		"savings_amount": it.Savings,
	}
	if it.IsTemporary {
		row["is_temporary"] = true
	}
	if it.PaymentDate != "" {
		row["payment_date"] = it.PaymentDate
	}
	for k, v := range it.Extra {
		row[k] = v
	}
	return row
}

// --- coercion primitives ---

func coerceDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		if strings.TrimSpace(n) == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := n.Int64()
		return int(i), err == nil
	case string:
		d, err := decimal.NewFromString(n)
		if err != nil {
			return 0, false
		}
		return int(d.IntPart()), true
	}
	return 0, false
}

func coerceStatus(v any) domain.ItemStatus {
	s, _ := v.(string)
	if s == "" {
		return domain.StatusScheduled
	}
	for _, known := range []domain.ItemStatus{
		domain.StatusScheduled, domain.StatusCleared, domain.StatusNSF, domain.StatusCancelled,
	} {
		if strings.EqualFold(s, string(known)) {
			return known
		}
	}
	return domain.ItemStatus(s)
}
