package plan

import (
	"fmt"

	"github.com/brightpath/planview-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// statusClasses are the display classifiers per draft status.
var statusClasses = map[domain.ItemStatus]string{
	domain.StatusCleared:   "status-cleared",
	domain.StatusNSF:       "status-nsf",
	domain.StatusCancelled: "status-cancelled",
}

// StatusClass returns the display classifier for a draft status, or ""
// for statuses without special styling.
func StatusClass(s domain.ItemStatus) string {
	return statusClasses[s]
}

// FormatAmount renders a money value for display.
func FormatAmount(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// MergeFees flattens the sequenced items and their wire fee records
// into a single display sequence: each item row immediately followed
// by its fees in their existing order. Fee rows carry a style class
// chosen by comparing the item's total fee amount against its draft
// amount (covered when the sum reaches the draft, shortfall
// otherwise).
//
// Row keys are prefixed by kind, so an item and a fee sharing a
// numeric id can never collide. expanded, if non-nil, marks item rows
// whose ids it contains; it is owned by the caller and only read here.
func MergeFees(items []domain.ScheduleItem, fees map[string][]domain.FeeRecord, expanded map[string]bool) []domain.DisplayRow {
	rows := make([]domain.DisplayRow, 0, len(items))

	for i := range items {
		it := items[i]
		rows = append(rows, domain.DisplayRow{
			Key:             fmt.Sprintf("item-%s", it.ID),
			IsWireFee:       false,
			Item:            &it,
			DraftNumber:     it.CalculatedDraftNumber,
			FormattedAmount: FormatAmount(it.DraftAmount),
			StyleClass:      StatusClass(it.Status),
			IsExpanded:      expanded[it.ID],
		})

		attached := fees[it.ID]
		if len(attached) == 0 {
			continue
		}

		feeTotal := decimal.Zero
		for _, f := range attached {
			feeTotal = feeTotal.Add(f.Amount)
		}
		wireClass := domain.WireClassShortfall
		if feeTotal.GreaterThanOrEqual(it.DraftAmount) {
			wireClass = domain.WireClassCovered
		}

		for j := range attached {
			f := attached[j]
			rows = append(rows, domain.DisplayRow{
				Key:             fmt.Sprintf("fee-%s", f.ID),
				IsWireFee:       true,
				Fee:             &f,
				FormattedAmount: FormatAmount(f.Amount),
				StyleClass:      wireClass,
			})
		}
	}

	return rows
}
