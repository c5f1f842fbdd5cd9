package plan

import (
	"github.com/brightpath/planview-bfa-go/internal/domain"

	"github.com/shopspring/decimal"
)

// Aggregate computes the category-partitioned rollup table: All,
// Cleared-only and NSF-only sums across the five fee dimensions plus a
// row count per category.
//
// Precedence: a non-nil backend rollup value is authoritative and used
// verbatim, even when it disagrees with the line items; everything
// else is summed live from the filtered item set. The savings
// dimension is the documented exception — the backend only maintains a
// running savings balance, which is a different quantity, so savings
// is always summed live.
func Aggregate(items []domain.ScheduleItem, rollups *domain.PlanRollups) domain.RollupTable {
	if rollups == nil {
		rollups = &domain.PlanRollups{}
	}

	all := func(domain.ScheduleItem) bool { return true }
	cleared := statusIs(domain.StatusCleared)
	nsf := statusIs(domain.StatusNSF)

	return domain.RollupTable{
		All: domain.RollupRow{
			Count:       preferCount(rollups.TotalCount, items, all),
			DraftAmount: prefer(rollups.TotalDraftAmount, items, all, draftAmount),
			SetupFee:    prefer(rollups.TotalSetupFee, items, all, setupFee),
			ProgramFee:  prefer(rollups.TotalProgramFee, items, all, programFee),
			BankingFee:  prefer(rollups.TotalBankingFee, items, all, bankingFee),
			Savings:     sumOver(items, all, savings),
		},
		Cleared: domain.RollupRow{
			Count:       preferCount(rollups.ClearedCount, items, cleared),
			DraftAmount: prefer(rollups.ClearedDraftAmount, items, cleared, draftAmount),
			SetupFee:    prefer(rollups.ClearedSetupFee, items, cleared, setupFee),
			ProgramFee:  prefer(rollups.ClearedProgramFee, items, cleared, programFee),
			BankingFee:  prefer(rollups.ClearedBankingFee, items, cleared, bankingFee),
			Savings:     sumOver(items, cleared, savings),
		},
		NSF: domain.RollupRow{
			Count:       preferCount(rollups.NSFCount, items, nsf),
			DraftAmount: prefer(rollups.NSFDraftAmount, items, nsf, draftAmount),
			SetupFee:    prefer(rollups.NSFSetupFee, items, nsf, setupFee),
			ProgramFee:  prefer(rollups.NSFProgramFee, items, nsf, programFee),
			BankingFee:  prefer(rollups.NSFBankingFee, items, nsf, bankingFee),
			Savings:     sumOver(items, nsf, savings),
		},
	}
}

// prefer is the single rollup-or-live combinator: the supplied value
// wins when present, otherwise the dimension is summed over the items
// matching the category predicate.
func prefer(supplied *decimal.Decimal, items []domain.ScheduleItem, match func(domain.ScheduleItem) bool, dim func(domain.ScheduleItem) decimal.Decimal) decimal.Decimal {
	if supplied != nil {
		return *supplied
	}
	return sumOver(items, match, dim)
}

func preferCount(supplied *int, items []domain.ScheduleItem, match func(domain.ScheduleItem) bool) int {
	if supplied != nil {
		return *supplied
	}
	n := 0
	for _, it := range items {
		if match(it) {
			n++
		}
	}
	return n
}

func sumOver(items []domain.ScheduleItem, match func(domain.ScheduleItem) bool, dim func(domain.ScheduleItem) decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		if match(it) {
			sum = sum.Add(dim(it))
		}
	}
	return sum
}

func statusIs(s domain.ItemStatus) func(domain.ScheduleItem) bool {
	return func(it domain.ScheduleItem) bool { return it.Status == s }
}

func draftAmount(it domain.ScheduleItem) decimal.Decimal { return it.DraftAmount }
func setupFee(it domain.ScheduleItem) decimal.Decimal    { return it.SetupFee }
func programFee(it domain.ScheduleItem) decimal.Decimal  { return it.ProgramFee }
func bankingFee(it domain.ScheduleItem) decimal.Decimal  { return it.BankingFee }
func savings(it domain.ScheduleItem) decimal.Decimal     { return it.Savings }
