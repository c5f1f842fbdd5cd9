package plan

import (
	"github.com/brightpath/planview-bfa-go/internal/domain"
)

// BuildViewModel runs the full presentation pipeline over one plan's
// fetched data: normalize, sequence, merge fees, aggregate, then
// attach the summary scalars. Safe to re-run on every refresh.
func (p *Processor) BuildViewModel(sched *domain.PlanSchedule, fees map[string][]domain.FeeRecord, expanded map[string]bool) *domain.PlanViewModel {
	items := AssignSequence(p.Process(sched.RawItems))

	vm := &domain.PlanViewModel{
		PlanID:    sched.Header.ID,
		Header:    sched.Header,
		Rows:      MergeFees(items, fees, expanded),
		Rollups:   Aggregate(items, sched.Rollups),
		ItemCount: len(items),
	}

	// Items are date-ordered after sequencing; skip leading undated
	// rows when picking the first draft date.
	for _, it := range items {
		if it.PaymentDate != "" {
			vm.FirstDraft = it.PaymentDate
			break
		}
	}
	if len(items) > 0 {
		vm.LastDraft = items[len(items)-1].PaymentDate
	}

	return vm
}

// EmptyViewModel is the deterministic "no data" state rendered when
// the backend fetch fails: no rows, zero aggregates.
func EmptyViewModel(planID string) *domain.PlanViewModel {
	return &domain.PlanViewModel{
		PlanID:  planID,
		Header:  domain.PlanHeader{ID: planID},
		Rows:    []domain.DisplayRow{},
		Rollups: Aggregate(nil, nil),
		Empty:   true,
	}
}
