package plan_test

import (
	"testing"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/plan"
)

func TestBuildViewModel(t *testing.T) {
	p := plan.NewProcessor(nil)

	sched := &domain.PlanSchedule{
		Header: domain.PlanHeader{ID: "plan-1", ClientName: "Acme Debt Relief"},
		RawItems: []map[string]any{
			{"id": "b", "payment_date": "2025-02-01", "draft_amount": 100.0, "status": "NSF"},
			{"id": "a", "payment_date": "2025-01-01", "draft_amount": 100.0, "status": "Cleared"},
			{"id": "c", "payment_date": "2025-03-01", "draft_amount": 100.0},
		},
	}
	fees := map[string][]domain.FeeRecord{
		"a": {{ID: "f1", ParentScheduleItemID: "a", FeeType: "wire"}},
	}

	vm := p.BuildViewModel(sched, fees, nil)

	if vm.PlanID != "plan-1" {
		t.Errorf("expected plan id carried through, got %s", vm.PlanID)
	}
	if vm.ItemCount != 3 {
		t.Errorf("expected 3 items, got %d", vm.ItemCount)
	}
	// 3 item rows + 1 fee row
	if len(vm.Rows) != 4 {
		t.Fatalf("expected 4 display rows, got %d", len(vm.Rows))
	}
	if vm.FirstDraft != "2025-01-01" {
		t.Errorf("expected first draft 2025-01-01, got %s", vm.FirstDraft)
	}
	if vm.LastDraft != "2025-03-01" {
		t.Errorf("expected last draft 2025-03-01, got %s", vm.LastDraft)
	}
	if vm.Rollups.NSF.Count != 1 {
		t.Errorf("expected 1 NSF item in rollups, got %d", vm.Rollups.NSF.Count)
	}
	if vm.Empty {
		t.Error("populated view model must not be flagged empty")
	}

	// The fee row sits directly under its parent (first item by date).
	if vm.Rows[0].Key != "item-a" || vm.Rows[1].Key != "fee-f1" {
		t.Errorf("expected fee attached under item-a, got rows %s, %s", vm.Rows[0].Key, vm.Rows[1].Key)
	}
}

func TestBuildViewModel_FirstDraftSkipsUndatedItems(t *testing.T) {
	p := plan.NewProcessor(nil)

	vm := p.BuildViewModel(&domain.PlanSchedule{
		Header: domain.PlanHeader{ID: "plan-1"},
		RawItems: []map[string]any{
			{"id": "undated"},
			{"id": "dated", "payment_date": "2025-05-01"},
		},
	}, nil, nil)

	if vm.FirstDraft != "2025-05-01" {
		t.Errorf("expected first draft to skip undated rows, got %q", vm.FirstDraft)
	}
}

func TestEmptyViewModel(t *testing.T) {
	vm := plan.EmptyViewModel("plan-9")

	if !vm.Empty {
		t.Error("expected empty flag set")
	}
	if vm.PlanID != "plan-9" {
		t.Errorf("expected plan id plan-9, got %s", vm.PlanID)
	}
	if len(vm.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(vm.Rows))
	}
	if !vm.Rollups.All.DraftAmount.IsZero() {
		t.Errorf("expected zero aggregates, got %s", vm.Rollups.All.DraftAmount)
	}
}
