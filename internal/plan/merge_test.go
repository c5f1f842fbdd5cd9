package plan_test

import (
	"testing"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/plan"

	"github.com/shopspring/decimal"
)

func TestMergeFees_InterleavesFeesUnderParent(t *testing.T) {
	items := []domain.ScheduleItem{
		{ID: "1", DraftAmount: decimal.RequireFromString("100"), Status: domain.StatusScheduled, CalculatedDraftNumber: "1"},
		{ID: "2", DraftAmount: decimal.RequireFromString("200"), Status: domain.StatusScheduled, CalculatedDraftNumber: "2"},
	}
	fees := map[string][]domain.FeeRecord{
		"1": {
			{ID: "f1", ParentScheduleItemID: "1", FeeType: "wire", Amount: decimal.RequireFromString("25")},
			{ID: "f2", ParentScheduleItemID: "1", FeeType: "wire", Amount: decimal.RequireFromString("30")},
		},
	}

	rows := plan.MergeFees(items, fees, nil)

	wantKeys := []string{"item-1", "fee-f1", "fee-f2", "item-2"}
	if len(rows) != len(wantKeys) {
		t.Fatalf("expected %d rows, got %d", len(wantKeys), len(rows))
	}
	for i, k := range wantKeys {
		if rows[i].Key != k {
			t.Errorf("row %d: expected key %s, got %s", i, k, rows[i].Key)
		}
	}
	if rows[0].IsWireFee || !rows[1].IsWireFee || !rows[2].IsWireFee || rows[3].IsWireFee {
		t.Error("expected parent/fee tagging item, fee, fee, item")
	}
}

func TestMergeFees_WireClassCoveredAndShortfall(t *testing.T) {
	parent := domain.ScheduleItem{ID: "1", DraftAmount: decimal.RequireFromString("100"), Status: domain.StatusScheduled}

	covered := plan.MergeFees([]domain.ScheduleItem{parent}, map[string][]domain.FeeRecord{
		"1": {
			{ID: "f1", Amount: decimal.RequireFromString("100")},
			{ID: "f2", Amount: decimal.RequireFromString("50")},
		},
	}, nil)
	if covered[1].StyleClass != domain.WireClassCovered {
		t.Errorf("fees totaling 150 against draft 100: expected %s, got %s", domain.WireClassCovered, covered[1].StyleClass)
	}
	if covered[2].StyleClass != domain.WireClassCovered {
		t.Errorf("expected every fee row of the item to share the class, got %s", covered[2].StyleClass)
	}

	short := plan.MergeFees([]domain.ScheduleItem{parent}, map[string][]domain.FeeRecord{
		"1": {{ID: "f1", Amount: decimal.RequireFromString("50")}},
	}, nil)
	if short[1].StyleClass != domain.WireClassShortfall {
		t.Errorf("fees totaling 50 against draft 100: expected %s, got %s", domain.WireClassShortfall, short[1].StyleClass)
	}

	exact := plan.MergeFees([]domain.ScheduleItem{parent}, map[string][]domain.FeeRecord{
		"1": {{ID: "f1", Amount: decimal.RequireFromString("100")}},
	}, nil)
	if exact[1].StyleClass != domain.WireClassCovered {
		t.Errorf("fee sum equal to draft counts as covered, got %s", exact[1].StyleClass)
	}
}

func TestMergeFees_KeysUniqueAcrossKinds(t *testing.T) {
	// A schedule item and a fee record sharing the id "7".
	items := []domain.ScheduleItem{{ID: "7", DraftAmount: decimal.RequireFromString("10"), Status: domain.StatusScheduled}}
	fees := map[string][]domain.FeeRecord{
		"7": {{ID: "7", Amount: decimal.RequireFromString("5")}},
	}

	rows := plan.MergeFees(items, fees, nil)

	seen := map[string]bool{}
	for _, r := range rows {
		if seen[r.Key] {
			t.Fatalf("duplicate row key %s", r.Key)
		}
		seen[r.Key] = true
	}
}

func TestMergeFees_FormattedAmounts(t *testing.T) {
	items := []domain.ScheduleItem{{ID: "1", DraftAmount: decimal.RequireFromString("1234.5"), Status: domain.StatusScheduled}}

	rows := plan.MergeFees(items, nil, nil)

	if rows[0].FormattedAmount != "$1234.50" {
		t.Errorf("expected $1234.50, got %s", rows[0].FormattedAmount)
	}
}

func TestMergeFees_ExpandedDecoration(t *testing.T) {
	items := []domain.ScheduleItem{
		{ID: "1", Status: domain.StatusScheduled},
		{ID: "2", Status: domain.StatusScheduled},
	}

	rows := plan.MergeFees(items, nil, map[string]bool{"2": true})

	if rows[0].IsExpanded {
		t.Error("expected item 1 collapsed")
	}
	if !rows[1].IsExpanded {
		t.Error("expected item 2 expanded")
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[domain.ItemStatus]string{
		domain.StatusScheduled: "",
		domain.StatusCleared:   "status-cleared",
		domain.StatusNSF:       "status-nsf",
		domain.StatusCancelled: "status-cancelled",
	}
	for status, want := range cases {
		if got := plan.StatusClass(status); got != want {
			t.Errorf("status %s: expected class %q, got %q", status, want, got)
		}
	}
}
