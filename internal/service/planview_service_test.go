package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/infra/cache"
	"github.com/brightpath/planview-bfa-go/internal/infra/observability"
	"github.com/brightpath/planview-bfa-go/internal/infra/resilience"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// --- mock ports ---

type mockScheduleStore struct {
	sched      *domain.PlanSchedule
	fetchErr   error
	fetchCalls int

	submitErr    error
	submittedFor string
	submitted    []domain.Segment
}

func (m *mockScheduleStore) FetchSchedule(ctx context.Context, planID string) (*domain.PlanSchedule, error) {
	m.fetchCalls++
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return m.sched, nil
}

func (m *mockScheduleStore) SubmitSegments(ctx context.Context, planID string, segments []domain.Segment) error {
	m.submittedFor = planID
	m.submitted = segments
	return m.submitErr
}

type mockFeeStore struct {
	fees map[string][]domain.FeeRecord
	err  error
}

func (m *mockFeeStore) FetchFeeRecords(ctx context.Context, planID string) (map[string][]domain.FeeRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.fees, nil
}

type mockStatusStore struct {
	opts  []domain.StatusOption
	err   error
	calls int
}

func (m *mockStatusStore) FetchStatusOptions(ctx context.Context) ([]domain.StatusOption, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.opts, nil
}

func newTestViewService(ss *mockScheduleStore, fs *mockFeeStore, sts *mockStatusStore) *PlanViewService {
	return NewPlanViewService(
		ss, fs, sts,
		cache.New[*domain.PlanViewModel](time.Minute),
		cache.New[[]domain.StatusOption](time.Minute),
		resilience.NewBulkhead(4),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func testSchedule(planID string) *domain.PlanSchedule {
	return &domain.PlanSchedule{
		Header: domain.PlanHeader{ID: planID, ClientName: "Test Client"},
		RawItems: []map[string]any{
			{"id": "1", "payment_date": "2025-01-15", "draft_amount": 250.0, "status": "Cleared"},
			{"id": "2", "payment_date": "2025-02-15", "draft_amount": 250.0},
		},
	}
}

// --- tests ---

func TestGetPlanView_BuildsAndCaches(t *testing.T) {
	ss := &mockScheduleStore{sched: testSchedule("plan-1")}
	svc := newTestViewService(ss, &mockFeeStore{}, &mockStatusStore{})

	vm, err := svc.GetPlanView(context.Background(), "plan-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if vm.ItemCount != 2 {
		t.Errorf("expected 2 items, got %d", vm.ItemCount)
	}
	if vm.Empty {
		t.Error("view must not be empty on a successful refresh")
	}

	// Second read must serve the cached model without refetching.
	if _, err := svc.GetPlanView(context.Background(), "plan-1", nil); err != nil {
		t.Fatalf("unexpected error on cached read: %v", err)
	}
	if ss.fetchCalls != 1 {
		t.Errorf("expected 1 backend fetch, got %d", ss.fetchCalls)
	}
}

func TestGetPlanView_DegradesToEmptyOnBackendError(t *testing.T) {
	ss := &mockScheduleStore{fetchErr: &domain.ErrExternalService{Service: "plan-backend", Err: errors.New("boom")}}
	svc := newTestViewService(ss, &mockFeeStore{}, &mockStatusStore{})

	vm, err := svc.GetPlanView(context.Background(), "plan-1", nil)
	if err != nil {
		t.Fatalf("backend failure must degrade, not error: %v", err)
	}
	if !vm.Empty {
		t.Error("expected the empty no-data state")
	}
	if len(vm.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(vm.Rows))
	}
}

func TestGetPlanView_NotFoundPropagates(t *testing.T) {
	ss := &mockScheduleStore{fetchErr: &domain.ErrNotFound{Resource: "plan", ID: "missing"}}
	svc := newTestViewService(ss, &mockFeeStore{}, &mockStatusStore{})

	_, err := svc.GetPlanView(context.Background(), "missing", nil)
	var notFound *domain.ErrNotFound
	if !errors.As(err, &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPlanView_ExpandedRowsNotCached(t *testing.T) {
	ss := &mockScheduleStore{sched: testSchedule("plan-1")}
	svc := newTestViewService(ss, &mockFeeStore{}, &mockStatusStore{})

	vm, err := svc.GetPlanView(context.Background(), "plan-1", map[string]bool{"1": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vm.Rows[0].IsExpanded {
		t.Error("expected row for item 1 expanded")
	}

	// A follow-up read without the expanded set must not see the flag.
	vm2, err := svc.GetPlanView(context.Background(), "plan-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, row := range vm2.Rows {
		if row.IsExpanded {
			t.Errorf("expanded state leaked into cached row %s", row.Key)
		}
	}
}

func TestGetPlanView_SuppliedRollupsWin(t *testing.T) {
	total := decimal.NewFromInt(9999)
	sched := testSchedule("plan-1")
	sched.Rollups = &domain.PlanRollups{TotalDraftAmount: &total}

	svc := newTestViewService(&mockScheduleStore{sched: sched}, &mockFeeStore{}, &mockStatusStore{})

	vm, err := svc.GetPlanView(context.Background(), "plan-1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !vm.Rollups.All.DraftAmount.Equal(total) {
		t.Errorf("expected supplied total 9999, got %s", vm.Rollups.All.DraftAmount)
	}
}

func TestInvalidatePlan_ForcesRefetch(t *testing.T) {
	ss := &mockScheduleStore{sched: testSchedule("plan-1")}
	svc := newTestViewService(ss, &mockFeeStore{}, &mockStatusStore{})

	if _, err := svc.GetPlanView(context.Background(), "plan-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	svc.InvalidatePlan("plan-1")
	if _, err := svc.GetPlanView(context.Background(), "plan-1", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ss.fetchCalls != 2 {
		t.Errorf("expected refetch after invalidation, got %d fetches", ss.fetchCalls)
	}
}

func TestStatusOptions_FetchesAndCaches(t *testing.T) {
	sts := &mockStatusStore{opts: []domain.StatusOption{
		{Value: "Scheduled", Label: "Scheduled"},
		{Value: "Cleared", Label: "Cleared"},
	}}
	svc := newTestViewService(&mockScheduleStore{}, &mockFeeStore{}, sts)

	opts := svc.StatusOptions(context.Background())
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}

	svc.StatusOptions(context.Background())
	if sts.calls != 1 {
		t.Errorf("expected 1 backend fetch, got %d", sts.calls)
	}
}

func TestStatusOptions_FallsBackToDefaults(t *testing.T) {
	sts := &mockStatusStore{err: errors.New("backend down")}
	svc := newTestViewService(&mockScheduleStore{}, &mockFeeStore{}, sts)

	opts := svc.StatusOptions(context.Background())
	if len(opts) != len(domain.DefaultStatusOptions) {
		t.Fatalf("expected the built-in defaults, got %d options", len(opts))
	}
	if opts[0].Value != string(domain.StatusScheduled) {
		t.Errorf("expected Scheduled first, got %s", opts[0].Value)
	}
}

func TestProbeBackend(t *testing.T) {
	sts := &mockStatusStore{err: errors.New("unreachable")}
	svc := newTestViewService(&mockScheduleStore{}, &mockFeeStore{}, sts)

	if err := svc.ProbeBackend(context.Background()); err == nil {
		t.Error("expected probe to surface the backend error")
	}

	sts.err = nil
	if err := svc.ProbeBackend(context.Background()); err != nil {
		t.Errorf("expected healthy probe, got %v", err)
	}
}
