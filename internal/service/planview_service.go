package service

import (
	"context"
	"errors"
	"time"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/infra/cache"
	"github.com/brightpath/planview-bfa-go/internal/infra/observability"
	"github.com/brightpath/planview-bfa-go/internal/infra/resilience"
	"github.com/brightpath/planview-bfa-go/internal/plan"
	"github.com/brightpath/planview-bfa-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

var viewTracer = otel.Tracer("service.planview")

// PlanViewService orchestrates the refresh cycle: fetch schedule and
// wire fees from the backend, run the engine pipeline, and cache the
// presentation view model per plan. Concurrent refreshes of the same
// plan are collapsed into one flight.
type PlanViewService struct {
	schedules port.ScheduleStore
	fees      port.FeeStore
	statuses  port.StatusOptionStore

	processor   *plan.Processor
	viewCache   *cache.InMemory[*domain.PlanViewModel]
	statusCache *cache.InMemory[[]domain.StatusOption]
	bulkhead    *resilience.Bulkhead
	metrics     *observability.Metrics
	logger      *zap.Logger

	group singleflight.Group
}

// NewPlanViewService wires the refresh pipeline.
func NewPlanViewService(
	schedules port.ScheduleStore,
	fees port.FeeStore,
	statuses port.StatusOptionStore,
	viewCache *cache.InMemory[*domain.PlanViewModel],
	statusCache *cache.InMemory[[]domain.StatusOption],
	bulkhead *resilience.Bulkhead,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PlanViewService {
	processor := plan.NewProcessor(logger)
	processor.OnAnomaly = metrics.IncrCoercionAnomaly

	return &PlanViewService{
		schedules:   schedules,
		fees:        fees,
		statuses:    statuses,
		processor:   processor,
		viewCache:   viewCache,
		statusCache: statusCache,
		bulkhead:    bulkhead,
		metrics:     metrics,
		logger:      logger,
	}
}

// GetPlanView returns the presentation view model for a plan.
// expanded, owned by the caller, marks which item rows render
// expanded; it never affects what is cached.
//
// Backend failures other than "plan not found" degrade to the empty
// view model so the UI can always render a deterministic no-data
// state.
func (s *PlanViewService) GetPlanView(ctx context.Context, planID string, expanded map[string]bool) (*domain.PlanViewModel, error) {
	ctx, span := viewTracer.Start(ctx, "PlanViewService.GetPlanView")
	defer span.End()

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("plan_view", time.Since(start)) }()

	if vm, ok := s.viewCache.Get(planID); ok {
		s.metrics.IncrCacheHit("viewmodel")
		return decorate(vm, expanded), nil
	}
	s.metrics.IncrCacheMiss("viewmodel")

	result, err, _ := s.group.Do(planID, func() (any, error) {
		return s.refresh(ctx, planID)
	})
	if err != nil {
		return nil, err
	}
	return decorate(result.(*domain.PlanViewModel), expanded), nil
}

// refresh fetches schedule and fees in parallel and rebuilds the view
// model. Only one refresh per plan runs at a time (singleflight), and
// total backend concurrency is bounded by the bulkhead.
func (s *PlanViewService) refresh(ctx context.Context, planID string) (*domain.PlanViewModel, error) {
	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.bulkhead.Release()

	var (
		sched    *domain.PlanSchedule
		feesByID map[string][]domain.FeeRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sched, err = s.schedules.FetchSchedule(gctx, planID)
		return err
	})
	g.Go(func() error {
		var err error
		feesByID, err = s.fees.FetchFeeRecords(gctx, planID)
		return err
	})

	if err := g.Wait(); err != nil {
		var notFound *domain.ErrNotFound
		if errors.As(err, &notFound) {
			return nil, err
		}

		s.logger.Error("plan refresh failed, serving empty state",
			zap.String("plan_id", planID),
			zap.Error(err),
		)
		s.metrics.IncrExternalError("plan-backend")
		s.metrics.IncrRefresh("degraded")
		return plan.EmptyViewModel(planID), nil
	}

	vm := s.processor.BuildViewModel(sched, feesByID, nil)

	s.metrics.IncrRefresh("success")
	s.metrics.AddRowsBuilt(len(vm.Rows))
	s.viewCache.Set(planID, vm)

	s.logger.Info("plan view refreshed",
		zap.String("plan_id", planID),
		zap.Int("items", vm.ItemCount),
		zap.Int("rows", len(vm.Rows)),
	)

	return vm, nil
}

// InvalidatePlan drops the cached view model so the next read rebuilds
// it. Called after a segment submission.
func (s *PlanViewService) InvalidatePlan(planID string) {
	s.viewCache.Delete(planID)
}

// StatusOptions returns the selectable draft statuses, falling back to
// the built-in set of four when the backend is unavailable.
func (s *PlanViewService) StatusOptions(ctx context.Context) []domain.StatusOption {
	ctx, span := viewTracer.Start(ctx, "PlanViewService.StatusOptions")
	defer span.End()

	if opts, ok := s.statusCache.Get("status_options"); ok {
		s.metrics.IncrCacheHit("status_options")
		return opts
	}
	s.metrics.IncrCacheMiss("status_options")

	opts, err := s.statuses.FetchStatusOptions(ctx)
	if err != nil || len(opts) == 0 {
		if err != nil {
			s.logger.Warn("status options fetch failed, using defaults", zap.Error(err))
			s.metrics.IncrExternalError("plan-backend")
		}
		return domain.DefaultStatusOptions
	}

	s.statusCache.Set("status_options", opts)
	return opts
}

// ProbeBackend checks plan backend reachability for health reporting.
func (s *PlanViewService) ProbeBackend(ctx context.Context) error {
	_, err := s.statuses.FetchStatusOptions(ctx)
	return err
}

// decorate applies the caller's expanded-row set to a cached view
// model without mutating it.
func decorate(vm *domain.PlanViewModel, expanded map[string]bool) *domain.PlanViewModel {
	if len(expanded) == 0 {
		return vm
	}
	out := *vm
	out.Rows = make([]domain.DisplayRow, len(vm.Rows))
	copy(out.Rows, vm.Rows)
	for i := range out.Rows {
		if !out.Rows[i].IsWireFee && out.Rows[i].Item != nil {
			out.Rows[i].IsExpanded = expanded[out.Rows[i].Item.ID]
		}
	}
	return &out
}
