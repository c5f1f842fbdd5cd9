package handler

import (
	"net/http"

	"github.com/brightpath/planview-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// Plan view endpoints
// ============================================================

// planViewHandler serves GET /v1/plans/{planId}/view.
func planViewHandler(svc *service.PlanViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.planView")
		defer span.End()

		planID := chi.URLParam(r, "planId")
		if planID == "" {
			writeError(w, http.StatusBadRequest, "planId is required")
			return
		}
		span.SetAttributes(attribute.String("plan.id", planID))

		vm, err := svc.GetPlanView(ctx, planID, expandedSet(r))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, vm)
	}
}

// planRollupsHandler serves GET /v1/plans/{planId}/rollups — the
// aggregate table without the row detail.
func planRollupsHandler(svc *service.PlanViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.planRollups")
		defer span.End()

		planID := chi.URLParam(r, "planId")
		if planID == "" {
			writeError(w, http.StatusBadRequest, "planId is required")
			return
		}

		vm, err := svc.GetPlanView(ctx, planID, nil)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, vm.Rollups)
	}
}

// statusOptionsHandler serves GET /v1/status-options. Never fails: a
// backend error falls back to the built-in set.
func statusOptionsHandler(svc *service.PlanViewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.statusOptions")
		defer span.End()

		writeJSON(w, http.StatusOK, svc.StatusOptions(ctx))
	}
}
