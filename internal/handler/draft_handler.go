package handler

import (
	"encoding/json"
	"net/http"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Segment draft endpoints
// ============================================================

// openDraftHandler serves POST /v1/plans/{planId}/segments/draft.
func openDraftHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.openDraft")
		defer span.End()

		planID := chi.URLParam(r, "planId")
		if planID == "" {
			writeError(w, http.StatusBadRequest, "planId is required")
			return
		}

		snap, err := svc.OpenDraft(ctx, planID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusCreated, snap)
	}
}

// getDraftHandler serves GET /v1/segments/draft/{draftId}.
func getDraftHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.getDraft")
		defer span.End()

		snap, err := svc.GetDraft(ctx, chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// addSegmentHandler serves POST /v1/segments/draft/{draftId}/segments.
func addSegmentHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.addSegment")
		defer span.End()

		snap, err := svc.AddSegment(ctx, chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// updateFieldRequest is the body for PATCH .../segments/{index}.
type updateFieldRequest struct {
	Field string `json:"field"`
	Value any    `json:"value"`
}

// updateSegmentHandler serves PATCH /v1/segments/draft/{draftId}/segments/{index}.
func updateSegmentHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.updateSegment")
		defer span.End()

		idx, err := segmentIndex(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req updateFieldRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if req.Field == "" {
			writeError(w, http.StatusBadRequest, "field is required")
			return
		}

		snap, err := svc.UpdateField(ctx, chi.URLParam(r, "draftId"), idx, domain.SegmentField(req.Field), req.Value)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// deleteSegmentHandler serves DELETE /v1/segments/draft/{draftId}/segments/{index}.
// Deleting the last segment returns 409.
func deleteSegmentHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.deleteSegment")
		defer span.End()

		idx, err := segmentIndex(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		snap, err := svc.DeleteSegment(ctx, chi.URLParam(r, "draftId"), idx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// moveSegmentRequest is the body for POST .../segments/{index}/move.
type moveSegmentRequest struct {
	Direction string `json:"direction"` // up, down
}

// moveSegmentHandler serves POST /v1/segments/draft/{draftId}/segments/{index}/move.
func moveSegmentHandler(svc *service.DraftService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.moveSegment")
		defer span.End()

		idx, err := segmentIndex(r)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		var req moveSegmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		snap, err := svc.MoveSegment(ctx, chi.URLParam(r, "draftId"), idx, req.Direction)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

// submitDraftHandler serves POST /v1/segments/draft/{draftId}/submit.
// On success the plan's cached view model is invalidated so the next
// read picks up the regenerated schedule.
func submitDraftHandler(svc *service.DraftService, views *service.PlanViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "handler.submitDraft")
		defer span.End()

		snap, err := svc.Submit(ctx, chi.URLParam(r, "draftId"))
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		views.InvalidatePlan(snap.PlanID)
		writeJSON(w, http.StatusOK, snap)
	}
}
