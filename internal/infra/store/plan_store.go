package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/brightpath/planview-bfa-go/internal/domain"
)

// ============================================================
// Plan schedule store — header + rollups + raw schedule rows
// ============================================================

// planHeaderRow maps the plan_headers table. Rollup columns live on
// the same row; missing columns decode as nil and the aggregator falls
// back to live sums.
type planHeaderRow struct {
	ID         string           `json:"id"`
	ClientName string           `json:"client_name"`
	PlanStatus string           `json:"plan_status"`
	Segments   []domain.Segment `json:"segments"`
	CreatedAt  string           `json:"created_at"`

	domain.PlanRollups
}

// FetchSchedule implements port.ScheduleStore. Schedule rows are kept
// as raw maps on purpose: the normalizer owns alias resolution and
// coercion, and decoding into a typed struct here would silently drop
// the provisional estimated_* columns.
func (c *Client) FetchSchedule(ctx context.Context, planID string) (*domain.PlanSchedule, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchSchedule")
	defer span.End()
	span.SetAttributes(spanPlanID(planID))

	var headers []planHeaderRow
	path := fmt.Sprintf("plan_headers?id=eq.%s&limit=1", planID)
	if err := c.getJSON(ctx, path, &headers); err != nil {
		return nil, err
	}
	if len(headers) == 0 {
		return nil, &domain.ErrNotFound{Resource: "plan", ID: planID}
	}
	h := headers[0]

	var rawItems []map[string]any
	path = fmt.Sprintf("schedule_items?plan_id=eq.%s&order=payment_date.asc", planID)
	if err := c.getJSON(ctx, path, &rawItems); err != nil {
		return nil, err
	}

	rollups := h.PlanRollups
	return &domain.PlanSchedule{
		Header: domain.PlanHeader{
			ID:         h.ID,
			ClientName: h.ClientName,
			PlanStatus: h.PlanStatus,
			Segments:   h.Segments,
			CreatedAt:  h.CreatedAt,
		},
		RawItems: rawItems,
		Rollups:  &rollups,
	}, nil
}

// SubmitSegments posts a serialized segment list to the backend's
// schedule generation endpoint. The generated schedule comes back on
// the next FetchSchedule.
func (c *Client) SubmitSegments(ctx context.Context, planID string, segments []domain.Segment) error {
	ctx, span := tracer.Start(ctx, "Store.SubmitSegments")
	defer span.End()
	span.SetAttributes(spanPlanID(planID))

	rows := make([]map[string]any, 0, len(segments))
	for _, s := range segments {
		row := map[string]any{
			"plan_id":   planID,
			"order":     s.Order,
			"type":      s.Type,
			"frequency": s.Frequency,
		}
		if s.Amount != nil {
			row["amount"] = *s.Amount
		}
		if s.Count != nil {
			row["count"] = *s.Count
		}
		if s.StartDate != nil {
			row["start_date"] = *s.StartDate
		}
		if s.EndDate != nil {
			row["end_date"] = *s.EndDate
		}
		rows = append(rows, row)
	}

	payload, err := json.Marshal(map[string]any{"plan_id": planID, "segments": rows})
	if err != nil {
		return err
	}

	if _, err := c.doPost(ctx, "rpc/generate_schedule", payload); err != nil {
		return &domain.ErrExternalService{Service: "plan-backend", Err: err}
	}

	c.logger.Info("segments submitted for generation")
	return nil
}
