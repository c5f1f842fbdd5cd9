package store

import (
	"context"
	"fmt"

	"github.com/brightpath/planview-bfa-go/internal/domain"
)

// ============================================================
// Wire fee store
// ============================================================

// FetchFeeRecords implements port.FeeStore. Records come back grouped
// by the schedule item they annotate; a plan with no wire fees yields
// an empty map.
func (c *Client) FetchFeeRecords(ctx context.Context, planID string) (map[string][]domain.FeeRecord, error) {
	ctx, span := tracer.Start(ctx, "Store.FetchFeeRecords")
	defer span.End()
	span.SetAttributes(spanPlanID(planID))

	var rows []domain.FeeRecord
	path := fmt.Sprintf("wire_fees?plan_id=eq.%s&order=created_at.asc", planID)
	if err := c.getJSON(ctx, path, &rows); err != nil {
		return nil, err
	}

	grouped := make(map[string][]domain.FeeRecord, len(rows))
	for _, r := range rows {
		grouped[r.ParentScheduleItemID] = append(grouped[r.ParentScheduleItemID], r)
	}
	return grouped, nil
}
