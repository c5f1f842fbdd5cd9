// Package port defines the narrow interfaces between the schedule
// engine and its external collaborators. The backend store is the only
// real implementation; tests supply mocks.
package port

import (
	"context"

	"github.com/brightpath/planview-bfa-go/internal/domain"
)

// ScheduleStore fetches plan schedules and accepts segment
// submissions for schedule generation.
type ScheduleStore interface {
	FetchSchedule(ctx context.Context, planID string) (*domain.PlanSchedule, error)
	SubmitSegments(ctx context.Context, planID string, segments []domain.Segment) error
}

// FeeStore fetches the wire fee records of a plan, grouped by the
// schedule item they annotate. An empty map is a valid result.
type FeeStore interface {
	FetchFeeRecords(ctx context.Context, planID string) (map[string][]domain.FeeRecord, error)
}

// StatusOptionStore fetches the selectable draft statuses.
type StatusOptionStore interface {
	FetchStatusOptions(ctx context.Context) ([]domain.StatusOption, error)
}
