package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/infra/cache"
	"github.com/brightpath/planview-bfa-go/internal/infra/observability"
	"github.com/brightpath/planview-bfa-go/internal/plan"
	"github.com/brightpath/planview-bfa-go/internal/port"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var draftTracer = otel.Tracer("service.draft")

// draftSession is one server-held segment editing session. The
// serialized field always holds the payload of the latest change
// notification emitted by the segment list.
type draftSession struct {
	mu         sync.Mutex
	planID     string
	list       *plan.SegmentList
	serialized []domain.Segment
}

// DraftSnapshot is what every draft operation returns: the draft id,
// its plan, and the serialized segments after the mutation.
type DraftSnapshot struct {
	DraftID  string           `json:"draft_id"`
	PlanID   string           `json:"plan_id"`
	Segments []domain.Segment `json:"segments"`
}

// DraftService owns segment draft sessions: a draft is opened from a
// plan's saved segments, edited through the SegmentList rules, and
// finally submitted to the backend for schedule generation. Sessions
// expire on a TTL.
type DraftService struct {
	schedules port.ScheduleStore
	sessions  *cache.InMemory[*draftSession]
	ttl       time.Duration
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDraftService creates the draft session service. Sessions live in
// an internal TTL cache; ttl bounds how long an idle draft survives.
func NewDraftService(schedules port.ScheduleStore, ttl time.Duration, metrics *observability.Metrics, logger *zap.Logger) *DraftService {
	return &DraftService{
		schedules: schedules,
		sessions:  cache.New[*draftSession](ttl),
		ttl:       ttl,
		metrics:   metrics,
		logger:    logger,
	}
}

// SessionCount reports the live draft sessions, for health reporting.
func (s *DraftService) SessionCount() int {
	return s.sessions.Len()
}

// OpenDraft starts an editing session seeded from the plan's saved
// segments. A plan with no segments yet starts with one default
// segment, honoring the one-segment minimum.
func (s *DraftService) OpenDraft(ctx context.Context, planID string) (*DraftSnapshot, error) {
	ctx, span := draftTracer.Start(ctx, "DraftService.OpenDraft")
	defer span.End()

	sched, err := s.schedules.FetchSchedule(ctx, planID)
	if err != nil {
		return nil, err
	}

	sess := &draftSession{planID: planID}
	sess.list = plan.NewSegmentList(func(segs []domain.Segment) {
		sess.serialized = segs
	})
	sess.list.SetSegments(sched.Header.Segments)
	if sess.list.Len() == 0 {
		sess.list.AddSegment()
	}

	draftID := uuid.New().String()
	s.sessions.SetWithTTL(draftID, sess, s.ttl)

	s.logger.Info("segment draft opened",
		zap.String("plan_id", planID),
		zap.String("draft_id", draftID),
		zap.Int("segments", sess.list.Len()),
	)

	return &DraftSnapshot{DraftID: draftID, PlanID: planID, Segments: sess.serialized}, nil
}

// GetDraft returns the current serialized segments of a session.
func (s *DraftService) GetDraft(ctx context.Context, draftID string) (*DraftSnapshot, error) {
	_, span := draftTracer.Start(ctx, "DraftService.GetDraft")
	defer span.End()

	return s.withSession(draftID, func(sess *draftSession) error { return nil })
}

// AddSegment appends a default segment to the draft.
func (s *DraftService) AddSegment(ctx context.Context, draftID string) (*DraftSnapshot, error) {
	_, span := draftTracer.Start(ctx, "DraftService.AddSegment")
	defer span.End()

	return s.withSession(draftID, func(sess *draftSession) error {
		sess.list.AddSegment()
		return nil
	})
}

// UpdateField applies one constrained field mutation to a segment.
func (s *DraftService) UpdateField(ctx context.Context, draftID string, index int, field domain.SegmentField, value any) (*DraftSnapshot, error) {
	_, span := draftTracer.Start(ctx, "DraftService.UpdateField")
	defer span.End()

	return s.withSession(draftID, func(sess *draftSession) error {
		return sess.list.UpdateField(index, field, value)
	})
}

// DeleteSegment removes a segment, respecting the one-segment minimum.
func (s *DraftService) DeleteSegment(ctx context.Context, draftID string, index int) (*DraftSnapshot, error) {
	_, span := draftTracer.Start(ctx, "DraftService.DeleteSegment")
	defer span.End()

	return s.withSession(draftID, func(sess *draftSession) error {
		return sess.list.DeleteSegment(index)
	})
}

// MoveSegment moves a segment one position up or down.
func (s *DraftService) MoveSegment(ctx context.Context, draftID string, index int, direction string) (*DraftSnapshot, error) {
	_, span := draftTracer.Start(ctx, "DraftService.MoveSegment")
	defer span.End()

	return s.withSession(draftID, func(sess *draftSession) error {
		switch strings.ToLower(direction) {
		case "up":
			return sess.list.MoveUp(index)
		case "down":
			return sess.list.MoveDown(index)
		}
		return &domain.ErrValidation{Field: "direction", Message: "must be 'up' or 'down'"}
	})
}

// Submit validates the draft and posts it to the backend for schedule
// generation. Validation failures abort the submission; the session
// stays open so the caller can fix and retry.
func (s *DraftService) Submit(ctx context.Context, draftID string) (*DraftSnapshot, error) {
	ctx, span := draftTracer.Start(ctx, "DraftService.Submit")
	defer span.End()

	sess, ok := s.sessions.Get(draftID)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "draft", ID: draftID}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if errs := sess.list.Validate(); len(errs) > 0 {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return nil, &domain.ErrValidation{Field: "segments", Message: strings.Join(msgs, "; ")}
	}

	if err := s.schedules.SubmitSegments(ctx, sess.planID, sess.list.Serialize()); err != nil {
		s.metrics.IncrExternalError("plan-backend")
		return nil, err
	}

	s.sessions.Delete(draftID)
	s.logger.Info("segment draft submitted",
		zap.String("plan_id", sess.planID),
		zap.String("draft_id", draftID),
		zap.Int("segments", sess.list.Len()),
	)

	return &DraftSnapshot{DraftID: draftID, PlanID: sess.planID, Segments: sess.list.Serialize()}, nil
}

// withSession runs fn under the session lock, refreshes the TTL, and
// returns the post-mutation snapshot.
func (s *DraftService) withSession(draftID string, fn func(*draftSession) error) (*DraftSnapshot, error) {
	sess, ok := s.sessions.Get(draftID)
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "draft", ID: draftID}
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if err := fn(sess); err != nil {
		return nil, err
	}

	// Editing keeps the session alive.
	s.sessions.SetWithTTL(draftID, sess, s.ttl)

	return &DraftSnapshot{DraftID: draftID, PlanID: sess.planID, Segments: sess.serialized}, nil
}
