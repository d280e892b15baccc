package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/internal/model"
	logger "github.com/Gopher0727/TripMate/middleware/log"
)

// EventPublisher delivers committed lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.CompanionEvent) error
}

// Submitter schedules background work without blocking. Jobs sharing a key run
// in submission order. *utils.WorkerPool satisfies it.
type Submitter interface {
	Submit(key int64, job func()) bool
}

// LogPublisher writes events to the log instead of a broker. It is used when
// Kafka is disabled or unreachable at startup.
type LogPublisher struct {
	logger *logger.Logger
}

func NewLogPublisher(log *logger.Logger) *LogPublisher {
	return &LogPublisher{logger: log}
}

func (p *LogPublisher) Publish(ctx context.Context, event *model.CompanionEvent) error {
	p.logger.InfoContext(ctx, "companion event",
		zap.String("type", string(event.Type)),
		zap.Int64("companion_id", event.CompanionID),
		zap.Int64("trip_id", event.TripID),
		zap.Int64("chat_room_id", event.ChatRoomID),
		zap.Int64("user_id", event.UserID),
	)
	return nil
}

type eventDispatcher struct {
	publisher EventPublisher
	pool      Submitter
	logger    *logger.Logger
	now       func() time.Time
}

// dispatch hands events to the publisher off the request path, one job per
// listing keyed by its id so a listing's events leave in commit order. A job the
// pool rejects is published inline. Failures are logged and never reach the
// caller; the state change has already committed.
func (d *eventDispatcher) dispatch(ctx context.Context, events ...*model.CompanionEvent) {
	if d.publisher == nil || len(events) == 0 {
		return
	}
	ctx = context.WithoutCancel(ctx)

	var order []int64
	groups := make(map[int64][]*model.CompanionEvent)
	for _, e := range events {
		if e.OccurredAt.IsZero() {
			e.OccurredAt = d.now()
		}
		if _, ok := groups[e.CompanionID]; !ok {
			order = append(order, e.CompanionID)
		}
		groups[e.CompanionID] = append(groups[e.CompanionID], e)
	}

	for _, companionID := range order {
		batch := groups[companionID]
		job := func() { d.publish(ctx, batch) }
		if d.pool == nil || !d.pool.Submit(companionID, job) {
			job()
		}
	}
}

func (d *eventDispatcher) publish(ctx context.Context, events []*model.CompanionEvent) {
	for _, e := range events {
		if err := d.publisher.Publish(ctx, e); err != nil {
			d.logger.ErrorContext(ctx, "failed to publish companion event",
				zap.String("type", string(e.Type)),
				zap.Int64("companion_id", e.CompanionID),
				zap.Error(err),
			)
		}
	}
}
