package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/Gopher0727/TripMate/internal/model"
	logger "github.com/Gopher0727/TripMate/middleware/log"
)

// EventPublisher writes companion lifecycle events to one topic keyed by companion
// id, so a listing's events share a partition. They stay in commit order while
// the worker pool accepts them; an event published inline after the listing's
// worker queue overflowed may overtake ones still queued.
type EventPublisher struct {
	producer *Producer
	topic    string
	logger   *logger.Logger
}

func NewEventPublisher(producer *Producer, topic string, log *logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &EventPublisher{producer: producer, topic: topic, logger: log}
}

func (p *EventPublisher) Publish(ctx context.Context, event *model.CompanionEvent) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	key := []byte(strconv.FormatInt(event.CompanionID, 10))

	partition, offset, err := p.producer.Produce(ctx, p.topic, key, value)
	if err != nil {
		return err
	}
	p.logger.DebugContext(ctx, "companion event published",
		zap.String("type", string(event.Type)),
		zap.Int64("companion_id", event.CompanionID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (p *EventPublisher) Close() error {
	return p.producer.Close()
}
