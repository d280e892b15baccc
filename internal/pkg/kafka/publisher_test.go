package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/TripMate/config"
	"github.com/Gopher0727/TripMate/internal/model"
)

const testTopic = "tripmate.companion.events"

func testConfig() *config.KafkaConfig {
	return &config.KafkaConfig{
		Enabled: true,
		Brokers: []string{"127.0.0.1:9092"},
		Topic:   testTopic,
		Producer: config.ProducerConfig{
			MaxRetries:     3,
			RetryBackoffMs: 100,
		},
	}
}

func newMockPublisher(t *testing.T) (*EventPublisher, *mocks.SyncProducer) {
	cfg := testConfig()
	mock := mocks.NewSyncProducer(t, NewSaramaConfig(cfg))
	return NewEventPublisher(NewProducerWith(mock, cfg), cfg.Topic, nil), mock
}

func TestNewSaramaConfig(t *testing.T) {
	sc := NewSaramaConfig(testConfig())
	require.NoError(t, sc.Validate())
	assert.Equal(t, sarama.WaitForAll, sc.Producer.RequiredAcks)
	assert.True(t, sc.Producer.Idempotent)
	assert.Equal(t, 1, sc.Net.MaxOpenRequests)
	assert.Equal(t, 3, sc.Producer.Retry.Max)
	assert.Equal(t, 100*time.Millisecond, sc.Producer.Retry.Backoff)
}

func TestEventPublisher_Publish(t *testing.T) {
	publisher, mock := newMockPublisher(t)
	defer func() { assert.NoError(t, publisher.Close()) }()

	event := &model.CompanionEvent{
		Type:        model.EventApplicationApproved,
		CompanionID: 42,
		UserID:      7,
		OccurredAt:  time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	mock.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != testTopic {
			return fmt.Errorf("unexpected topic %q", msg.Topic)
		}
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "42" {
			return fmt.Errorf("unexpected key %q", key)
		}
		value, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		var got model.CompanionEvent
		if err := json.Unmarshal(value, &got); err != nil {
			return err
		}
		if got.Type != event.Type || got.CompanionID != 42 || got.UserID != 7 || !got.OccurredAt.Equal(event.OccurredAt) {
			return fmt.Errorf("unexpected payload %+v", got)
		}
		return nil
	})

	assert.NoError(t, publisher.Publish(context.Background(), event))
}

func TestEventPublisher_BrokerFailure(t *testing.T) {
	publisher, mock := newMockPublisher(t)
	defer publisher.Close()

	mock.ExpectSendMessageAndFail(sarama.ErrNotEnoughReplicas)
	err := publisher.Publish(context.Background(), &model.CompanionEvent{Type: model.EventCompanionClosed, CompanionID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, sarama.ErrNotEnoughReplicas))
	assert.Contains(t, err.Error(), testTopic)
}

func TestProducer_CancelledContext(t *testing.T) {
	cfg := testConfig()
	mock := mocks.NewSyncProducer(t, NewSaramaConfig(cfg))
	producer := NewProducerWith(mock, cfg)
	defer producer.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := producer.Produce(ctx, testTopic, nil, []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewProducer_NoBroker(t *testing.T) {
	cfg := testConfig()
	cfg.Brokers = []string{"127.0.0.1:1"}
	cfg.Producer.MaxRetries = 1
	_, err := NewProducer(cfg)
	assert.Error(t, err)
}
