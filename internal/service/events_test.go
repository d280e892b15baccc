package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/TripMate/internal/model"
	logger "github.com/Gopher0727/TripMate/middleware/log"
)

// heldPool queues jobs by key until run is called. Keys in reject are refused.
type heldPool struct {
	mu     sync.Mutex
	keys   []int64
	jobs   []func()
	reject map[int64]bool
}

func (p *heldPool) Submit(key int64, job func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.reject[key] {
		return false
	}
	p.keys = append(p.keys, key)
	p.jobs = append(p.jobs, job)
	return true
}

func (p *heldPool) run() {
	p.mu.Lock()
	jobs := p.jobs
	p.jobs = nil
	p.mu.Unlock()
	for _, job := range jobs {
		job()
	}
}

func newTestDispatcher(pub EventPublisher, pool Submitter) *eventDispatcher {
	return &eventDispatcher{
		publisher: pub,
		pool:      pool,
		logger:    logger.NewNopLogger(),
		now:       func() time.Time { return time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func TestEventDispatcher_OneJobPerListing(t *testing.T) {
	pub := &recordingPublisher{}
	pool := &heldPool{}
	d := newTestDispatcher(pub, pool)

	d.dispatch(context.Background(),
		&model.CompanionEvent{Type: model.EventCompanionDeleted, CompanionID: 2},
		&model.CompanionEvent{Type: model.EventApplicationApproved, CompanionID: 1},
		&model.CompanionEvent{Type: model.EventCompanionClosed, CompanionID: 1},
	)
	assert.Equal(t, []int64{2, 1}, pool.keys)
	assert.Empty(t, pub.types(), "nothing is published before the pool runs")

	pool.run()
	assert.Equal(t, []model.EventType{
		model.EventCompanionDeleted, model.EventApplicationApproved, model.EventCompanionClosed,
	}, pub.types())
	for _, e := range pub.events {
		assert.False(t, e.OccurredAt.IsZero())
	}
}

func TestEventDispatcher_RejectedJobPublishesInline(t *testing.T) {
	pub := &recordingPublisher{}
	pool := &heldPool{reject: map[int64]bool{1: true}}
	d := newTestDispatcher(pub, pool)

	d.dispatch(context.Background(),
		&model.CompanionEvent{Type: model.EventApplicationApproved, CompanionID: 1},
		&model.CompanionEvent{Type: model.EventCompanionClosed, CompanionID: 1},
		&model.CompanionEvent{Type: model.EventCompanionDeleted, CompanionID: 2},
	)
	require.Equal(t, []int64{2}, pool.keys)
	assert.Equal(t, []model.EventType{model.EventApplicationApproved, model.EventCompanionClosed}, pub.types())

	pool.run()
	assert.Equal(t, []model.EventType{
		model.EventApplicationApproved, model.EventCompanionClosed, model.EventCompanionDeleted,
	}, pub.types())
}

func TestEventDispatcher_WithoutPool(t *testing.T) {
	pub := &recordingPublisher{}
	newTestDispatcher(pub, nil).dispatch(context.Background(),
		&model.CompanionEvent{Type: model.EventCompanionCreated, CompanionID: 5},
	)
	assert.Equal(t, []model.EventType{model.EventCompanionCreated}, pub.types())

	newTestDispatcher(nil, &heldPool{}).dispatch(context.Background(),
		&model.CompanionEvent{Type: model.EventCompanionCreated, CompanionID: 5},
	)
}
