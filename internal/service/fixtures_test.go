package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	"github.com/Gopher0727/TripMate/internal/repository/memstore"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

// tb is satisfied by both *testing.T and *rapid.T.
type tb interface {
	Helper()
	Errorf(format string, args ...any)
	FailNow()
}

type seqIDs struct{ n atomic.Int64 }

func (s *seqIDs) NextID() (int64, error) { return s.n.Add(1), nil }

type recordingPublisher struct {
	mu     sync.Mutex
	events []*model.CompanionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e *model.CompanionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []model.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type mapCache struct {
	mu          sync.Mutex
	items       map[int64]*dto.CompanionDTO
	generations map[int64]int64
	hits        int
}

func newMapCache() *mapCache {
	return &mapCache{
		items:       make(map[int64]*dto.CompanionDTO),
		generations: make(map[int64]int64),
	}
}

func (c *mapCache) Get(_ context.Context, id int64) (*dto.CompanionDTO, int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[id]
	if ok {
		c.hits++
	}
	return v, c.generations[id], ok
}

func (c *mapCache) Set(_ context.Context, v *dto.CompanionDTO, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[v.ID] != version {
		return
	}
	c.items[v.ID] = v
}

func (c *mapCache) Invalidate(_ context.Context, ids ...int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.items, id)
		c.generations[id]++
	}
}

func (c *mapCache) cached(id int64) (*dto.CompanionDTO, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[id]
	return v, ok
}

type fixture struct {
	store  repository.IStore
	svc    *Services
	events *recordingPublisher
	cache  *mapCache
	logs   *observer.ObservedLogs
}

func newFixture(t tb) *fixture {
	return newFixtureWithStore(t, memstore.New())
}

func newFixtureWithStore(t tb, store repository.IStore) *fixture {
	core, logs := observer.New(zap.DebugLevel)
	f := &fixture{
		store:  store,
		events: &recordingPublisher{},
		cache:  newMapCache(),
		logs:   logs,
	}
	f.svc = New(Dependencies{
		Store:     store,
		IDs:       &seqIDs{},
		Cache:     f.cache,
		Publisher: f.events,
		Logger:    logger.FromZap(zap.New(core)),
	})
	return f
}

func (f *fixture) trip(t tb, owner int64) *dto.TripDTO {
	t.Helper()
	trip, err := f.svc.Trips.Create(context.Background(), owner, &dto.CreateTripRequest{
		Title:       "Spring in Jeju",
		Destination: "Jeju Island",
		StartDate:   "2026-04-01",
		EndDate:     "2026-04-05",
		Themes:      []string{"nature", "FOOD"},
	})
	require.NoError(t, err)
	return trip
}

func (f *fixture) companion(t tb, owner int64, maxMembers int) *dto.CompanionDTO {
	t.Helper()
	trip := f.trip(t, owner)
	c, err := f.svc.Companions.Create(context.Background(), owner, &dto.CreateCompanionRequest{
		TripID:     trip.ID,
		Title:      "Hallasan sunrise hike",
		Content:    "Looking for early risers",
		MaxMembers: maxMembers,
	})
	require.NoError(t, err)
	return c
}

func (f *fixture) apply(t tb, companionID int64, users ...int64) {
	t.Helper()
	for _, u := range users {
		_, err := f.svc.Applications.Apply(context.Background(), companionID, u, "")
		require.NoError(t, err)
	}
}

func (f *fixture) load(t tb, companionID int64) *model.Companion {
	t.Helper()
	c, err := f.store.Companions().FindByID(context.Background(), companionID, repository.LockNone)
	require.NoError(t, err)
	return c
}
