package service

import (
	"context"
	"time"

	"github.com/Gopher0727/TripMate/internal/repository"
	logger "github.com/Gopher0727/TripMate/middleware/log"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

// IDGenerator issues unique row ids. *snowflake.Generator satisfies it.
type IDGenerator interface {
	NextID() (int64, error)
}

// CompanionCache holds listing detail projections. Implementations swallow
// backend failures: a miss is always a safe answer.
type CompanionCache interface {
	// Get returns the cached projection, if any, and the listing's invalidation
	// version. Read it before loading the row that will be passed to Set.
	Get(ctx context.Context, id int64) (*dto.CompanionDTO, int64, bool)
	// Set stores companion unless the listing was invalidated after version was read.
	Set(ctx context.Context, companion *dto.CompanionDTO, version int64)
	Invalidate(ctx context.Context, ids ...int64)
}

// Dependencies are shared by every service. Store and IDs are required;
// the rest fall back to no-op implementations.
type Dependencies struct {
	Store     repository.IStore
	IDs       IDGenerator
	Cache     CompanionCache
	Publisher EventPublisher
	Pool      Submitter
	Logger    *logger.Logger
}

func (d Dependencies) withDefaults() Dependencies {
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	if d.Logger == nil {
		d.Logger = logger.NewNopLogger()
	}
	return d
}

func (d Dependencies) dispatcher() *eventDispatcher {
	return &eventDispatcher{
		publisher: d.Publisher,
		pool:      d.Pool,
		logger:    d.Logger,
		now:       time.Now,
	}
}

type nopCache struct{}

func (nopCache) Get(context.Context, int64) (*dto.CompanionDTO, int64, bool) { return nil, 0, false }
func (nopCache) Set(context.Context, *dto.CompanionDTO, int64)               {}
func (nopCache) Invalidate(context.Context, ...int64)                        {}

// Services bundles the application services built from one set of dependencies.
type Services struct {
	Trips        ITripService
	Companions   ICompanionService
	Applications IApplicationService
	Chat         IChatService
}

func New(deps Dependencies) *Services {
	deps = deps.withDefaults()
	chat := NewChatService(deps)
	return &Services{
		Trips:        NewTripService(deps),
		Companions:   NewCompanionService(deps, chat),
		Applications: NewApplicationService(deps, NewCapacityGuard(deps.Logger)),
		Chat:         chat,
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = 10
	case size > 100:
		size = 100
	}
	return page, size
}
