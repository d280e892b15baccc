// Package memstore keeps the companion domain in process memory.
// It backs local runs with storage.driver = "memory" and the service tests.
package memstore

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
)

type state struct {
	trips        map[int64]*model.Trip
	schedules    map[int64]*model.TripSchedule
	companions   map[int64]*model.Companion
	applications map[int64]*model.CompanionApplication
	rooms        map[int64]*model.ChatRoom
}

func newState() *state {
	return &state{
		trips:        make(map[int64]*model.Trip),
		schedules:    make(map[int64]*model.TripSchedule),
		companions:   make(map[int64]*model.Companion),
		applications: make(map[int64]*model.CompanionApplication),
		rooms:        make(map[int64]*model.ChatRoom),
	}
}

// clone copies the maps. Stored records are never mutated in place, so sharing them is safe.
func (s *state) clone() *state {
	return &state{
		trips:        maps.Clone(s.trips),
		schedules:    maps.Clone(s.schedules),
		companions:   maps.Clone(s.companions),
		applications: maps.Clone(s.applications),
		rooms:        maps.Clone(s.rooms),
	}
}

// Store serializes every transaction behind one lock. A transaction works on a
// copy of the state that replaces the live one only when fn succeeds.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

func (s *Store) root() *view {
	return &view{store: s}
}

func (s *Store) Trips() repository.ITripRepository               { return s.root().Trips() }
func (s *Store) Schedules() repository.IScheduleRepository       { return s.root().Schedules() }
func (s *Store) Companions() repository.ICompanionRepository     { return s.root().Companions() }
func (s *Store) Applications() repository.IApplicationRepository { return s.root().Applications() }
func (s *Store) ChatRooms() repository.IChatRoomRepository       { return s.root().ChatRooms() }

func (s *Store) Transaction(ctx context.Context, fn func(tx repository.IStore) error) error {
	return s.root().Transaction(ctx, fn)
}

// view is the IStore handed out either at the root (tx == nil) or inside a transaction.
type view struct {
	store *Store
	tx    *state
}

func (v *view) Trips() repository.ITripRepository               { return tripRepo{v} }
func (v *view) Schedules() repository.IScheduleRepository       { return scheduleRepo{v} }
func (v *view) Companions() repository.ICompanionRepository     { return companionRepo{v} }
func (v *view) Applications() repository.IApplicationRepository { return applicationRepo{v} }
func (v *view) ChatRooms() repository.IChatRoomRepository       { return chatRoomRepo{v} }

func (v *view) Transaction(ctx context.Context, fn func(tx repository.IStore) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		inner := v.tx.clone()
		if err := fn(&view{store: v.store, tx: inner}); err != nil {
			return err
		}
		*v.tx = *inner
		return nil
	}

	v.store.mu.Lock()
	defer v.store.mu.Unlock()

	next := v.store.st.clone()
	if err := fn(&view{store: v.store, tx: next}); err != nil {
		return err
	}
	v.store.st = next
	return nil
}

func (v *view) read(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

func (v *view) write(ctx context.Context, fn func(st *state) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

func (v *view) now() time.Time {
	return v.store.now()
}

// newestFirst orders records by creation time, then id, descending.
func newestFirst[T any](items []*T, created func(*T) time.Time, id func(*T) int64) []*T {
	slices.SortFunc(items, func(a, b *T) int {
		if c := created(b).Compare(created(a)); c != 0 {
			return c
		}
		switch {
		case id(a) > id(b):
			return -1
		case id(a) < id(b):
			return 1
		}
		return 0
	})
	return items
}

func page[T any](items []*T, limit, offset int) []*T {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 || offset >= len(items) {
		return []*T{}
	}
	return items[offset:min(offset+limit, len(items))]
}
