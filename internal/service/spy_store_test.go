package service

import (
	"context"
	"slices"
	"sync"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
)

// lockCall is one row lookup observed by spyStore.
type lockCall struct {
	op   string
	id   int64
	mode repository.LockMode
}

type lockLog struct {
	mu        sync.Mutex
	calls     []lockCall
	afterRead func()
}

func (l *lockLog) record(op string, id int64, mode repository.LockMode) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, lockCall{op: op, id: id, mode: mode})
}

func (l *lockLog) snapshot() []lockCall {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

func (l *lockLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// onNextRead runs fn once, right after the next listing read made outside a transaction.
func (l *lockLog) onNextRead(fn func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.afterRead = fn
}

func (l *lockLog) takeHook() func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn := l.afterRead
	l.afterRead = nil
	return fn
}

// spyStore wraps a store and records the lock mode of every trip and listing lookup.
type spyStore struct {
	repository.IStore
	log  *lockLog
	inTx bool
}

func newSpyStore(inner repository.IStore) *spyStore {
	return &spyStore{IStore: inner, log: &lockLog{}}
}

func (s *spyStore) Trips() repository.ITripRepository {
	return spyTrips{ITripRepository: s.IStore.Trips(), log: s.log}
}

func (s *spyStore) Companions() repository.ICompanionRepository {
	return spyCompanions{ICompanionRepository: s.IStore.Companions(), log: s.log, inTx: s.inTx}
}

func (s *spyStore) Transaction(ctx context.Context, fn func(tx repository.IStore) error) error {
	return s.IStore.Transaction(ctx, func(tx repository.IStore) error {
		return fn(&spyStore{IStore: tx, log: s.log, inTx: true})
	})
}

type spyTrips struct {
	repository.ITripRepository
	log *lockLog
}

func (r spyTrips) FindByID(ctx context.Context, id int64, lock repository.LockMode) (*model.Trip, error) {
	r.log.record("trip.find", id, lock)
	return r.ITripRepository.FindByID(ctx, id, lock)
}

type spyCompanions struct {
	repository.ICompanionRepository
	log  *lockLog
	inTx bool
}

func (r spyCompanions) FindByID(ctx context.Context, id int64, lock repository.LockMode) (*model.Companion, error) {
	r.log.record("companion.find", id, lock)
	c, err := r.ICompanionRepository.FindByID(ctx, id, lock)
	if !r.inTx {
		if hook := r.log.takeHook(); hook != nil {
			hook()
		}
	}
	return c, err
}

func (r spyCompanions) ListByTrip(ctx context.Context, tripID int64, lock repository.LockMode) ([]*model.Companion, error) {
	r.log.record("companion.list_by_trip", tripID, lock)
	return r.ICompanionRepository.ListByTrip(ctx, tripID, lock)
}
