package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned by single-row lookups that match nothing.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when an insert violates a unique index.
	ErrDuplicate = errors.New("duplicate record")
)

// LockMode selects the row lock a lookup takes inside a transaction.
type LockMode int

const (
	LockNone LockMode = iota
	// LockShare blocks concurrent writers of the row until commit (FOR SHARE).
	LockShare
	// LockUpdate serializes writers of the row until commit (FOR UPDATE).
	LockUpdate
)

// IStore groups the repositories and runs units of work atomically.
type IStore interface {
	Trips() ITripRepository
	Schedules() IScheduleRepository
	Companions() ICompanionRepository
	Applications() IApplicationRepository
	ChatRooms() IChatRoomRepository

	// Transaction runs fn against a transactional view of the store. fn's error rolls
	// everything back; a nil return commits. Nested calls join the outer transaction.
	Transaction(ctx context.Context, fn func(tx IStore) error) error
}

// Store implements IStore on gorm.
type Store struct {
	db *gorm.DB
}

// NewStore creates a new IStore instance
func NewStore(db *gorm.DB) IStore {
	return &Store{db: db}
}

func (s *Store) Trips() ITripRepository {
	return &TripRepository{db: s.db}
}

func (s *Store) Schedules() IScheduleRepository {
	return &ScheduleRepository{db: s.db}
}

func (s *Store) Companions() ICompanionRepository {
	return &CompanionRepository{db: s.db}
}

func (s *Store) Applications() IApplicationRepository {
	return &ApplicationRepository{db: s.db}
}

func (s *Store) ChatRooms() IChatRoomRepository {
	return &ChatRoomRepository{db: s.db}
}

func (s *Store) Transaction(ctx context.Context, fn func(tx IStore) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

func withLock(db *gorm.DB, mode LockMode) *gorm.DB {
	switch mode {
	case LockShare:
		return db.Clauses(clause.Locking{Strength: "SHARE"})
	case LockUpdate:
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
