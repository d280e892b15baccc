package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/TripMate/internal/model"
)

// ITripRepository defines the interface for trip data operations
type ITripRepository interface {
	Create(ctx context.Context, trip *model.Trip) error
	FindByID(ctx context.Context, id int64, lock LockMode) (*model.Trip, error)
	// List pages through all trips, newest first, and returns the total count.
	List(ctx context.Context, limit, offset int) ([]*model.Trip, int64, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Trip, error)
	Update(ctx context.Context, trip *model.Trip) error
	Delete(ctx context.Context, id int64) error
}

// TripRepository implements ITripRepository interface
type TripRepository struct {
	db *gorm.DB
}

// NewTripRepository creates a new ITripRepository instance
func NewTripRepository(db *gorm.DB) ITripRepository {
	return &TripRepository{db: db}
}

func (r *TripRepository) Create(ctx context.Context, trip *model.Trip) error {
	return translate(r.db.WithContext(ctx).Create(trip).Error)
}

func (r *TripRepository) FindByID(ctx context.Context, id int64, lock LockMode) (*model.Trip, error) {
	var trip model.Trip
	err := withLock(r.db.WithContext(ctx), lock).Where("id = ?", id).First(&trip).Error
	if err != nil {
		return nil, translate(err)
	}
	return &trip, nil
}

func (r *TripRepository) List(ctx context.Context, limit, offset int) ([]*model.Trip, int64, error) {
	limit, offset = normalizePage(limit, offset)

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Trip{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var trips []*model.Trip
	err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&trips).Error
	if err != nil {
		return nil, 0, err
	}
	return trips, total, nil
}

func (r *TripRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Trip, error) {
	var trips []*model.Trip
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&trips).Error
	return trips, err
}

func (r *TripRepository) Update(ctx context.Context, trip *model.Trip) error {
	return translate(r.db.WithContext(ctx).Save(trip).Error)
}

func (r *TripRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Trip{}).Error
}
