package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/TripMate/internal/model"
)

// CompanionFilter narrows listing searches. Zero values are ignored.
type CompanionFilter struct {
	Status  model.CompanionStatus
	TripID  int64
	OwnerID int64
	// Destination matches the parent trip's destination by substring.
	Destination string
}

// ICompanionRepository defines the interface for companion listing data operations
type ICompanionRepository interface {
	Create(ctx context.Context, companion *model.Companion) error
	FindByID(ctx context.Context, id int64, lock LockMode) (*model.Companion, error)
	List(ctx context.Context, filter CompanionFilter, limit, offset int) ([]*model.Companion, int64, error)
	// ListByTrip returns every listing of a trip, taking lock on each returned row.
	ListByTrip(ctx context.Context, tripID int64, lock LockMode) ([]*model.Companion, error)
	ExistsByTripAndStatus(ctx context.Context, tripID int64, status model.CompanionStatus) (bool, error)
	Update(ctx context.Context, companion *model.Companion) error
	Delete(ctx context.Context, id int64) error
}

// CompanionRepository implements ICompanionRepository interface
type CompanionRepository struct {
	db *gorm.DB
}

// NewCompanionRepository creates a new ICompanionRepository instance
func NewCompanionRepository(db *gorm.DB) ICompanionRepository {
	return &CompanionRepository{db: db}
}

func (r *CompanionRepository) Create(ctx context.Context, companion *model.Companion) error {
	return translate(r.db.WithContext(ctx).Create(companion).Error)
}

// FindByID loads a listing, taking the requested row lock when called inside a transaction.
func (r *CompanionRepository) FindByID(ctx context.Context, id int64, lock LockMode) (*model.Companion, error) {
	var companion model.Companion
	err := withLock(r.db.WithContext(ctx), lock).Where("id = ?", id).First(&companion).Error
	if err != nil {
		return nil, translate(err)
	}
	return &companion, nil
}

func (r *CompanionRepository) List(ctx context.Context, filter CompanionFilter, limit, offset int) ([]*model.Companion, int64, error) {
	limit, offset = normalizePage(limit, offset)

	query := r.filtered(ctx, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var companions []*model.Companion
	err := r.filtered(ctx, filter).
		Select("companions.*").
		Order("companions.created_at DESC, companions.id DESC").
		Limit(limit).
		Offset(offset).
		Find(&companions).Error
	if err != nil {
		return nil, 0, err
	}
	return companions, total, nil
}

func (r *CompanionRepository) filtered(ctx context.Context, filter CompanionFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Companion{})
	if filter.Status != "" {
		query = query.Where("companions.status = ?", filter.Status)
	}
	if filter.TripID != 0 {
		query = query.Where("companions.trip_id = ?", filter.TripID)
	}
	if filter.OwnerID != 0 {
		query = query.Where("companions.owner_id = ?", filter.OwnerID)
	}
	if filter.Destination != "" {
		query = query.
			Joins("JOIN trips ON trips.id = companions.trip_id").
			Where("LOWER(trips.destination) LIKE LOWER(?)", "%"+filter.Destination+"%")
	}
	return query
}

func (r *CompanionRepository) ListByTrip(ctx context.Context, tripID int64, lock LockMode) ([]*model.Companion, error) {
	var companions []*model.Companion
	err := withLock(r.db.WithContext(ctx), lock).
		Where("trip_id = ?", tripID).
		Order("created_at DESC, id DESC").
		Find(&companions).Error
	return companions, err
}

func (r *CompanionRepository) ExistsByTripAndStatus(ctx context.Context, tripID int64, status model.CompanionStatus) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Companion{}).
		Where("trip_id = ? AND status = ?", tripID, status).
		Count(&count).Error
	return count > 0, err
}

func (r *CompanionRepository) Update(ctx context.Context, companion *model.Companion) error {
	return translate(r.db.WithContext(ctx).Save(companion).Error)
}

func (r *CompanionRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Companion{}).Error
}
