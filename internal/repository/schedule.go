package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/TripMate/internal/model"
)

// IScheduleRepository defines the interface for trip itinerary data operations
type IScheduleRepository interface {
	// ListByTrip returns a trip's entries ordered by day, then time.
	ListByTrip(ctx context.Context, tripID int64) ([]*model.TripSchedule, error)
	CreateBatch(ctx context.Context, schedules []*model.TripSchedule) error
	DeleteByTrip(ctx context.Context, tripID int64) error
}

// ScheduleRepository implements IScheduleRepository interface
type ScheduleRepository struct {
	db *gorm.DB
}

// NewScheduleRepository creates a new IScheduleRepository instance
func NewScheduleRepository(db *gorm.DB) IScheduleRepository {
	return &ScheduleRepository{db: db}
}

func (r *ScheduleRepository) ListByTrip(ctx context.Context, tripID int64) ([]*model.TripSchedule, error) {
	var schedules []*model.TripSchedule
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("day_number ASC, time ASC, id ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *ScheduleRepository) CreateBatch(ctx context.Context, schedules []*model.TripSchedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return translate(r.db.WithContext(ctx).Create(schedules).Error)
}

func (r *ScheduleRepository) DeleteByTrip(ctx context.Context, tripID int64) error {
	return r.db.WithContext(ctx).Where("trip_id = ?", tripID).Delete(&model.TripSchedule{}).Error
}
