package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/TripMate/internal/model"
)

// IApplicationRepository defines the interface for companion application data operations
type IApplicationRepository interface {
	// Create inserts a new application; a second one for the same (companion, user) yields ErrDuplicate.
	Create(ctx context.Context, app *model.CompanionApplication) error
	FindByCompanionAndUser(ctx context.Context, companionID, userID int64) (*model.CompanionApplication, error)
	Exists(ctx context.Context, companionID, userID int64) (bool, error)
	ListByCompanion(ctx context.Context, companionID int64) ([]*model.CompanionApplication, error)
	ListByUser(ctx context.Context, userID int64) ([]*model.CompanionApplication, error)
	UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) error
	DeleteByCompanion(ctx context.Context, companionID int64) error
}

// ApplicationRepository implements IApplicationRepository interface
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new IApplicationRepository instance
func NewApplicationRepository(db *gorm.DB) IApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, app *model.CompanionApplication) error {
	return translate(r.db.WithContext(ctx).Create(app).Error)
}

func (r *ApplicationRepository) FindByCompanionAndUser(ctx context.Context, companionID, userID int64) (*model.CompanionApplication, error) {
	var app model.CompanionApplication
	err := r.db.WithContext(ctx).
		Where("companion_id = ? AND user_id = ?", companionID, userID).
		First(&app).Error
	if err != nil {
		return nil, translate(err)
	}
	return &app, nil
}

func (r *ApplicationRepository) Exists(ctx context.Context, companionID, userID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.CompanionApplication{}).
		Where("companion_id = ? AND user_id = ?", companionID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *ApplicationRepository) ListByCompanion(ctx context.Context, companionID int64) ([]*model.CompanionApplication, error) {
	var apps []*model.CompanionApplication
	err := r.db.WithContext(ctx).
		Where("companion_id = ?", companionID).
		Order("created_at DESC, id DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) ListByUser(ctx context.Context, userID int64) ([]*model.CompanionApplication, error) {
	var apps []*model.CompanionApplication
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&apps).Error
	return apps, err
}

func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id int64, status model.ApplicationStatus) error {
	res := r.db.WithContext(ctx).
		Model(&model.CompanionApplication{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) DeleteByCompanion(ctx context.Context, companionID int64) error {
	return r.db.WithContext(ctx).Where("companion_id = ?", companionID).Delete(&model.CompanionApplication{}).Error
}
