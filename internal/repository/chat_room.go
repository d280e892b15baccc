package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Gopher0727/TripMate/internal/model"
)

// IChatRoomRepository defines the interface for chat room data operations
type IChatRoomRepository interface {
	Create(ctx context.Context, room *model.ChatRoom) error
	FindByID(ctx context.Context, id int64) (*model.ChatRoom, error)
	FindByCompanion(ctx context.Context, companionID int64) (*model.ChatRoom, error)
	// ListForUser returns rooms whose listing the user owns or holds an approved application for.
	ListForUser(ctx context.Context, userID int64) ([]*model.ChatRoom, error)
	DeleteByCompanion(ctx context.Context, companionID int64) error
}

// ChatRoomRepository implements IChatRoomRepository interface
type ChatRoomRepository struct {
	db *gorm.DB
}

// NewChatRoomRepository creates a new IChatRoomRepository instance
func NewChatRoomRepository(db *gorm.DB) IChatRoomRepository {
	return &ChatRoomRepository{db: db}
}

func (r *ChatRoomRepository) Create(ctx context.Context, room *model.ChatRoom) error {
	return translate(r.db.WithContext(ctx).Create(room).Error)
}

func (r *ChatRoomRepository) FindByID(ctx context.Context, id int64) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *ChatRoomRepository) FindByCompanion(ctx context.Context, companionID int64) (*model.ChatRoom, error) {
	var room model.ChatRoom
	if err := r.db.WithContext(ctx).Where("companion_id = ?", companionID).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (r *ChatRoomRepository) ListForUser(ctx context.Context, userID int64) ([]*model.ChatRoom, error) {
	var rooms []*model.ChatRoom
	err := r.db.WithContext(ctx).
		Model(&model.ChatRoom{}).
		Select("chat_rooms.*").
		Joins("JOIN companions ON companions.id = chat_rooms.companion_id").
		Joins("LEFT JOIN companion_applications ON companion_applications.companion_id = companions.id AND companion_applications.user_id = ? AND companion_applications.status = ?",
			userID, model.ApplicationApproved).
		Where("companions.owner_id = ? OR companion_applications.id IS NOT NULL", userID).
		Order("chat_rooms.created_at DESC, chat_rooms.id DESC").
		Find(&rooms).Error
	return rooms, err
}

func (r *ChatRoomRepository) DeleteByCompanion(ctx context.Context, companionID int64) error {
	return r.db.WithContext(ctx).Where("companion_id = ?", companionID).Delete(&model.ChatRoom{}).Error
}
