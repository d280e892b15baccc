package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Gopher0727/TripMate/internal/model"
	"github.com/Gopher0727/TripMate/internal/repository"
	"github.com/Gopher0727/TripMate/pkg/dto"
)

// IChatService exposes the chat rooms bound to companion listings.
type IChatService interface {
	// ListUserRooms returns rooms of listings the user owns or was approved into.
	ListUserRooms(ctx context.Context, userID int64) ([]*dto.ChatRoomDTO, error)
	GetRoom(ctx context.Context, roomID, userID int64) (*dto.ChatRoomDetailDTO, error)
	IsMember(ctx context.Context, roomID, userID int64) (bool, error)
}

// ChatService binds exactly one chat room to each listing.
type ChatService struct {
	store repository.IStore
	ids   IDGenerator
}

func NewChatService(deps Dependencies) *ChatService {
	return &ChatService{store: deps.Store, ids: deps.IDs}
}

// ProvisionRoom creates the listing's room inside the caller's transaction.
func (s *ChatService) ProvisionRoom(ctx context.Context, tx repository.IStore, companionID int64) (*model.ChatRoom, error) {
	id, err := s.ids.NextID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate chat room id: %w", err)
	}
	room := &model.ChatRoom{ID: id, CompanionID: companionID}
	if err := tx.ChatRooms().Create(ctx, room); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrRoomExists
		}
		return nil, fmt.Errorf("failed to create chat room: %w", err)
	}
	return room, nil
}

func (s *ChatService) ListUserRooms(ctx context.Context, userID int64) ([]*dto.ChatRoomDTO, error) {
	rooms, err := s.store.ChatRooms().ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	return dto.FromChatRooms(rooms), nil
}

func (s *ChatService) GetRoom(ctx context.Context, roomID, userID int64) (*dto.ChatRoomDetailDTO, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	member, err := s.isMember(ctx, room, userID)
	if err != nil {
		return nil, err
	}
	return &dto.ChatRoomDetailDTO{ChatRoomDTO: *dto.FromChatRoom(room), IsMember: member}, nil
}

// IsMember reports whether userID belongs to the room: the listing owner or an approved applicant.
func (s *ChatService) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	room, err := s.findRoom(ctx, roomID)
	if err != nil {
		return false, err
	}
	return s.isMember(ctx, room, userID)
}

func (s *ChatService) findRoom(ctx context.Context, roomID int64) (*model.ChatRoom, error) {
	room, err := s.store.ChatRooms().FindByID(ctx, roomID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrChatRoomNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find chat room: %w", err)
	}
	return room, nil
}

func (s *ChatService) isMember(ctx context.Context, room *model.ChatRoom, userID int64) (bool, error) {
	companion, err := s.store.Companions().FindByID(ctx, room.CompanionID, repository.LockNone)
	if errors.Is(err, repository.ErrNotFound) {
		return false, ErrCompanionNotFound
	}
	if err != nil {
		return false, fmt.Errorf("failed to find companion: %w", err)
	}
	if companion.OwnerID == userID {
		return true, nil
	}

	app, err := s.store.Applications().FindByCompanionAndUser(ctx, companion.ID, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to find application: %w", err)
	}
	return app.Status == model.ApplicationApproved, nil
}
