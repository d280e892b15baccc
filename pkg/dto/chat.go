package dto

import (
	"time"

	"github.com/Gopher0727/TripMate/internal/model"
)

type ChatRoomDTO struct {
	ID          int64     `json:"id"`
	CompanionID int64     `json:"companion_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type ChatRoomDetailDTO struct {
	ChatRoomDTO
	IsMember bool `json:"is_member"`
}

func FromChatRoom(r *model.ChatRoom) *ChatRoomDTO {
	return &ChatRoomDTO{ID: r.ID, CompanionID: r.CompanionID, CreatedAt: r.CreatedAt}
}

func FromChatRooms(rooms []*model.ChatRoom) []*ChatRoomDTO {
	out := make([]*ChatRoomDTO, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, FromChatRoom(r))
	}
	return out
}
