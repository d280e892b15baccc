package dto

import (
	"time"

	"github.com/Gopher0727/TripMate/internal/model"
)

type CreateCompanionRequest struct {
	TripID     int64  `json:"trip_id" binding:"required"`
	Title      string `json:"title" binding:"required,max=255"`
	Content    string `json:"content" binding:"required,max=2000"`
	MaxMembers int    `json:"max_members" binding:"required"`
}

// UpdateCompanionRequest edits a listing. MaxMembers and Status are owner overrides
// and are accepted even when they contradict the current member count.
type UpdateCompanionRequest struct {
	Title      *string `json:"title" binding:"omitempty,max=255"`
	Content    *string `json:"content" binding:"omitempty,max=2000"`
	MaxMembers *int    `json:"max_members"`
	Status     *string `json:"status"`
}

// CompanionQuery filters the listing search. Zero values mean "any".
type CompanionQuery struct {
	Status      string `form:"status"`
	TripID      int64  `form:"trip_id"`
	OwnerID     int64  `form:"owner_id"`
	Destination string `form:"destination"`
	Page        int    `form:"page"`
	Size        int    `form:"size"`
}

type CompanionDTO struct {
	ID             int64     `json:"id"`
	TripID         int64     `json:"trip_id"`
	OwnerID        int64     `json:"owner_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	MaxMembers     int       `json:"max_members"`
	CurrentMembers int       `json:"current_members"`
	Status         string    `json:"status"`
	ChatRoomID     int64     `json:"chat_room_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type CompanionPage struct {
	Items []*CompanionDTO `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Size  int             `json:"size"`
}

func FromCompanion(c *model.Companion) *CompanionDTO {
	return &CompanionDTO{
		ID:             c.ID,
		TripID:         c.TripID,
		OwnerID:        c.OwnerID,
		Title:          c.Title,
		Content:        c.Content,
		MaxMembers:     c.MaxMembers,
		CurrentMembers: c.CurrentMembers,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func FromCompanions(cs []*model.Companion) []*CompanionDTO {
	out := make([]*CompanionDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromCompanion(c))
	}
	return out
}
