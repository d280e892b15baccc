package dto

import (
	"time"

	"github.com/Gopher0727/TripMate/internal/model"
)

type ApplyRequest struct {
	Message string `json:"message" binding:"max=500"`
}

type ApplicationDTO struct {
	ID          int64     `json:"id"`
	CompanionID int64     `json:"companion_id"`
	UserID      int64     `json:"user_id"`
	Message     string    `json:"message"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromApplication(a *model.CompanionApplication) *ApplicationDTO {
	return &ApplicationDTO{
		ID:          a.ID,
		CompanionID: a.CompanionID,
		UserID:      a.UserID,
		Message:     a.Message,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

func FromApplications(apps []*model.CompanionApplication) []*ApplicationDTO {
	out := make([]*ApplicationDTO, 0, len(apps))
	for _, a := range apps {
		out = append(out, FromApplication(a))
	}
	return out
}
