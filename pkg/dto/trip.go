package dto

import (
	"time"

	"github.com/Gopher0727/TripMate/internal/model"
)

// DateLayout is the wire format of trip dates.
const DateLayout = "2006-01-02"

type CreateTripRequest struct {
	Title       string   `json:"title" binding:"required,max=255"`
	Destination string   `json:"destination" binding:"required,max=255"`
	StartDate   string   `json:"start_date" binding:"required"`
	EndDate     string   `json:"end_date" binding:"required"`
	Budget      *int64   `json:"budget" binding:"omitempty,min=0"`
	Themes      []string `json:"themes"`
}

// UpdateTripRequest is a partial update; nil fields are left unchanged.
type UpdateTripRequest struct {
	Title       *string   `json:"title" binding:"omitempty,max=255"`
	Destination *string   `json:"destination" binding:"omitempty,max=255"`
	StartDate   *string   `json:"start_date"`
	EndDate     *string   `json:"end_date"`
	Budget      *int64    `json:"budget" binding:"omitempty,min=0"`
	Themes      *[]string `json:"themes"`
	Status      *string   `json:"status"`
}

type TripDTO struct {
	ID          int64     `json:"id"`
	OwnerID     int64     `json:"owner_id"`
	Title       string    `json:"title"`
	Destination string    `json:"destination"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	Budget      *int64    `json:"budget,omitempty"`
	Themes      []string  `json:"themes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TripPage struct {
	Items []*TripDTO `json:"items"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Size  int        `json:"size"`
}

func FromTrip(t *model.Trip) *TripDTO {
	themes := t.Themes
	if themes == nil {
		themes = []string{}
	}
	return &TripDTO{
		ID:          t.ID,
		OwnerID:     t.OwnerID,
		Title:       t.Title,
		Destination: t.Destination,
		StartDate:   t.StartDate.Format(DateLayout),
		EndDate:     t.EndDate.Format(DateLayout),
		Budget:      t.Budget,
		Themes:      themes,
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTrips(trips []*model.Trip) []*TripDTO {
	out := make([]*TripDTO, 0, len(trips))
	for _, t := range trips {
		out = append(out, FromTrip(t))
	}
	return out
}
