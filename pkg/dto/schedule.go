package dto

import "github.com/Gopher0727/TripMate/internal/model"

// TripScheduleRequest is one itinerary entry in a full-replacement update.
type TripScheduleRequest struct {
	DayNumber   int      `json:"day_number" binding:"required,min=1"`
	Time        string   `json:"time" binding:"required"`
	PlaceName   string   `json:"place_name" binding:"required,max=255"`
	PlaceType   string   `json:"place_type" binding:"required"`
	Description string   `json:"description" binding:"max=1000"`
	Lat         *float64 `json:"lat" binding:"omitempty,min=-90,max=90"`
	Lng         *float64 `json:"lng" binding:"omitempty,min=-180,max=180"`
}

type TripScheduleDTO struct {
	ID          int64    `json:"id"`
	TripID      int64    `json:"trip_id"`
	DayNumber   int      `json:"day_number"`
	Time        string   `json:"time"`
	PlaceName   string   `json:"place_name"`
	PlaceType   string   `json:"place_type"`
	Description string   `json:"description"`
	Lat         *float64 `json:"lat,omitempty"`
	Lng         *float64 `json:"lng,omitempty"`
}

func FromSchedule(s *model.TripSchedule) *TripScheduleDTO {
	return &TripScheduleDTO{
		ID:          s.ID,
		TripID:      s.TripID,
		DayNumber:   s.DayNumber,
		Time:        s.Time,
		PlaceName:   s.PlaceName,
		PlaceType:   string(s.PlaceType),
		Description: s.Description,
		Lat:         s.Lat,
		Lng:         s.Lng,
	}
}

func FromSchedules(schedules []*model.TripSchedule) []*TripScheduleDTO {
	out := make([]*TripScheduleDTO, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, FromSchedule(s))
	}
	return out
}
