package model

import "time"

type PlaceType string

const (
	PlaceAccommodation PlaceType = "ACCOMMODATION"
	PlaceRestaurant    PlaceType = "RESTAURANT"
	PlaceAttraction    PlaceType = "ATTRACTION"
	PlaceTransport     PlaceType = "TRANSPORT"
	PlaceActivity      PlaceType = "ACTIVITY"
)

func ParsePlaceType(s string) (PlaceType, bool) {
	switch pt := PlaceType(s); pt {
	case PlaceAccommodation, PlaceRestaurant, PlaceAttraction, PlaceTransport, PlaceActivity:
		return pt, true
	}
	return "", false
}

// TripSchedule is one stop of a trip's itinerary. Time is "HH:MM" on day DayNumber,
// counted from 1 at the trip's start date.
type TripSchedule struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	TripID      int64     `gorm:"not null;index:idx_trip_schedules_order,priority:1" json:"trip_id"`
	DayNumber   int       `gorm:"not null;index:idx_trip_schedules_order,priority:2" json:"day_number"`
	Time        string    `gorm:"type:varchar(5);not null;index:idx_trip_schedules_order,priority:3" json:"time"`
	PlaceName   string    `gorm:"type:varchar(255);not null" json:"place_name"`
	PlaceType   PlaceType `gorm:"type:varchar(16);not null" json:"place_type"`
	Description string    `gorm:"type:varchar(1000)" json:"description"`
	Lat         *float64  `json:"lat,omitempty"`
	Lng         *float64  `json:"lng,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (TripSchedule) TableName() string {
	return "trip_schedules"
}
