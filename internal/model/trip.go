package model

import "time"

type TripStatus string

const (
	TripPlanning  TripStatus = "PLANNING"
	TripConfirmed TripStatus = "CONFIRMED"
	TripCompleted TripStatus = "COMPLETED"
	TripCancelled TripStatus = "CANCELLED"
)

func ParseTripStatus(s string) (TripStatus, bool) {
	switch st := TripStatus(s); st {
	case TripPlanning, TripConfirmed, TripCompleted, TripCancelled:
		return st, true
	}
	return "", false
}

// TripThemes lists the travel styles a trip may be tagged with.
var TripThemes = map[string]struct{}{
	"HEALING":   {},
	"ADVENTURE": {},
	"FOOD":      {},
	"CULTURE":   {},
	"SHOPPING":  {},
	"NATURE":    {},
}

// Trip is an owner's travel plan. Companion listings recruit people for a trip.
type Trip struct {
	ID          int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	OwnerID     int64      `gorm:"not null;index" json:"owner_id"`
	Title       string     `gorm:"type:varchar(255);not null" json:"title"`
	Destination string     `gorm:"type:varchar(255);not null;index" json:"destination"`
	StartDate   time.Time  `gorm:"not null" json:"start_date"`
	EndDate     time.Time  `gorm:"not null" json:"end_date"`
	Budget      *int64     `json:"budget,omitempty"`
	Themes      []string   `gorm:"serializer:json;type:text" json:"themes"`
	Status      TripStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Trip) TableName() string {
	return "trips"
}
