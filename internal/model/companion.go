package model

import "time"

type CompanionStatus string

const (
	CompanionRecruiting CompanionStatus = "RECRUITING"
	CompanionClosed     CompanionStatus = "CLOSED"
	CompanionCancelled  CompanionStatus = "CANCELLED"
)

func ParseCompanionStatus(s string) (CompanionStatus, bool) {
	switch st := CompanionStatus(s); st {
	case CompanionRecruiting, CompanionClosed, CompanionCancelled:
		return st, true
	}
	return "", false
}

// Companion is a recruitment listing attached to a trip.
// CurrentMembers counts the owner plus every approved applicant.
type Companion struct {
	ID             int64           `gorm:"primaryKey;autoIncrement:false" json:"id"`
	TripID         int64           `gorm:"not null;index:idx_companions_trip_status" json:"trip_id"`
	OwnerID        int64           `gorm:"not null;index" json:"owner_id"`
	Title          string          `gorm:"type:varchar(255);not null" json:"title"`
	Content        string          `gorm:"type:varchar(2000);not null" json:"content"`
	MaxMembers     int             `gorm:"not null" json:"max_members"`
	CurrentMembers int             `gorm:"not null" json:"current_members"`
	Status         CompanionStatus `gorm:"type:varchar(16);not null;index:idx_companions_trip_status" json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (Companion) TableName() string {
	return "companions"
}

func (c *Companion) IsRecruiting() bool {
	return c.Status == CompanionRecruiting
}

// HasOpenSlot reports whether one more member fits under MaxMembers.
func (c *Companion) HasOpenSlot() bool {
	return c.CurrentMembers < c.MaxMembers
}
