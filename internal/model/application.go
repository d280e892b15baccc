package model

import "time"

type ApplicationStatus string

const (
	ApplicationPending  ApplicationStatus = "PENDING"
	ApplicationApproved ApplicationStatus = "APPROVED"
	ApplicationRejected ApplicationStatus = "REJECTED"
)

// CompanionApplication is one user's request to join a listing.
// (CompanionID, UserID) is unique; once decided the status never changes again.
type CompanionApplication struct {
	ID          int64             `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CompanionID int64             `gorm:"not null;uniqueIndex:idx_applications_companion_user" json:"companion_id"`
	UserID      int64             `gorm:"not null;uniqueIndex:idx_applications_companion_user;index" json:"user_id"`
	Message     string            `gorm:"type:varchar(500)" json:"message"`
	Status      ApplicationStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (CompanionApplication) TableName() string {
	return "companion_applications"
}

func (a *CompanionApplication) IsPending() bool {
	return a.Status == ApplicationPending
}
