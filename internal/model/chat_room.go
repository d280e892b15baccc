package model

import "time"

// ChatRoom is the group conversation bound to exactly one listing.
// Membership is derived: the listing owner plus its approved applicants.
type ChatRoom struct {
	ID          int64     `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CompanionID int64     `gorm:"not null;uniqueIndex" json:"companion_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// All returns every persisted model in migration order.
func All() []any {
	return []any{&Trip{}, &TripSchedule{}, &Companion{}, &CompanionApplication{}, &ChatRoom{}}
}
