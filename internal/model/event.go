package model

import "time"

type EventType string

const (
	EventCompanionCreated     EventType = "companion.created"
	EventChatRoomProvisioned  EventType = "chat_room.provisioned"
	EventApplicationSubmitted EventType = "application.submitted"
	EventApplicationApproved  EventType = "application.approved"
	EventApplicationRejected  EventType = "application.rejected"
	EventCompanionClosed      EventType = "companion.closed"
	EventCompanionDeleted     EventType = "companion.deleted"
)

// CompanionEvent is published after a lifecycle change commits.
// The chat transport consumes these to open rooms and adjust membership.
type CompanionEvent struct {
	Type        EventType `json:"type"`
	CompanionID int64     `json:"companion_id"`
	TripID      int64     `json:"trip_id,omitempty"`
	ChatRoomID  int64     `json:"chat_room_id,omitempty"`
	UserID      int64     `json:"user_id,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}
