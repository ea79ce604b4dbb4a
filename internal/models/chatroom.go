package models

import "time"

// ChatRoom represents a private 1-on-1 session between one suffering and one
// healing participant. It holds the pairing and its active status; messages
// are stored separately and reference the room by ID.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string `gorm:"primaryKey" json:"room_id"`
	// SufferingID is the anonymous ID of the suffering-side participant.
	SufferingID string `gorm:"type:uuid;not null;index" json:"suffering_id"`
	// HealingID is the anonymous ID of the healing-side participant.
	HealingID string `gorm:"type:uuid;not null;index" json:"healing_id"`
	// IsActive indicates whether the chat room is currently active.
	IsActive bool `json:"is_active"`
	// StartedAt is the timestamp when the chat room was created.
	StartedAt time.Time `json:"started_at"`
	// EndedAt is the timestamp when the chat room was closed, nil while active.
	EndedAt *time.Time `json:"ended_at,omitempty"`
}

// HasParticipant reports whether the given participant ID belongs to the room.
func (r *ChatRoom) HasParticipant(id string) bool {
	return id != "" && (id == r.SufferingID || id == r.HealingID)
}

// OtherParticipant returns the ID of the room member opposite to the given
// one, or the empty string if the given ID is not a member.
func (r *ChatRoom) OtherParticipant(id string) string {
	switch id {
	case r.SufferingID:
		return r.HealingID
	case r.HealingID:
		return r.SufferingID
	}
	return ""
}
