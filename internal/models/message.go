package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SystemSenderName is the display name attached to system-generated messages.
const SystemSenderName = "System"

// Message is a single chat message inside a room. Messages are immutable
// once created and are kept in insertion order.
type Message struct {
	// ID is the unique identifier of the message (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// Seq orders messages within the whole table; insertion order is
	// chronological order, so readers sort by it.
	Seq int64 `gorm:"autoIncrement;uniqueIndex" json:"-"`
	// RoomID is the identifier of the chat room the message belongs to.
	RoomID string `gorm:"type:uuid;not null;index:idx_room_msg" json:"room_id"`
	// SenderID is the anonymous ID of the sending participant. A nil sender
	// marks a system-generated message, such as the room closure notice.
	SenderID *string `gorm:"type:uuid;index:idx_room_msg" json:"sender_id"`
	// SenderName is the display name captured at insert time. It is
	// denormalized on purpose: a room stays resolvable to two names even
	// after a participant record has been evicted.
	SenderName string `gorm:"type:text;not null" json:"sender_name"`
	// Content is the message text, already passed through the profanity guard.
	Content string `gorm:"type:text;not null" json:"content"`
	// CreatedAt is the timestamp when the message was appended.
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that generates a new UUID for the message
// if the ID has not been set yet.
func (m *Message) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// IsSystem reports whether the message was generated by the system rather
// than by one of the two participants.
func (m *Message) IsSystem() bool {
	return m.SenderID == nil
}
