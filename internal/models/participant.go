package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role classifies a participant at join time and never changes afterwards.
type Role string

const (
	// RoleSuffering marks a participant who joined to vent.
	RoleSuffering Role = "suffering"
	// RoleHealing marks a participant who joined to listen.
	RoleHealing Role = "healing"
)

// ParseRole maps the wire value onto a Role. The second return value is
// false for anything other than the two known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleSuffering:
		return RoleSuffering, true
	case RoleHealing:
		return RoleHealing, true
	}
	return "", false
}

// Status is the lifecycle state of a participant.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusMatched  Status = "matched"
	StatusChatting Status = "chatting"
	StatusLeft     Status = "left"
)

// Participant represents one anonymous user of the matching system.
// There is no account behind it: the display name is self-asserted and the
// record lives only as long as the matching data does.
type Participant struct {
	// ID is the anonymous UUID generated at join time.
	ID string `gorm:"primaryKey" json:"id"`
	// Name is the display name, already passed through the profanity guard.
	Name string `gorm:"type:text;not null" json:"name"`
	// Role is fixed at join and never changes.
	Role Role `gorm:"type:text;not null" json:"role"`
	// Status tracks the waiting -> matched -> chatting -> left lifecycle.
	Status Status `gorm:"type:text;not null;index" json:"status"`
	// RoomID is set once the participant has been matched into a room.
	RoomID *string `gorm:"type:uuid;index" json:"room_id,omitempty"`
	// JoinedAt is the time the participant entered the system.
	JoinedAt time.Time `json:"joined_at"`
	// LastActiveAt is refreshed on join and on every sent message.
	LastActiveAt time.Time `json:"last_active_at"`
}

// BeforeCreate is a GORM hook that generates a new UUID for the participant
// if the ID has not been set yet.
func (p *Participant) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return
}
