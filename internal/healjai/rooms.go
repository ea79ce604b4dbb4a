package healjai

import (
	"sync"
	"time"

	"healjai/backend/internal/models"

	"github.com/google/uuid"
)

// RoomManager owns the room records and their message sequences. Appends and
// closes on a given room are serialized, so no participant message can land
// after the closure system message.
type RoomManager interface {
	// CreateRoom opens an active room for a matched pair.
	CreateRoom(sufferingID, healingID string) (*models.ChatRoom, error)
	// GetRoom returns the room or ErrNotFound.
	GetRoom(roomID string) (*models.ChatRoom, error)
	// AppendMessage appends a message to an active room. A nil senderID
	// marks a system message; participant senders must be room members.
	// Returns ErrRoomClosed for ended rooms and ErrUnauthorized for
	// non-members.
	AppendMessage(roomID string, senderID *string, senderName, content string) (*models.Message, error)
	// EndRoom closes the room and appends the closure system message with
	// the given reason text. Ending an already ended room is a no-op that
	// returns (nil, nil). The returned message is the closure message.
	EndRoom(roomID, reason string) (*models.Message, error)
	// Messages returns the room's messages in insertion order.
	Messages(roomID string) ([]models.Message, error)
	// FindActiveRoomFor returns the active room the participant belongs to,
	// or (nil, nil) if there is none. A participant is in at most one
	// active room at a time.
	FindActiveRoomFor(participantID string) (*models.ChatRoom, error)
}

// MemoryRooms is the in-process RoomManager. One mutex serializes every
// append and close, which is enough at the scale of short-lived 1-on-1 rooms.
type MemoryRooms struct {
	mu       sync.Mutex
	rooms    map[string]*models.ChatRoom
	messages map[string][]models.Message
	seq      int64
}

func NewMemoryRooms() *MemoryRooms {
	return &MemoryRooms{
		rooms:    make(map[string]*models.ChatRoom),
		messages: make(map[string][]models.Message),
	}
}

func (m *MemoryRooms) CreateRoom(sufferingID, healingID string) (*models.ChatRoom, error) {
	room := &models.ChatRoom{
		RoomID:      uuid.New().String(),
		SufferingID: sufferingID,
		HealingID:   healingID,
		IsActive:    true,
		StartedAt:   time.Now(),
	}

	m.mu.Lock()
	m.rooms[room.RoomID] = room
	m.mu.Unlock()

	cp := *room
	return &cp, nil
}

func (m *MemoryRooms) GetRoom(roomID string) (*models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *room
	return &cp, nil
}

func (m *MemoryRooms) AppendMessage(roomID string, senderID *string, senderName, content string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(roomID, senderID, senderName, content)
}

func (m *MemoryRooms) appendLocked(roomID string, senderID *string, senderName, content string) (*models.Message, error) {
	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	if senderID != nil {
		if !room.IsActive {
			return nil, ErrRoomClosed
		}
		if !room.HasParticipant(*senderID) {
			return nil, ErrUnauthorized
		}
	}

	m.seq++
	msg := models.Message{
		ID:         uuid.New().String(),
		Seq:        m.seq,
		RoomID:     roomID,
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
		CreatedAt:  time.Now(),
	}
	m.messages[roomID] = append(m.messages[roomID], msg)

	cp := msg
	return &cp, nil
}

func (m *MemoryRooms) EndRoom(roomID, reason string) (*models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrNotFound
	}
	if !room.IsActive {
		return nil, nil
	}

	room.IsActive = false
	now := time.Now()
	room.EndedAt = &now

	// The closure notice is appended under the same lock, so it is always
	// the last message of the room.
	return m.appendLocked(roomID, nil, models.SystemSenderName, reason)
}

func (m *MemoryRooms) Messages(roomID string) ([]models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	msgs := m.messages[roomID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (m *MemoryRooms) FindActiveRoomFor(participantID string) (*models.ChatRoom, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range m.rooms {
		if room.IsActive && room.HasParticipant(participantID) {
			cp := *room
			return &cp, nil
		}
	}
	return nil, nil
}
