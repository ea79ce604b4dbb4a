package models

// Event types delivered over the notification channel.
const (
	EventMatched   = "matched"
	EventMessage   = "message"
	EventRoomEnded = "room_ended"
)

// Event is one notification delivered to a connected participant: a match
// was made, a message was posted or the room was closed.
type Event struct {
	Type   string `json:"type"`
	RoomID string `json:"room_id"`
	// Recipients lists the participant IDs the event is addressed to. The
	// hub uses it for fanout; clients only ever receive their own events.
	Recipients []string `json:"recipients,omitempty"`
	// Message carries the posted message for "message" events and the
	// system closure message for "room_ended" events.
	Message *Message `json:"message,omitempty"`
}

// InboundFrame is a message sent by a connected client over the websocket.
type InboundFrame struct {
	RoomID  string `json:"room_id"`
	Content string `json:"content"`
}
