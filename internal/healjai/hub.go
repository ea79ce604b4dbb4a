package healjai

import (
	"log"

	"healjai/backend/internal/models"
)

// Notifier delivers "matched", "message" and "room ended" events to the
// participants of a room. Both the in-process Hub and the Redis-publishing
// notifier satisfy it; delivery is at-least-once and per-room in order.
type Notifier interface {
	RoomMatched(room *models.ChatRoom)
	MessagePosted(room *models.ChatRoom, msg *models.Message)
	RoomEnded(room *models.ChatRoom, msg *models.Message)
}

// InboundMessage is a chat message received from a connected client,
// forwarded to the coordinator through the hub's message sink.
type InboundMessage struct {
	RoomID        string
	ParticipantID string
	Content       string
}

// MessageSink receives chat messages that arrived over a push connection.
type MessageSink func(roomID, participantID, content string)

// Hub tracks the connected clients and fans events out to the participants
// they are addressed to. All state is owned by the Run loop; registration,
// unregistration and events arrive over channels.
type Hub struct {
	Clients map[string]Client

	RegisterCh   chan Client
	UnregisterCh chan Client
	EventCh      chan models.Event
	IncomingCh   chan InboundMessage

	sink MessageSink
}

func NewHub() *Hub {
	return &Hub{
		Clients:      make(map[string]Client),
		RegisterCh:   make(chan Client),
		UnregisterCh: make(chan Client),
		EventCh:      make(chan models.Event, 64),
		IncomingCh:   make(chan InboundMessage, 64),
	}
}

// SetMessageSink wires the receiver of inbound client messages. Must be
// called before Run.
func (h *Hub) SetMessageSink(sink MessageSink) {
	h.sink = sink
}

// Run is the hub's dispatcher goroutine.
func (h *Hub) Run() {
	go h.drainIncoming()
	for {
		select {
		case client := <-h.RegisterCh:
			h.Clients[client.GetParticipantID()] = client
			log.Printf("client registered: %s", client.GetParticipantID())

		case client := <-h.UnregisterCh:
			if current, ok := h.Clients[client.GetParticipantID()]; ok && current == client {
				delete(h.Clients, client.GetParticipantID())
				client.Close()
				log.Printf("client unregistered: %s", client.GetParticipantID())
			}

		case event := <-h.EventCh:
			h.fanOut(event)
		}
	}
}

// drainIncoming feeds inbound client messages to the sink in its own
// goroutine. The sink calls back into the notifier, which sends on EventCh;
// run from inside the dispatcher loop that send could block against the
// loop itself.
func (h *Hub) drainIncoming() {
	for in := range h.IncomingCh {
		if h.sink != nil {
			h.sink(in.RoomID, in.ParticipantID, in.Content)
		}
	}
}

// fanOut delivers the event to every addressed participant that currently
// has a connection. Slow clients are dropped rather than allowed to block
// the dispatcher; they can reconnect and recover state via the poll
// endpoints.
func (h *Hub) fanOut(event models.Event) {
	for _, participantID := range event.Recipients {
		client, ok := h.Clients[participantID]
		if !ok {
			continue
		}
		select {
		case client.GetSendChannel() <- event:
		default:
			delete(h.Clients, participantID)
			client.Close()
			log.Printf("dropped slow client: %s", participantID)
		}
	}
}

// --- Notifier implementation: in-process delivery ---

func (h *Hub) RoomMatched(room *models.ChatRoom) {
	h.EventCh <- matchedEvent(room)
}

func (h *Hub) MessagePosted(room *models.ChatRoom, msg *models.Message) {
	h.EventCh <- messageEvent(room, msg)
}

func (h *Hub) RoomEnded(room *models.ChatRoom, msg *models.Message) {
	h.EventCh <- roomEndedEvent(room, msg)
}

func matchedEvent(room *models.ChatRoom) models.Event {
	return models.Event{
		Type:       models.EventMatched,
		RoomID:     room.RoomID,
		Recipients: []string{room.SufferingID, room.HealingID},
	}
}

func messageEvent(room *models.ChatRoom, msg *models.Message) models.Event {
	return models.Event{
		Type:       models.EventMessage,
		RoomID:     room.RoomID,
		Recipients: []string{room.SufferingID, room.HealingID},
		Message:    msg,
	}
}

func roomEndedEvent(room *models.ChatRoom, msg *models.Message) models.Event {
	return models.Event{
		Type:       models.EventRoomEnded,
		RoomID:     room.RoomID,
		Recipients: []string{room.SufferingID, room.HealingID},
		Message:    msg,
	}
}
