package healjai

import (
	"encoding/json"
	"log"

	"healjai/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

// EventPublisher publishes events to a shared channel so that every server
// process can fan them out to its own connected clients.
type EventPublisher interface {
	PublishEvent(event models.Event) error
}

// PublishNotifier is the Notifier used with the persisted backend: instead
// of pushing into the local hub it publishes through Redis, and every hub
// (this process included) picks the event up via RelayEvents.
type PublishNotifier struct {
	pub EventPublisher
}

func NewPublishNotifier(pub EventPublisher) *PublishNotifier {
	return &PublishNotifier{pub: pub}
}

func (n *PublishNotifier) RoomMatched(room *models.ChatRoom) {
	n.publish(matchedEvent(room))
}

func (n *PublishNotifier) MessagePosted(room *models.ChatRoom, msg *models.Message) {
	n.publish(messageEvent(room, msg))
}

func (n *PublishNotifier) RoomEnded(room *models.ChatRoom, msg *models.Message) {
	n.publish(roomEndedEvent(room, msg))
}

func (n *PublishNotifier) publish(event models.Event) {
	if err := n.pub.PublishEvent(event); err != nil {
		log.Printf("failed to publish %s event for room %s: %v", event.Type, event.RoomID, err)
	}
}

// RelayEvents runs a goroutine that forwards events from a Redis pub/sub
// subscription into the hub's event channel.
func (h *Hub) RelayEvents(pubsub *redis.PubSub) {
	go func() {
		defer pubsub.Close()

		for msg := range pubsub.Channel() {
			var event models.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Printf("error unmarshalling pubsub event: %v", err)
				continue
			}
			h.EventCh <- event
		}
	}()
}
