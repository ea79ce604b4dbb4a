package healjai

import (
	"errors"
	"log"
	"strings"
	"sync"

	"healjai/backend/internal/config"
	"healjai/backend/internal/models"
	"healjai/backend/internal/profanity"
)

// Coordinator orchestrates the registry, the queue and the room manager:
// the join/match/leave protocol. It is the single authoritative matcher of
// the process; the backing components may live in memory or in external
// storage behind the same interfaces.
type Coordinator struct {
	registry ParticipantRegistry
	queue    MatchQueue
	rooms    RoomManager
	guard    *profanity.Guard
	notifier Notifier

	// closureText is the localized content of the system message appended
	// when a room ends.
	closureText string

	// matchMu makes enqueue + pop-pair + create-room one critical section.
	// Without it two concurrent joins could both observe the same waiting
	// partner and form two rooms sharing one participant.
	matchMu sync.Mutex
}

func NewCoordinator(registry ParticipantRegistry, queue MatchQueue, rooms RoomManager,
	guard *profanity.Guard, notifier Notifier, closureText string) *Coordinator {
	return &Coordinator{
		registry:    registry,
		queue:       queue,
		rooms:       rooms,
		guard:       guard,
		notifier:    notifier,
		closureText: closureText,
	}
}

// RoomData bundles a room with both participant records for the room view.
type RoomData struct {
	Room    *models.ChatRoom    `json:"room"`
	Current *models.Participant `json:"current_participant"`
	Other   *models.Participant `json:"other_participant"`
}

// Join registers a participant and immediately attempts a match. Matching is
// greedy: no batching, no priority beyond FIFO order within each role queue.
// A profane name is refused outright, not cleaned.
func (c *Coordinator) Join(name string, role models.Role) (*models.Participant, error) {
	name = strings.TrimSpace(name)
	if name == "" || len([]rune(name)) > config.MaxNameLength {
		return nil, ErrInvalidInput
	}
	if role != models.RoleSuffering && role != models.RoleHealing {
		return nil, ErrInvalidInput
	}
	if c.guard.IsProfane(name) {
		return nil, ErrProfaneName
	}

	p, err := c.registry.Register(c.guard.Clean(name), role)
	if err != nil {
		return nil, err
	}

	room, err := c.match(p.ID, role)
	if err != nil {
		// The participant joined fine; the failed attempt is retried on
		// the next join.
		log.Printf("match attempt after join of %s failed: %v", p.ID, err)
	}
	if room != nil && c.notifier != nil {
		c.notifier.RoomMatched(room)
	}
	return p, nil
}

// match runs the enqueue + tryMatch + createRoom critical section and
// returns the created room, if any.
func (c *Coordinator) match(participantID string, role models.Role) (*models.ChatRoom, error) {
	c.matchMu.Lock()
	defer c.matchMu.Unlock()

	if err := c.queue.Enqueue(participantID, role); err != nil {
		return nil, err
	}
	sufferingID, healingID, ok, err := c.queue.TryMatch()
	if err != nil || !ok {
		return nil, err
	}

	room, err := c.rooms.CreateRoom(sufferingID, healingID)
	if err != nil {
		// Put the popped pair back so neither of them is lost; they lose
		// their queue position, which is acceptable for a failure path.
		if qerr := c.queue.Enqueue(sufferingID, models.RoleSuffering); qerr != nil {
			log.Printf("failed to requeue %s: %v", sufferingID, qerr)
		}
		if qerr := c.queue.Enqueue(healingID, models.RoleHealing); qerr != nil {
			log.Printf("failed to requeue %s: %v", healingID, qerr)
		}
		return nil, err
	}

	if err := c.registry.MarkMatched(sufferingID, room.RoomID); err != nil {
		log.Printf("failed to mark %s matched: %v", sufferingID, err)
	}
	if err := c.registry.MarkMatched(healingID, room.RoomID); err != nil {
		log.Printf("failed to mark %s matched: %v", healingID, err)
	}
	return room, nil
}

// CheckStatus reports whether the participant has been matched. On the first
// observation of a match it transitions the participant matched -> chatting;
// the delivery mechanism of the original product is pull-based and this is
// the poll entry point backing it.
func (c *Coordinator) CheckStatus(participantID string) (matched bool, roomID string, err error) {
	p, err := c.registry.Get(participantID)
	if err != nil {
		return false, "", err
	}
	if p.RoomID == nil || p.Status != models.StatusMatched {
		return false, "", nil
	}

	room, err := c.rooms.GetRoom(*p.RoomID)
	if err != nil || !room.IsActive {
		return false, "", nil
	}

	if err := c.registry.MarkChatting(participantID); err != nil {
		return false, "", err
	}
	return true, room.RoomID, nil
}

// CancelSearch removes a still-waiting participant from the queue and marks
// it left. A match may already have fired before the cancel arrived; in that
// case the room is dissolved like a regular leave so the partner is not left
// alone in a room nobody will ever close. Safe to call at any time,
// including for IDs that are long gone.
func (c *Coordinator) CancelSearch(participantID string) error {
	if err := c.queue.RemoveIfWaiting(participantID); err != nil {
		return err
	}
	room, err := c.rooms.FindActiveRoomFor(participantID)
	if err != nil {
		return err
	}
	if room != nil {
		return c.Leave(room.RoomID, participantID)
	}
	return c.registry.MarkLeft(participantID)
}

// RoomData returns the room together with both participant records. Only
// members may see it; outsiders get ErrUnauthorized and learn nothing about
// the room's contents.
func (c *Coordinator) RoomData(roomID, participantID string) (*RoomData, error) {
	room, err := c.rooms.GetRoom(roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(participantID) {
		return nil, ErrUnauthorized
	}

	current, err := c.registry.Get(participantID)
	if err != nil {
		return nil, err
	}
	// The partner record may already be gone; the room view tolerates that
	// since message sender names are denormalized anyway.
	other, err := c.registry.Get(room.OtherParticipant(participantID))
	if err != nil {
		other = nil
	}
	return &RoomData{Room: room, Current: current, Other: other}, nil
}

// Send appends a chat message to an active room. Content is always cleaned,
// never rejected: the policy is asymmetric with name registration.
func (c *Coordinator) Send(roomID, participantID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" || len([]rune(content)) > config.MaxMessageLength {
		return nil, ErrInvalidInput
	}

	p, err := c.registry.Get(participantID)
	if err != nil {
		return nil, err
	}

	msg, err := c.rooms.AppendMessage(roomID, &p.ID, p.Name, c.guard.Clean(content))
	if err != nil {
		return nil, err
	}

	if err := c.registry.Touch(p.ID); err != nil {
		log.Printf("failed to touch participant %s: %v", p.ID, err)
	}
	if c.notifier != nil {
		if room, err := c.rooms.GetRoom(roomID); err == nil {
			c.notifier.MessagePosted(room, msg)
		}
	}
	return msg, nil
}

// Messages returns the room's messages in append order along with the room's
// active flag. After the room ended the last message is the system closure
// notice.
func (c *Coordinator) Messages(roomID string) ([]models.Message, bool, error) {
	room, err := c.rooms.GetRoom(roomID)
	if err != nil {
		return nil, false, err
	}
	msgs, err := c.rooms.Messages(roomID)
	if err != nil {
		return nil, false, err
	}
	return msgs, room.IsActive, nil
}

// Leave ends the room and marks the leaving participant left. It is
// idempotent, and tolerant of rooms that no longer exist: leaving twice
// produces the same end state as leaving once. A dissolved room never
// revives or requeues its participants.
func (c *Coordinator) Leave(roomID, participantID string) error {
	msg, err := c.rooms.EndRoom(roomID, c.closureText)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}

	if lerr := c.registry.MarkLeft(participantID); lerr != nil {
		return lerr
	}

	if msg != nil && c.notifier != nil {
		if room, gerr := c.rooms.GetRoom(roomID); gerr == nil {
			c.notifier.RoomEnded(room, msg)
		}
	}
	return nil
}
