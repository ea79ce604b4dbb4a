package healjai_test

import (
	"sync"
	"testing"
	"time"

	"healjai/backend/internal/healjai"
	"healjai/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestHub_RegisterUnregister(t *testing.T) {
	hub := healjai.NewHub()
	clientA := newMockClient("user_A")

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "user_A")

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "user_A")
	assert.True(t, clientA.isClosed(), "unregister must close the client")
}

func TestHub_FanOutToRecipients(t *testing.T) {
	// Arrange
	hub := healjai.NewHub()
	clientA := newMockClient("user_A")
	clientB := newMockClient("user_B")
	clientC := newMockClient("user_C")

	go hub.Run()
	hub.RegisterCh <- clientA
	hub.RegisterCh <- clientB
	hub.RegisterCh <- clientC
	time.Sleep(100 * time.Millisecond)

	// Act - An event addressed to A and B only
	room := &models.ChatRoom{RoomID: "room1", SufferingID: "user_A", HealingID: "user_B"}
	hub.RoomMatched(room)
	time.Sleep(100 * time.Millisecond)

	// Assert
	select {
	case ev := <-clientA.RecvChannel:
		assert.Equal(t, models.EventMatched, ev.Type)
		assert.Equal(t, "room1", ev.RoomID)
	default:
		t.Error("user_A did not receive the matched event")
	}
	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventMatched, ev.Type)
	default:
		t.Error("user_B did not receive the matched event")
	}
	select {
	case <-clientC.RecvChannel:
		t.Error("user_C must not receive events for a foreign room")
	default:
	}
}

func TestHub_MessageEventCarriesMessage(t *testing.T) {
	hub := healjai.NewHub()
	clientB := newMockClient("user_B")

	go hub.Run()
	hub.RegisterCh <- clientB
	time.Sleep(100 * time.Millisecond)

	room := &models.ChatRoom{RoomID: "room1", SufferingID: "user_A", HealingID: "user_B"}
	sender := "user_A"
	msg := &models.Message{ID: "m1", RoomID: "room1", SenderID: &sender, SenderName: "Alice", Content: "hello"}
	hub.MessagePosted(room, msg)
	time.Sleep(100 * time.Millisecond)

	select {
	case ev := <-clientB.RecvChannel:
		assert.Equal(t, models.EventMessage, ev.Type)
		if assert.NotNil(t, ev.Message) {
			assert.Equal(t, "hello", ev.Message.Content)
		}
	default:
		t.Error("user_B did not receive the message event")
	}
}

// TestHub_DispatcherLiveWhileSinkBusy verifies fanout keeps running while a
// sink call is in flight. The sink calls back into the notifier, so a busy
// sink must never hold the event loop hostage.
func TestHub_DispatcherLiveWhileSinkBusy(t *testing.T) {
	// Arrange
	hub := healjai.NewHub()
	entered := make(chan struct{})
	release := make(chan struct{})
	hub.SetMessageSink(func(roomID, participantID, content string) {
		close(entered)
		<-release
	})
	defer close(release)

	clientA := newMockClient("user_A")
	go hub.Run()
	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)

	// Act - An event arrives while the sink is still busy
	hub.IncomingCh <- healjai.InboundMessage{RoomID: "room1", ParticipantID: "user_A", Content: "hi"}
	<-entered
	room := &models.ChatRoom{RoomID: "room1", SufferingID: "user_A", HealingID: "user_B"}
	hub.RoomMatched(room)

	// Assert
	select {
	case ev := <-clientA.RecvChannel:
		assert.Equal(t, models.EventMatched, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("event loop stalled behind the sink")
	}
}

func TestHub_IncomingForwardedToSink(t *testing.T) {
	// Arrange
	hub := healjai.NewHub()

	var mu sync.Mutex
	var got []healjai.InboundMessage
	hub.SetMessageSink(func(roomID, participantID, content string) {
		mu.Lock()
		got = append(got, healjai.InboundMessage{RoomID: roomID, ParticipantID: participantID, Content: content})
		mu.Unlock()
	})

	go hub.Run()

	// Act
	hub.IncomingCh <- healjai.InboundMessage{RoomID: "room1", ParticipantID: "user_A", Content: "hi"}
	time.Sleep(100 * time.Millisecond)

	// Assert
	mu.Lock()
	defer mu.Unlock()
	if assert.Len(t, got, 1) {
		assert.Equal(t, "room1", got[0].RoomID)
		assert.Equal(t, "user_A", got[0].ParticipantID)
		assert.Equal(t, "hi", got[0].Content)
	}
}
